package executor

import (
	"testing"

	"github.com/evdnx/gotx/types"
)

func TestPaperExecutor_SubmitAndPosition(t *testing.T) {
	ex := NewPaperExecutor(10_000, nil)

	o := types.Order{
		Symbol: "BTCUSD",
		Side:   types.Buy,
		Qty:    0.5,
		Price:  20_000,
	}
	if err := ex.Submit(o); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if eq := ex.Equity(); eq != 0 {
		t.Fatalf("expected equity 0 after buying 0.5*20000, got %v", eq)
	}
	qty, avg := ex.Position("BTCUSD")
	if qty != 0.5 || avg != 20_000 {
		t.Fatalf("unexpected position: qty=%v avg=%v", qty, avg)
	}
}

func TestPaperExecutor_InsufficientCash(t *testing.T) {
	ex := NewPaperExecutor(1000, nil)
	o := types.Order{
		Symbol: "ETHUSD",
		Side:   types.Buy,
		Qty:    1,
		Price:  2000,
	}
	if err := ex.Submit(o); err != nil {
		t.Fatalf("expected graceful handling, got error %v", err)
	}
	if eq := ex.Equity(); eq != 1000 {
		t.Fatalf("equity should stay unchanged on insufficient cash")
	}
}

// A partial close followed by a stop-out flattens the position and realizes
// the proceeds.
func TestPaperExecutor_ExitFlattensPosition(t *testing.T) {
	ex := NewPaperExecutor(400, nil)

	if err := ex.Submit(types.Order{Symbol: "SOLUSD", Side: types.Buy, Qty: 4, Price: 100}); err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	if err := ex.Submit(types.Order{Symbol: "SOLUSD", Side: types.Sell, Qty: 1, Price: 104, Comment: "partial_close tier=0"}); err != nil {
		t.Fatalf("partial failed: %v", err)
	}
	if err := ex.Submit(types.Order{Symbol: "SOLUSD", Side: types.Sell, Qty: 3, Price: 95, Comment: "stop_hit"}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	qty, _ := ex.Position("SOLUSD")
	if qty != 0 {
		t.Fatalf("expected flat position, got qty=%v", qty)
	}
	if eq := ex.Equity(); eq != 104+3*95 {
		t.Fatalf("expected equity %v, got %v", 104+3*95.0, eq)
	}
}

package engine

import (
	"github.com/evdnx/gotx/risk"
	"github.com/evdnx/gotx/types"
)

// Position is the immutable identity of an open trade as seen by the exit
// engine. It is created once at entry and never mutated.
type Position struct {
	Symbol      string
	Side        types.Side
	EntryPrice  float64
	EntryBar    int64
	InitialSize float64
	Basis       risk.Basis
}

// StopState is the full per-position mutable record. It is mutated only by
// Engine.Step, once per bar, and always monotonically: the stop may only move
// toward reducing risk, locked/triggered tier sets only grow.
type StopState struct {
	// StopPrice is the current protective stop.
	StopPrice float64
	// FavorableExtreme is the best price reached since entry (highest for
	// LONG, lowest for SHORT).
	FavorableExtreme float64
	// AdverseExtreme is the worst price reached since entry, kept for MAE
	// reporting.
	AdverseExtreme float64
	// LockedTier is the highest profit-tier index already locked, -1 for none.
	LockedTier int
	// BreakEvenApplied latches permanently once the break-even R-multiple has
	// been reached.
	BreakEvenApplied bool
	// PartialsFired records partial-exit tier indices that already triggered.
	PartialsFired map[int]bool
	// BarsInTrade counts processed bars since entry.
	BarsInTrade int
	// LastBarIndex is the ordering watermark; bars at or before it are
	// rejected.
	LastBarIndex int64
	// RemainingSize is the open quantity, non-increasing, zero once closed.
	RemainingSize float64
	// Closed marks the terminal state; no further bars are accepted.
	Closed bool
}

// NewState builds the initial StopState for a freshly opened position.
func NewState(pos Position, initialStop float64) StopState {
	return StopState{
		StopPrice:        initialStop,
		FavorableExtreme: pos.EntryPrice,
		AdverseExtreme:   pos.EntryPrice,
		LockedTier:       -1,
		PartialsFired:    make(map[int]bool),
		LastBarIndex:     pos.EntryBar,
		RemainingSize:    pos.InitialSize,
	}
}

// clone deep-copies the state so a failed Step never leaks mutations into the
// committed prior state.
func (s StopState) clone() StopState {
	out := s
	out.PartialsFired = make(map[int]bool, len(s.PartialsFired))
	for k, v := range s.PartialsFired {
		out.PartialsFired[k] = v
	}
	return out
}

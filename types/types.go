package types

// Side is the direction of an open position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Sign returns +1 for LONG and -1 for SHORT, the multiplier used by all
// directional price arithmetic.
func (s Side) Sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Bar is a single OHLCV candle. Index must be strictly increasing per
// position; it is the engine's ordering key.
type Bar struct {
	Index  int64
	Time   int64 // unix seconds, informational
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// OrderSide is the direction of an order handed to the executor.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Order is the handoff type consumed by the order-execution collaborator.
type Order struct {
	Symbol string
	Side   OrderSide
	Qty    float64
	Price  float64 // limit price; 0 = market
	// meta
	Comment string
}

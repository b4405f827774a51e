package types

// ActionType identifies what the engine wants the execution layer to do
// after processing a bar.
type ActionType string

const (
	StopAdjusted ActionType = "stop_adjusted"
	PartialClose ActionType = "partial_close"
	FullClose    ActionType = "full_close"
)

// CloseReason explains a full close.
type CloseReason string

const (
	StopHit  CloseReason = "stop_hit"
	TimeExit CloseReason = "time_exit"
	// ProfitTier is the reason carried by partial closes.
	ProfitTier CloseReason = "profit_tier"
)

// Action is one instruction emitted by the engine for a single bar.
// Partial closes always precede any stop/exit action; a time exit replaces
// every other action for its bar.
type Action struct {
	Type ActionType

	// StopAdjusted
	StopPrice float64

	// PartialClose: fraction of the ORIGINAL position size and the ladder
	// tier that fired.
	Fraction  float64
	TierIndex int

	// FullClose / PartialClose fill price.
	Price  float64
	Reason CloseReason

	// Metrics is populated on PartialClose and FullClose actions.
	Metrics *ExitMetrics
}

// ExitMetrics is the per-event record handed to persistence/monitoring on
// every partial or full close.
type ExitMetrics struct {
	EntryPrice    float64
	ExitPrice     float64
	RCaptured     float64 // signed R-multiple realized at the event price
	TrailDistance float64 // distance between the stop and the favorable extreme
	MFE           float64 // max favorable excursion, in price units
	MAE           float64 // max adverse excursion, in price units
	Reason        CloseReason
	BarsHeld      int
}

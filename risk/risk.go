package risk

import (
	"fmt"
	"math"

	"github.com/evdnx/gotx/types"
)

// ErrInvalidRisk is returned when the entry/initial-stop pair cannot yield a
// positive risk basis for the position's direction.
var ErrInvalidRisk = fmt.Errorf("invalid risk basis")

// Basis is the per-unit risk (R) of a position: the distance between the
// entry price and the initial stop. It is computed exactly once at position
// creation and never recomputed from a moving stop.
type Basis struct {
	r float64
}

// Compute derives the risk basis from entry and initial stop. It fails when
// R would be zero or when the initial stop sits on the wrong side of entry
// (above entry for LONG, below entry for SHORT).
func Compute(side types.Side, entryPrice, initialStop float64) (Basis, error) {
	if entryPrice <= 0 || initialStop <= 0 {
		return Basis{}, fmt.Errorf("%w: non-positive price (entry=%f stop=%f)", ErrInvalidRisk, entryPrice, initialStop)
	}
	if entryPrice == initialStop {
		return Basis{}, fmt.Errorf("%w: entry equals initial stop (%f)", ErrInvalidRisk, entryPrice)
	}
	if side.Sign()*(entryPrice-initialStop) < 0 {
		return Basis{}, fmt.Errorf("%w: initial stop %f on wrong side of entry %f for %s", ErrInvalidRisk, initialStop, entryPrice, side)
	}
	return Basis{r: math.Abs(entryPrice - initialStop)}, nil
}

// R returns the fixed per-unit risk.
func (b Basis) R() float64 { return b.r }

// Multiple expresses the distance from entry to price as a multiple of R,
// positive when the move is favorable for the given side.
func (b Basis) Multiple(side types.Side, entryPrice, price float64) float64 {
	if b.r == 0 {
		return 0
	}
	return side.Sign() * (price - entryPrice) / b.r
}

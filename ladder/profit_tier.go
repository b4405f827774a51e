// Package ladder implements the two pure lookup tables of the exit engine:
// profit-tier stop locks and partial-exit position reductions. Neither type
// carries state; triggered-tier bookkeeping lives in the engine's StopState.
package ladder

import "github.com/evdnx/gotx/config"

// ProfitTierLadder resolves the highest profit tier reached by an achieved
// R-multiple. Tiers fire at most once and in increasing order; gapping past
// intermediate tiers in a single bar is allowed.
type ProfitTierLadder struct {
	tiers []config.ProfitTier
}

// NewProfitTierLadder wraps a validated tier list.
func NewProfitTierLadder(tiers []config.ProfitTier) ProfitTierLadder {
	return ProfitTierLadder{tiers: tiers}
}

// LockFractionFor returns the index and lock fraction of the highest tier
// whose (scaled) threshold is <= achievedR and whose index is strictly
// greater than alreadyLocked. ok is false when no new tier has been crossed.
// thresholdScale > 1 pushes tiers further out, < 1 pulls them closer.
func (l ProfitTierLadder) LockFractionFor(achievedR float64, alreadyLocked int, thresholdScale float64) (index int, lockFraction float64, ok bool) {
	if thresholdScale <= 0 {
		thresholdScale = 1
	}
	index = -1
	for i, tier := range l.tiers {
		if tier.RMultiple*thresholdScale > achievedR {
			break
		}
		if i > alreadyLocked {
			index = i
			lockFraction = tier.LockFraction
			ok = true
		}
	}
	return index, lockFraction, ok
}

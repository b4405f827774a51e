package ladder

import "github.com/evdnx/gotx/config"

// DuePartial is a single partial-exit tier that should fire this bar.
type DuePartial struct {
	TierIndex     int
	CloseFraction float64 // fraction of the ORIGINAL position size
}

// PartialExitLadder resolves the set of partial-exit tiers reached by an
// achieved R-multiple that have not fired yet.
type PartialExitLadder struct {
	exits []config.PartialExit
}

// NewPartialExitLadder wraps a validated partial-exit list.
func NewPartialExitLadder(exits []config.PartialExit) PartialExitLadder {
	return PartialExitLadder{exits: exits}
}

// PartialsDue returns every tier whose threshold is <= achievedR and whose
// index is not in triggered, in ascending tier order. Triggering is
// idempotent: a tier present in triggered is never reconsidered.
func (l PartialExitLadder) PartialsDue(achievedR float64, triggered map[int]bool) []DuePartial {
	var due []DuePartial
	for i, pe := range l.exits {
		if pe.RMultiple > achievedR {
			break
		}
		if triggered[i] {
			continue
		}
		due = append(due, DuePartial{TierIndex: i, CloseFraction: pe.CloseFraction})
	}
	return due
}

// Package engine implements the per-bar trailing-stop transition function:
// ATR trailing, profit-tier stop locks, break-even, partial exits, and forced
// time-based exits, modulated by external evaluator biases.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/evdnx/gotx/bias"
	"github.com/evdnx/gotx/config"
	"github.com/evdnx/gotx/ladder"
	"github.com/evdnx/gotx/types"
)

var (
	// ErrOutOfOrderBar is returned when a bar does not strictly follow the
	// position's last processed bar. The prior state is left untouched;
	// silently skipping would corrupt the favorable-extreme invariant.
	ErrOutOfOrderBar = errors.New("bar not strictly after last processed bar")
	// ErrPositionClosed is returned when a bar arrives for a terminal state.
	ErrPositionClosed = errors.New("position already closed")
)

// closeEpsilon absorbs float residue when partial-exit fractions sum to
// exactly 1.0.
const closeEpsilon = 1e-9

// Engine is the stateless per-bar decision core. It holds only the read-only
// configuration and the two ladders derived from it, so a single Engine may
// serve any number of positions concurrently.
type Engine struct {
	cfg      config.ExitConfig
	tiers    ladder.ProfitTierLadder
	partials ladder.PartialExitLadder
}

// New validates the configuration and builds the engine. A bad ladder is
// fatal here, never mid-stream.
func New(cfg config.ExitConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("exit config: %w", err)
	}
	return &Engine{
		cfg:      cfg,
		tiers:    ladder.NewProfitTierLadder(cfg.ProfitTiers),
		partials: ladder.NewPartialExitLadder(cfg.PartialExits),
	}, nil
}

// Config returns the engine's read-only configuration.
func (e *Engine) Config() config.ExitConfig { return e.cfg }

// Step processes one bar for one position. It either fully succeeds and
// returns a consistent new state plus the ordered action list, or fails and
// leaves the prior state meaningful. Partial-close actions always precede the
// stop/exit action; a time exit replaces everything else for its bar.
func (e *Engine) Step(pos Position, prior StopState, bar types.Bar, atr float64, sig bias.Signal) (StopState, []types.Action, error) {
	if prior.Closed || prior.RemainingSize <= 0 {
		return prior, nil, ErrPositionClosed
	}
	if bar.Index <= prior.LastBarIndex {
		return prior, nil, fmt.Errorf("%w: bar %d, last processed %d", ErrOutOfOrderBar, bar.Index, prior.LastBarIndex)
	}

	sign := pos.Side.Sign()
	st := prior.clone()
	st.LastBarIndex = bar.Index
	st.BarsInTrade++

	// 1. Favorable / adverse extremes.
	if pos.Side == types.Long {
		st.FavorableExtreme = math.Max(st.FavorableExtreme, bar.High)
		st.AdverseExtreme = math.Min(st.AdverseExtreme, bar.Low)
	} else {
		st.FavorableExtreme = math.Min(st.FavorableExtreme, bar.Low)
		st.AdverseExtreme = math.Max(st.AdverseExtreme, bar.High)
	}

	// Time exit preempts every other action for this bar.
	if st.BarsInTrade >= e.cfg.MaxTradeBars {
		act := e.fullClose(pos, &st, bar.Close, types.TimeExit)
		return st, []types.Action{act}, nil
	}

	// 2. Achieved R-multiple from the fixed risk basis.
	achievedR := pos.Basis.Multiple(pos.Side, pos.EntryPrice, st.FavorableExtreme)

	// 3. Evaluator bias scales.
	scales := bias.Resolve(sig, e.cfg)

	// 4. ATR-trail candidate.
	trailCandidate := st.FavorableExtreme - sign*e.cfg.ATRMultiplier*scales.ATRScale*atr

	// 5. Profit-tier lock candidate.
	tierCandidate := math.NaN()
	if idx, frac, ok := e.tiers.LockFractionFor(achievedR, st.LockedTier, scales.TierScale); ok {
		st.LockedTier = idx
		tierCandidate = pos.EntryPrice + sign*frac*pos.Basis.R()
	}

	// 6. Break-even candidate, latched once.
	beCandidate := math.NaN()
	if !st.BreakEvenApplied && e.cfg.BreakEvenR > 0 && achievedR >= e.cfg.BreakEvenR {
		st.BreakEvenApplied = true
		beCandidate = pos.EntryPrice
	}

	// 7. Monotonic merge: the stop never loosens.
	newStop := prior.StopPrice
	for _, cand := range []float64{trailCandidate, tierCandidate, beCandidate} {
		if !math.IsNaN(cand) && sign*(cand-newStop) > 0 {
			newStop = cand
		}
	}
	st.StopPrice = newStop

	var actions []types.Action

	// 8. Partial exits, ascending tier order, before any stop/exit action.
	for _, due := range e.partials.PartialsDue(achievedR, st.PartialsFired) {
		st.PartialsFired[due.TierIndex] = true
		st.RemainingSize -= due.CloseFraction * pos.InitialSize
		if st.RemainingSize < closeEpsilon {
			st.RemainingSize = 0
		}
		actions = append(actions, types.Action{
			Type:      types.PartialClose,
			Fraction:  due.CloseFraction,
			TierIndex: due.TierIndex,
			Price:     bar.Close,
			Reason:    types.ProfitTier,
			Metrics:   e.metrics(pos, st, bar.Close, types.ProfitTier),
		})
	}
	if st.RemainingSize == 0 {
		// The ladder summed to 100%; the position is gone without a stop hit.
		st.Closed = true
		return st, actions, nil
	}

	// 9. Stop hit against the possibly tightened stop, filled at the stop.
	if (pos.Side == types.Long && bar.Low <= newStop) ||
		(pos.Side == types.Short && bar.High >= newStop) {
		actions = append(actions, e.fullClose(pos, &st, newStop, types.StopHit))
		return st, actions, nil
	}

	// 10. Report the adjustment only when the stop actually moved.
	if newStop != prior.StopPrice {
		actions = append(actions, types.Action{
			Type:      types.StopAdjusted,
			StopPrice: newStop,
		})
	}
	return st, actions, nil
}

// fullClose finalizes the state and builds the terminal action.
func (e *Engine) fullClose(pos Position, st *StopState, price float64, reason types.CloseReason) types.Action {
	st.RemainingSize = 0
	st.Closed = true
	return types.Action{
		Type:    types.FullClose,
		Price:   price,
		Reason:  reason,
		Metrics: e.metrics(pos, *st, price, reason),
	}
}

// metrics snapshots the per-event record handed to persistence/monitoring.
func (e *Engine) metrics(pos Position, st StopState, exitPrice float64, reason types.CloseReason) *types.ExitMetrics {
	sign := pos.Side.Sign()
	mae := sign * (pos.EntryPrice - st.AdverseExtreme)
	if mae < 0 {
		mae = 0
	}
	return &types.ExitMetrics{
		EntryPrice:    pos.EntryPrice,
		ExitPrice:     exitPrice,
		RCaptured:     pos.Basis.Multiple(pos.Side, pos.EntryPrice, exitPrice),
		TrailDistance: math.Abs(st.FavorableExtreme - st.StopPrice),
		MFE:           sign * (st.FavorableExtreme - pos.EntryPrice),
		MAE:           mae,
		Reason:        reason,
		BarsHeld:      st.BarsInTrade,
	}
}

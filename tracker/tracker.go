// Package tracker owns the authoritative per-position exit state. It
// serializes bar evaluation per position, commits only fully consistent
// states, routes emitted actions to the order-execution collaborator, and
// records metrics.
package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/evdnx/gotx/bias"
	"github.com/evdnx/gotx/engine"
	"github.com/evdnx/gotx/executor"
	"github.com/evdnx/gotx/logger"
	"github.com/evdnx/gotx/metrics"
	"github.com/evdnx/gotx/risk"
	"github.com/evdnx/gotx/types"
)

// ErrStateNotFound is returned for operations on an untracked position ID.
var ErrStateNotFound = errors.New("position state not found")

// slot pairs a position with its state behind a per-position mutex, so two
// bars can never mutate the same position concurrently while independent
// positions still evaluate in parallel.
type slot struct {
	mu  sync.Mutex
	pos engine.Position
	st  engine.StopState
}

// Tracker is the position lifecycle owner.
type Tracker struct {
	eng  *engine.Engine
	exec executor.Executor // optional order routing, nil = actions only
	log  logger.Logger

	mu    sync.RWMutex
	slots map[uuid.UUID]*slot
}

// New builds a tracker around a configured engine. exec may be nil when the
// caller consumes the returned actions itself.
func New(eng *engine.Engine, exec executor.Executor, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.NewNop()
	}
	return &Tracker{
		eng:   eng,
		exec:  exec,
		log:   log,
		slots: make(map[uuid.UUID]*slot),
	}
}

// Open registers a new position, deriving its immutable risk basis. It fails
// with risk.ErrInvalidRisk when the initial stop cannot yield R > 0, in which
// case no state is created.
func (t *Tracker) Open(symbol string, side types.Side, entryPrice, initialStop, size float64, entryBar int64) (uuid.UUID, error) {
	if size <= 0 {
		return uuid.Nil, fmt.Errorf("position size must be positive, got %f", size)
	}
	basis, err := risk.Compute(side, entryPrice, initialStop)
	if err != nil {
		return uuid.Nil, err
	}

	pos := engine.Position{
		Symbol:      symbol,
		Side:        side,
		EntryPrice:  entryPrice,
		EntryBar:    entryBar,
		InitialSize: size,
		Basis:       basis,
	}
	id := uuid.New()

	t.mu.Lock()
	t.slots[id] = &slot{pos: pos, st: engine.NewState(pos, initialStop)}
	t.mu.Unlock()

	metrics.PositionsOpen.Inc()
	t.log.Info("position_opened",
		logger.String("id", id.String()),
		logger.String("symbol", symbol),
		logger.String("side", string(side)),
		logger.Float64("entry", entryPrice),
		logger.Float64("initial_stop", initialStop),
		logger.Float64("risk_basis", basis.R()),
	)
	return id, nil
}

// Get returns a copy of the current state for inspection.
func (t *Tracker) Get(id uuid.UUID) (engine.StopState, error) {
	s, err := t.slot(id)
	if err != nil {
		return engine.StopState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st, nil
}

// Position returns the immutable identity of a tracked position.
func (t *Tracker) Position(id uuid.UUID) (engine.Position, error) {
	s, err := t.slot(id)
	if err != nil {
		return engine.Position{}, err
	}
	return s.pos, nil
}

// Commit replaces the stored state. Intended for callers that drive the
// engine directly; ProcessBar commits internally.
func (t *Tracker) Commit(id uuid.UUID, st engine.StopState) error {
	s, err := t.slot(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	return nil
}

// Remove drops a position, e.g. after a manual close. It must never run
// concurrently with a bar evaluation for the same ID; the slot lock enforces
// that.
func (t *Tracker) Remove(id uuid.UUID) error {
	t.mu.Lock()
	_, ok := t.slots[id]
	if ok {
		delete(t.slots, id)
	}
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}
	metrics.PositionsOpen.Dec()
	t.log.Info("position_removed", logger.String("id", id.String()))
	return nil
}

// Open IDs, in no particular order.
func (t *Tracker) IDs() []uuid.UUID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(t.slots))
	for id := range t.slots {
		ids = append(ids, id)
	}
	return ids
}

// ProcessBar evaluates one bar for one position. On success the new state is
// committed atomically and the ordered action list is routed and returned; on
// error the prior state is untouched. A fully closed position is removed
// before returning.
func (t *Tracker) ProcessBar(id uuid.UUID, bar types.Bar, atr float64, sig bias.Signal) ([]types.Action, error) {
	s, err := t.slot(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newState, actions, err := t.eng.Step(s.pos, s.st, bar, atr, sig)
	if err != nil {
		t.log.Warn("step_rejected",
			logger.String("id", id.String()),
			logger.Int64("bar", bar.Index),
			logger.Err(err),
		)
		return nil, err
	}
	priorRemaining := s.st.RemainingSize
	s.st = newState

	t.route(id, s.pos, newState, actions, priorRemaining)

	if newState.Closed {
		t.mu.Lock()
		delete(t.slots, id)
		t.mu.Unlock()
		metrics.PositionsOpen.Dec()
	}
	return actions, nil
}

// route converts actions into orders for the executor and updates metrics.
// Quantities are tracked against the remaining size at the start of the bar
// so partials plus a final close always sum to the open quantity exactly.
func (t *Tracker) route(id uuid.UUID, pos engine.Position, st engine.StopState, actions []types.Action, remaining float64) {
	closeSide := types.Sell
	if pos.Side == types.Short {
		closeSide = types.Buy
	}

	for _, act := range actions {
		switch act.Type {
		case types.StopAdjusted:
			metrics.StopAdjustments.WithLabelValues(pos.Symbol).Inc()
			t.log.Info("stop_adjusted",
				logger.String("id", id.String()),
				logger.String("symbol", pos.Symbol),
				logger.Float64("stop", act.StopPrice),
			)

		case types.PartialClose:
			qty := act.Fraction * pos.InitialSize
			if qty > remaining {
				qty = remaining
			}
			remaining -= qty
			metrics.PartialCloses.WithLabelValues(pos.Symbol).Inc()
			if act.Metrics != nil {
				metrics.RCaptured.Observe(act.Metrics.RCaptured)
			}
			t.submit(types.Order{
				Symbol:  pos.Symbol,
				Side:    closeSide,
				Qty:     qty,
				Price:   act.Price,
				Comment: fmt.Sprintf("partial_close tier=%d", act.TierIndex),
			})
			t.log.Info("partial_close",
				logger.String("id", id.String()),
				logger.String("symbol", pos.Symbol),
				logger.Int("tier", act.TierIndex),
				logger.Float64("fraction", act.Fraction),
				logger.Float64("price", act.Price),
			)

		case types.FullClose:
			metrics.FullCloses.WithLabelValues(string(act.Reason)).Inc()
			if act.Metrics != nil {
				metrics.RCaptured.Observe(act.Metrics.RCaptured)
			}
			t.submit(types.Order{
				Symbol:  pos.Symbol,
				Side:    closeSide,
				Qty:     remaining,
				Price:   act.Price,
				Comment: string(act.Reason),
			})
			remaining = 0
			t.log.Info("full_close",
				logger.String("id", id.String()),
				logger.String("symbol", pos.Symbol),
				logger.String("reason", string(act.Reason)),
				logger.Float64("price", act.Price),
				logger.Int("bars_held", st.BarsInTrade),
			)
		}
	}
}

func (t *Tracker) submit(o types.Order) {
	if t.exec == nil || o.Qty <= 0 {
		return
	}
	if err := t.exec.Submit(o); err != nil {
		t.log.Error("order_submit_failed",
			logger.String("symbol", o.Symbol),
			logger.String("side", string(o.Side)),
			logger.Float64("qty", o.Qty),
			logger.Err(err),
		)
	}
}

func (t *Tracker) slot(id uuid.UUID) (*slot, error) {
	t.mu.RLock()
	s, ok := t.slots[id]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}
	return s, nil
}

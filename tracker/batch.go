package tracker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evdnx/gotx/bias"
	"github.com/evdnx/gotx/types"
)

// BarInput bundles everything a position needs for one evaluation.
type BarInput struct {
	Bar    types.Bar
	ATR    float64
	Signal bias.Signal
}

// ProcessEach evaluates one bar for many positions concurrently. Position
// states are disjoint, so the only serialization is the per-position lock
// inside ProcessBar. The first error cancels the group and is returned;
// actions for positions that completed are still present in the result.
func (t *Tracker) ProcessEach(ctx context.Context, inputs map[uuid.UUID]BarInput) (map[uuid.UUID][]types.Action, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(map[uuid.UUID][]types.Action, len(inputs))

	for id, in := range inputs {
		id, in := id, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			actions, err := t.ProcessBar(id, in.Bar, in.ATR, in.Signal)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = actions
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

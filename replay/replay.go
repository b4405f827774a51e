// Package replay drives the exit engine over a recorded bar series. It fills
// the two upstream inputs the engine treats as external: the ATR value (ATSO
// proxy from a goti indicator suite) and the evaluator biases (derived from
// HMA/AMDO/ATSO crossovers and raw values). This makes deterministic
// backtests of the exit logic possible without any market-data service.
package replay

import (
	"math"

	"github.com/evdnx/goti"
	"github.com/google/uuid"

	"github.com/evdnx/gotx/bias"
	"github.com/evdnx/gotx/config"
	"github.com/evdnx/gotx/logger"
	"github.com/evdnx/gotx/tracker"
	"github.com/evdnx/gotx/types"
)

// Replayer feeds bars through the indicator suite and the tracker.
type Replayer struct {
	trk   *tracker.Tracker
	cfg   config.ExitConfig
	suite *goti.IndicatorSuite
	log   logger.Logger
}

// NewReplayer builds the indicator suite from the exit configuration.
func NewReplayer(trk *tracker.Tracker, cfg config.ExitConfig, log logger.Logger) (*Replayer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	ic := goti.DefaultConfig()
	ic.ATSEMAperiod = cfg.ATRPeriod
	suite, err := goti.NewIndicatorSuiteWithConfig(ic)
	if err != nil {
		return nil, err
	}
	return &Replayer{trk: trk, cfg: cfg, suite: suite, log: log}, nil
}

// Warmup feeds bars into the indicator suite without touching any position,
// so the ATR proxy is meaningful from the first replayed bar.
func (r *Replayer) Warmup(bars []types.Bar) {
	for _, b := range bars {
		if err := r.suite.Add(b.High, b.Low, b.Close, b.Volume); err != nil {
			r.log.Warn("suite_add_error", logger.Err(err))
		}
	}
}

// Run replays bars against one tracked position and returns every emitted
// action in order. It stops early once the position closes.
func (r *Replayer) Run(id uuid.UUID, bars []types.Bar) ([]types.Action, error) {
	var all []types.Action
	for _, b := range bars {
		if err := r.suite.Add(b.High, b.Low, b.Close, b.Volume); err != nil {
			r.log.Warn("suite_add_error", logger.Err(err))
			continue
		}
		actions, err := r.trk.ProcessBar(id, b, r.atr(b.Close), r.signal())
		if err != nil {
			return all, err
		}
		all = append(all, actions...)
		for _, a := range actions {
			if a.Type == types.FullClose {
				return all, nil
			}
		}
	}
	return all, nil
}

// atr returns the latest ATSO value as the ATR proxy, sanitized the same way
// the strategy layer sanitizes raw volatility readings.
func (r *Replayer) atr(price float64) float64 {
	vals := r.suite.GetATSO().GetATSOValues()
	raw := 0.0
	if len(vals) > 0 {
		raw = math.Abs(vals[len(vals)-1])
	}
	if price <= 0 {
		price = 1
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 || raw > price*0.1 {
		return math.Max(price*0.02, 0.0001)
	}
	return raw
}

// signal derives the three evaluator biases from the suite. Crossovers give
// the direction, raw values the magnitude; everything is clamped to [-1, 1].
func (r *Replayer) signal() bias.Signal {
	var sig bias.Signal

	if ok, err := r.suite.GetHMA().IsBullishCrossover(); err == nil && ok {
		sig.Trend = 0.5
	}
	if ok, err := r.suite.GetHMA().IsBearishCrossover(); err == nil && ok {
		sig.Trend = -0.5
	}

	if admoVal, err := r.suite.GetAMDO().Calculate(); err == nil {
		sig.Momentum = clamp(admoVal, -1, 1)
	}

	switch {
	case r.suite.GetATSO().IsBullishCrossover():
		sig.Volatility = 0.5
	case r.suite.GetATSO().IsBearishCrossover():
		sig.Volatility = -0.5
	}
	return sig
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

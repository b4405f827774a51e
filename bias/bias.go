// Package bias combines the external trend/volatility/momentum evaluator
// signals into the scaling factors applied by the trailing-stop engine.
package bias

import "github.com/evdnx/gotx/config"

// Signal carries the three per-bar evaluator outputs. Each value is expected
// in [-1, 1]; values outside that range are clamped before use.
type Signal struct {
	Trend      float64
	Volatility float64
	Momentum   float64
}

// Neutral is the signal of a bar with no evaluator input: every factor
// resolves to 1.0.
func Neutral() Signal { return Signal{} }

// Set holds the two resolved scales consumed by the engine.
type Set struct {
	// ATRScale multiplies the configured ATR multiplier, widening (>1) or
	// tightening (<1) the trail distance.
	ATRScale float64
	// TierScale multiplies the profit-tier R-multiple thresholds, delaying
	// (>1) or accelerating (<1) stop locks.
	TierScale float64
}

// Resolve maps the signals to a Set. Each enabled evaluator contributes the
// factor 1+bias, clamped to [cfg.BiasClampMin, cfg.BiasClampMax]; a disabled
// evaluator contributes a neutral 1.0. Trend and volatility compose
// multiplicatively into ATRScale (the product is clamped again), momentum
// alone drives TierScale. Pure function, no state.
func Resolve(sig Signal, cfg config.ExitConfig) Set {
	trend := factor(sig.Trend, cfg.TrendFilterEnabled, cfg)
	vol := factor(sig.Volatility, cfg.VolatilityFilterEnabled, cfg)
	mom := factor(sig.Momentum, cfg.MomentumFilterEnabled, cfg)

	return Set{
		ATRScale:  clamp(trend*vol, cfg.BiasClampMin, cfg.BiasClampMax),
		TierScale: mom,
	}
}

func factor(biasValue float64, enabled bool, cfg config.ExitConfig) float64 {
	if !enabled {
		return 1.0
	}
	if biasValue > 1 {
		biasValue = 1
	} else if biasValue < -1 {
		biasValue = -1
	}
	return clamp(1+biasValue, cfg.BiasClampMin, cfg.BiasClampMax)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

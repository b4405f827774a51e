package config

import (
	"errors"
	"fmt"
)

// ProfitTier maps an achieved R-multiple threshold to the fraction of R that
// gets locked in as a stop once the threshold is crossed.
type ProfitTier struct {
	RMultiple    float64 `toml:"r_multiple"`
	LockFraction float64 `toml:"lock_fraction"`
}

// PartialExit maps an achieved R-multiple threshold to a one-shot fractional
// position reduction. Fractions refer to the ORIGINAL position size, so a
// ladder summing to <= 1.0 can never over-close by construction.
type PartialExit struct {
	RMultiple     float64 `toml:"r_multiple"`
	CloseFraction float64 `toml:"close_fraction"`
}

// ExitConfig holds every tunable of the exit engine. It is read-only for the
// whole life of a position and may be shared freely across positions.
type ExitConfig struct {
	// ATR trailing
	ATRPeriod     int     `toml:"atr_period"`
	ATRMultiplier float64 `toml:"atr_multiplier"`

	// Ladders, strictly increasing in RMultiple.
	ProfitTiers  []ProfitTier  `toml:"profit_tiers"`
	PartialExits []PartialExit `toml:"partial_exits"`

	// BreakEvenR moves the stop to entry once this R-multiple is reached.
	// 0 disables break-even.
	BreakEvenR float64 `toml:"break_even_r"`

	// MaxTradeBars forces a full close after this many processed bars.
	MaxTradeBars int `toml:"max_trade_bars"`

	// Evaluator filters. A disabled filter contributes a neutral 1.0 bias.
	TrendFilterEnabled      bool `toml:"trend_filter_enabled"`
	VolatilityFilterEnabled bool `toml:"volatility_filter_enabled"`
	MomentumFilterEnabled   bool `toml:"momentum_filter_enabled"`

	// Clamp bounds for every individual bias factor and for the composed
	// scales, preventing pathological widening/tightening of the trail.
	BiasClampMin float64 `toml:"bias_clamp_min"`
	BiasClampMax float64 `toml:"bias_clamp_max"`
}

// Defaults returns a conservative baseline configuration.
func Defaults() ExitConfig {
	return ExitConfig{
		ATRPeriod:     14,
		ATRMultiplier: 2.0,
		ProfitTiers: []ProfitTier{
			{RMultiple: 1.0, LockFraction: 0.3},
			{RMultiple: 2.0, LockFraction: 0.6},
			{RMultiple: 3.0, LockFraction: 0.9},
		},
		PartialExits: []PartialExit{
			{RMultiple: 1.0, CloseFraction: 0.25},
			{RMultiple: 2.0, CloseFraction: 0.25},
			{RMultiple: 3.0, CloseFraction: 0.20},
		},
		BreakEvenR:              1.0,
		MaxTradeBars:            240,
		TrendFilterEnabled:      true,
		VolatilityFilterEnabled: true,
		MomentumFilterEnabled:   true,
		BiasClampMin:            0.5,
		BiasClampMax:            2.0,
	}
}

// Validate checks every numeric field and both ladders. It returns the first
// encountered error so the caller can surface a clear configuration problem
// before any position is opened under this config.
func (c *ExitConfig) Validate() error {
	if c.ATRPeriod <= 0 {
		return errors.New("ATRPeriod must be positive")
	}
	if c.ATRMultiplier <= 0 {
		return fmt.Errorf("ATRMultiplier (%f) must be positive", c.ATRMultiplier)
	}
	if c.MaxTradeBars < 1 {
		return fmt.Errorf("MaxTradeBars (%d) must be >= 1", c.MaxTradeBars)
	}
	if c.BreakEvenR < 0 {
		return fmt.Errorf("BreakEvenR (%f) cannot be negative", c.BreakEvenR)
	}
	if c.BiasClampMin <= 0 || c.BiasClampMin > 1 {
		return fmt.Errorf("BiasClampMin (%f) must be in (0, 1]", c.BiasClampMin)
	}
	if c.BiasClampMax < 1 {
		return fmt.Errorf("BiasClampMax (%f) must be >= 1", c.BiasClampMax)
	}

	prev := 0.0
	for i, tier := range c.ProfitTiers {
		if tier.RMultiple <= prev {
			return fmt.Errorf("profit tier %d: R-multiple %f not strictly increasing", i, tier.RMultiple)
		}
		if tier.LockFraction <= 0 || tier.LockFraction > 1 {
			return fmt.Errorf("profit tier %d: lock fraction %f must be in (0, 1]", i, tier.LockFraction)
		}
		prev = tier.RMultiple
	}

	prev = 0.0
	sum := 0.0
	for i, pe := range c.PartialExits {
		if pe.RMultiple <= prev {
			return fmt.Errorf("partial exit %d: R-multiple %f not strictly increasing", i, pe.RMultiple)
		}
		if pe.CloseFraction <= 0 || pe.CloseFraction > 1 {
			return fmt.Errorf("partial exit %d: close fraction %f must be in (0, 1]", i, pe.CloseFraction)
		}
		prev = pe.RMultiple
		sum += pe.CloseFraction
	}
	if sum > 1.0 {
		return fmt.Errorf("partial exit fractions sum to %f, must not exceed 1.0", sum)
	}
	return nil
}

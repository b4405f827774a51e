package bias

import (
	"testing"

	"github.com/evdnx/gotx/config"
)

func clampCfg() config.ExitConfig {
	cfg := config.Defaults()
	cfg.BiasClampMin = 0.5
	cfg.BiasClampMax = 2.0
	return cfg
}

func TestResolveAllDisabled(t *testing.T) {
	cfg := clampCfg()
	cfg.TrendFilterEnabled = false
	cfg.VolatilityFilterEnabled = false
	cfg.MomentumFilterEnabled = false

	set := Resolve(Signal{Trend: 1, Volatility: -1, Momentum: 1}, cfg)
	if set.ATRScale != 1.0 || set.TierScale != 1.0 {
		t.Fatalf("disabled filters must be neutral, got %+v", set)
	}
}

func TestResolveNeutralSignal(t *testing.T) {
	set := Resolve(Neutral(), clampCfg())
	if set.ATRScale != 1.0 || set.TierScale != 1.0 {
		t.Fatalf("neutral signal must resolve to 1.0 scales, got %+v", set)
	}
}

func TestResolveComposesTrendAndVolatility(t *testing.T) {
	set := Resolve(Signal{Trend: 0.5, Volatility: 0.2}, clampCfg())
	want := 1.5 * 1.2
	if set.ATRScale != want {
		t.Fatalf("expected ATRScale %v, got %v", want, set.ATRScale)
	}
	if set.TierScale != 1.0 {
		t.Fatalf("momentum neutral, expected TierScale 1.0, got %v", set.TierScale)
	}
}

func TestResolveClampsEachFactor(t *testing.T) {
	// -0.8 maps to factor 0.2, clamped up to 0.5.
	set := Resolve(Signal{Momentum: -0.8}, clampCfg())
	if set.TierScale != 0.5 {
		t.Fatalf("expected clamped TierScale 0.5, got %v", set.TierScale)
	}
}

func TestResolveClampsComposition(t *testing.T) {
	// Both factors hit the 2.0 cap individually; the product is capped too.
	set := Resolve(Signal{Trend: 1, Volatility: 1}, clampCfg())
	if set.ATRScale != 2.0 {
		t.Fatalf("expected composed ATRScale capped at 2.0, got %v", set.ATRScale)
	}
}

func TestResolveClampsOutOfRangeInputs(t *testing.T) {
	// A runaway +5 bias is treated as +1.
	set := Resolve(Signal{Momentum: 5}, clampCfg())
	if set.TierScale != 2.0 {
		t.Fatalf("expected TierScale 2.0 for clamped input, got %v", set.TierScale)
	}
}

package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies GOTX_* environment variable overrides, and
// validates the result. A failed validation is fatal here, never mid-stream.
func Load(path string) (ExitConfig, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ExitConfig{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return ExitConfig{}, err
	}
	return cfg, nil
}

// applyEnvOverrides reads well-known GOTX_* environment variables and
// overwrites the corresponding fields when a variable is set. Ladders can
// only come from the file; scalars may be tuned per deployment.
func applyEnvOverrides(cfg *ExitConfig) {
	setInt(&cfg.ATRPeriod, "GOTX_ATR_PERIOD")
	setFloat64(&cfg.ATRMultiplier, "GOTX_ATR_MULTIPLIER")
	setFloat64(&cfg.BreakEvenR, "GOTX_BREAK_EVEN_R")
	setInt(&cfg.MaxTradeBars, "GOTX_MAX_TRADE_BARS")
	setBool(&cfg.TrendFilterEnabled, "GOTX_TREND_FILTER_ENABLED")
	setBool(&cfg.VolatilityFilterEnabled, "GOTX_VOLATILITY_FILTER_ENABLED")
	setBool(&cfg.MomentumFilterEnabled, "GOTX_MOMENTUM_FILTER_ENABLED")
	setFloat64(&cfg.BiasClampMin, "GOTX_BIAS_CLAMP_MIN")
	setFloat64(&cfg.BiasClampMax, "GOTX_BIAS_CLAMP_MAX")
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

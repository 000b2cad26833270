package strategy

import (
	"errors"
	"fmt"

	"intraday-strategy-lab/internal/domain"
)

// Registered strategy names.
const (
	NameORB          = "STR_001_ORB"
	NameFilteredORB  = "STR_002_ORB_FILTERED"
	NameVWAPPullback = "STR_003_VWAP_PULLBACK"
)

// ErrUnknownStrategy is returned by FromName for unregistered names.
var ErrUnknownStrategy = errors.New("unknown strategy")

func defaultORBConfig() domain.StrategyConfig {
	return domain.StrategyConfig{
		Name:       NameORB,
		Side:       domain.SideLong,
		EntryStart: domain.ClockTime{Hour: 9, Minute: 30},
		EntryEnd:   domain.ClockTime{Hour: 10, Minute: 30},
		ExitTime:   domain.ClockTime{Hour: 15, Minute: 25},
		Parameters: map[string]float64{
			"stop_loss_pct": 0.02,
			"target_pct":    0.03,
			"breakout_pct":  0.005,
		},
		Description: "Opening range breakout, long only",
	}
}

func defaultFilteredORBConfig() domain.StrategyConfig {
	cfg := defaultORBConfig()
	cfg.Name = NameFilteredORB
	cfg.Parameters = map[string]float64{
		"stop_loss_pct":     0.02,
		"target_pct":        0.03,
		"breakout_pct":      0.005,
		"min_gap_pct":       0.003,
		"volume_multiplier": 1.5,
	}
	cfg.Description = "Opening range breakout with gap and volume filters, long only"
	return cfg
}

func defaultVWAPPullbackConfig() domain.StrategyConfig {
	return domain.StrategyConfig{
		Name:       NameVWAPPullback,
		Side:       domain.SideLong,
		EntryStart: domain.ClockTime{Hour: 10, Minute: 0},
		EntryEnd:   domain.ClockTime{Hour: 14, Minute: 30},
		ExitTime:   domain.ClockTime{Hour: 15, Minute: 25},
		Parameters: map[string]float64{
			"stop_loss_pct":      0.02,
			"target_pct":         0.03,
			"trend_threshold":    0.005,
			"pullback_threshold": 0.002,
			"volume_multiplier":  1.3,
			"min_trend_minutes":  30,
		},
		Description: "VWAP pullback on trend days, long only",
	}
}

// FromName builds a strategy with its default configuration.
func FromName(name string) (Strategy, error) {
	return FromNameWithParams(name, nil)
}

// FromNameWithParams builds a strategy with its default configuration
// and the given parameter overrides merged on top. Sizing inputs like
// "capital" and "risk_fraction" come in this way from runtime config.
func FromNameWithParams(name string, overrides map[string]float64) (Strategy, error) {
	switch name {
	case NameORB:
		return NewORB(applyOverrides(defaultORBConfig(), overrides))
	case NameFilteredORB:
		return NewFilteredORB(applyOverrides(defaultFilteredORBConfig(), overrides))
	case NameVWAPPullback:
		return NewVWAPPullback(applyOverrides(defaultVWAPPullbackConfig(), overrides))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func applyOverrides(cfg domain.StrategyConfig, overrides map[string]float64) domain.StrategyConfig {
	for k, v := range overrides {
		cfg.Parameters[k] = v
	}
	return cfg
}

// All returns every registered strategy with default configuration,
// in registration order.
func All() []Strategy {
	return AllWithParams(nil)
}

// AllWithParams is All with parameter overrides applied to every
// strategy.
func AllWithParams(overrides map[string]float64) []Strategy {
	names := []string{NameORB, NameFilteredORB, NameVWAPPullback}
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := FromNameWithParams(name, overrides)
		if err != nil {
			// Defaults are valid by construction, and overrides only
			// touch Parameters, which Validate does not constrain.
			panic(err)
		}
		out = append(out, s)
	}
	return out
}

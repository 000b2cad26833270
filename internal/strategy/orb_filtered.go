package strategy

import (
	"context"

	"intraday-strategy-lab/internal/domain"
)

// FilteredORB is the breakout strategy gated by two regime filters:
// the day must gap up against the previous trading day's close, and the
// opening range must print above-average volume. Days without a prior
// close (the first day in the series) never qualify.
type FilteredORB struct {
	cfg domain.StrategyConfig
}

// NewFilteredORB creates the strategy with the given configuration.
func NewFilteredORB(cfg domain.StrategyConfig) (*FilteredORB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FilteredORB{cfg: cfg}, nil
}

func (s *FilteredORB) Config() domain.StrategyConfig { return s.cfg }

func (s *FilteredORB) GenerateSignals(ctx context.Context, series *domain.MarketSeries) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	for _, day := range series.Days() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if trade := s.evaluateDay(series.Symbol, day); trade != nil {
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

func (s *FilteredORB) evaluateDay(symbol string, day domain.TradingDay) *domain.Trade {
	if day.PrevClose == nil {
		return nil
	}

	orHigh, _, orVolume, n := openingRange(day.Bars, s.cfg.EntryStart)
	if n < minSetupBars {
		return nil
	}

	gap := (day.Bars[0].Open - *day.PrevClose) / *day.PrevClose
	if gap < s.cfg.Param("min_gap_pct", 0.003) {
		return nil
	}
	if orVolume < meanVolume(day.Bars)*s.cfg.Param("volume_multiplier", 1.5) {
		return nil
	}

	level := orHigh * (1 + s.cfg.Param("breakout_pct", 0.005))

	for _, b := range day.Bars {
		clock := domain.ClockTimeOf(b.Timestamp)
		if !clock.After(s.cfg.EntryStart) {
			continue
		}
		if clock.After(s.cfg.EntryEnd) {
			break
		}
		if b.High > level {
			entry := clampEntry(level, b.Open)
			return buildLongTrade(s.cfg, symbol, day.Bars, b.Timestamp, entry)
		}
	}
	return nil
}

var _ Strategy = (*FilteredORB)(nil)

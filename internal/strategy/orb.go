package strategy

import (
	"context"

	"intraday-strategy-lab/internal/domain"
)

// ORB trades opening-range breakouts: the high of the first session bars
// sets a level, and the first bar in the entry window to trade through
// level*(1+breakout_pct) opens a long.
type ORB struct {
	cfg domain.StrategyConfig
}

// NewORB creates the strategy with the given configuration.
func NewORB(cfg domain.StrategyConfig) (*ORB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ORB{cfg: cfg}, nil
}

func (s *ORB) Config() domain.StrategyConfig { return s.cfg }

func (s *ORB) GenerateSignals(ctx context.Context, series *domain.MarketSeries) ([]*domain.Trade, error) {
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

// evaluateDay returns the day's single trade, or nil when no entry fires.
func (s *ORB) evaluateDay(symbol string, day domain.TradingDay) *domain.Trade {
	orHigh, _, _, n := openingRange(day.Bars, s.cfg.EntryStart)
	if n < minSetupBars {
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

var _ Strategy = (*ORB)(nil)

package strategy

import (
	"context"
	"time"

	"intraday-strategy-lab/internal/domain"
)

// VWAPPullback buys pullbacks to VWAP on trend days. A trend day holds
// the close above VWAP by trend_threshold for at least min_trend_minutes
// bars after the window opens; the entry is a dip below VWAP by
// pullback_threshold, confirmed by the following bar holding above VWAP
// and above-average volume on the dip bar.
type VWAPPullback struct {
	cfg domain.StrategyConfig
}

// NewVWAPPullback creates the strategy with the given configuration.
func NewVWAPPullback(cfg domain.StrategyConfig) (*VWAPPullback, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &VWAPPullback{cfg: cfg}, nil
}

func (s *VWAPPullback) Config() domain.StrategyConfig { return s.cfg }

func (s *VWAPPullback) GenerateSignals(ctx context.Context, series *domain.MarketSeries) ([]*domain.Trade, error) {
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

func (s *VWAPPullback) evaluateDay(symbol string, day domain.TradingDay) *domain.Trade {
	if !s.isTrendDay(day.Bars) {
		return nil
	}

	entryTime, entryPrice, ok := s.findEntry(day.Bars)
	if !ok {
		return nil
	}
	return buildLongTrade(s.cfg, symbol, day.Bars, entryTime, entryPrice)
}

// isTrendDay counts the bars after the window opens whose close sits
// more than trend_threshold above VWAP.
func (s *VWAPPullback) isTrendDay(bars []domain.Bar) bool {
	threshold := s.cfg.Param("trend_threshold", 0.005)
	minBars := int(s.cfg.Param("min_trend_minutes", 30))

	var total, above int
	for _, b := range bars {
		if domain.ClockTimeOf(b.Timestamp).Before(s.cfg.EntryStart) {
			continue
		}
		total++
		if b.VWAP > 0 && (b.Close-b.VWAP)/b.VWAP > threshold {
			above++
		}
	}
	return total >= minBars && above >= minBars
}

// findEntry scans the entry window for a pullback bar: close below VWAP
// by pullback_threshold, the following bar's low holding above the
// pullback bar's VWAP, and volume above the window average times
// volume_multiplier. The fill is the pullback bar's close.
func (s *VWAPPullback) findEntry(bars []domain.Bar) (entryTime time.Time, entryPrice float64, ok bool) {
	pullback := s.cfg.Param("pullback_threshold", 0.002)
	volumeMult := s.cfg.Param("volume_multiplier", 1.3)

	var window []domain.Bar
	for _, b := range bars {
		clock := domain.ClockTimeOf(b.Timestamp)
		if clock.Before(s.cfg.EntryStart) || clock.After(s.cfg.EntryEnd) {
			continue
		}
		window = append(window, b)
	}
	if len(window) < minSetupBars {
		return time.Time{}, 0, false
	}

	avgVolume := meanVolume(window)

	for i := 1; i+1 < len(window); i++ {
		cur := window[i]
		if cur.VWAP <= 0 {
			continue
		}
		if (cur.Close-cur.VWAP)/cur.VWAP >= -pullback {
			continue
		}
		if window[i+1].Low <= cur.VWAP {
			continue
		}
		if cur.Volume > avgVolume*volumeMult {
			return cur.Timestamp, cur.Close, true
		}
	}
	return time.Time{}, 0, false
}

var _ Strategy = (*VWAPPullback)(nil)

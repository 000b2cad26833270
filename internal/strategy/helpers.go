package strategy

import (
	"math"
	"time"

	"intraday-strategy-lab/internal/domain"
)

// Position sizing defaults, overridable via config parameters
// "capital" and "risk_fraction".
const (
	defaultCapital      = 100000.0
	defaultRiskFraction = 0.01
)

// minSetupBars is the minimum number of bars a setup window needs before
// a day is evaluated. Days with fewer bars are skipped, not errors.
const minSetupBars = 10

// positionSize computes quantity from fixed-fraction risk:
// floor(riskFraction * capital / (entryPrice * stopLossPct)), floor 1 unit.
func positionSize(entryPrice, capital, riskFraction, stopLossPct float64) int {
	if entryPrice <= 0 || stopLossPct <= 0 {
		return 1
	}
	qty := int(math.Floor(riskFraction * capital / (entryPrice * stopLossPct)))
	if qty < 1 {
		return 1
	}
	return qty
}

// openingRange computes the high/low band and mean volume over the bars
// at or before end. Returns the number of bars in the range.
func openingRange(bars []domain.Bar, end domain.ClockTime) (high, low, meanVol float64, n int) {
	low = math.MaxFloat64
	var volSum float64
	for _, b := range bars {
		if domain.ClockTimeOf(b.Timestamp).After(end) {
			break
		}
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
		volSum += b.Volume
		n++
	}
	if n == 0 {
		return 0, 0, 0, 0
	}
	return high, low, volSum / float64(n), n
}

// meanVolume returns the average bar volume, 0 for an empty slice.
func meanVolume(bars []domain.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

// clampEntry clamps a fill to the trigger level: entries never fill
// better than the level, and never better than the bar's open.
func clampEntry(level, open float64) float64 {
	return math.Max(level, open)
}

// scanLongExit walks the day's bars strictly after entryTime and returns
// the first exit in priority order per bar: stop-loss (low <= stop),
// target (high >= target), then time exit (bar clock >= exitAt, fill at
// close). If nothing triggers before the data ends, the position is
// force-closed at the last bar's close.
func scanLongExit(dayBars []domain.Bar, entryTime time.Time, stop, target float64, exitAt domain.ClockTime) (time.Time, float64, string) {
	for _, b := range dayBars {
		if !b.Timestamp.After(entryTime) {
			continue
		}
		if b.Low <= stop {
			return b.Timestamp, stop, domain.ExitReasonStopLoss
		}
		if b.High >= target {
			return b.Timestamp, target, domain.ExitReasonTarget
		}
		clock := domain.ClockTimeOf(b.Timestamp)
		if !clock.Before(exitAt) {
			return b.Timestamp, b.Close, domain.ExitReasonTimeExit
		}
	}

	last := dayBars[len(dayBars)-1]
	return last.Timestamp, last.Close, domain.ExitReasonForceClose
}

// buildLongTrade constructs a closed LONG trade for a day: sizes the
// position, derives stop/target from config percentages, scans for the
// exit and closes the trade.
func buildLongTrade(cfg domain.StrategyConfig, symbol string, dayBars []domain.Bar, entryTime time.Time, entryPrice float64) *domain.Trade {
	stopPct := cfg.Param("stop_loss_pct", 0.02)
	targetPct := cfg.Param("target_pct", 0.03)
	capital := cfg.Param("capital", defaultCapital)
	riskFraction := cfg.Param("risk_fraction", defaultRiskFraction)

	trade := &domain.Trade{
		Symbol:     symbol,
		Strategy:   cfg.Name,
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		Quantity:   positionSize(entryPrice, capital, riskFraction, stopPct),
		Side:       domain.SideLong,
	}

	stop := entryPrice * (1 - stopPct)
	target := entryPrice * (1 + targetPct)
	exitTime, exitPrice, reason := scanLongExit(dayBars, entryTime, stop, target, cfg.ExitTime)
	trade.Close(exitTime, exitPrice, reason)

	return trade
}

package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSeries is returned when a MarketSeries violates its
// construction invariants. This is a programming-contract violation:
// the data-cleaning boundary must never hand an invalid series to the core.
var ErrInvalidSeries = errors.New("invalid market series")

// Bar is a single minute bar of OHLCV data plus derived fields.
// Derived fields are computed once at series construction and never mutated.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64

	// TypicalPrice is (high + low + close) / 3.
	TypicalPrice float64
	// VWAP is the volume-weighted average price cumulative from the
	// start of the bar's trading day up to and including this bar.
	VWAP float64
	// Return is the close-to-close return versus the previous bar of the
	// same day. Zero for the first bar of each day.
	Return float64
}

// Date returns the bar's calendar date with the time-of-day stripped.
func (b Bar) Date() time.Time {
	y, m, d := b.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.Timestamp.Location())
}

// MarketSeries is a validated, immutable per-symbol minute-bar series.
// Bars are strictly increasing by timestamp. The series is owned by the
// caller and lent to strategies; one instance may be reused across runs.
type MarketSeries struct {
	Symbol string
	Bars   []Bar
}

// NewMarketSeries validates bars and computes derived fields.
// Validation failures wrap ErrInvalidSeries and are fatal: the core never
// accepts duplicate or non-monotonic timestamps, or NaN fields.
func NewMarketSeries(symbol string, bars []Bar) (*MarketSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidSeries)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s has no bars", ErrInvalidSeries, symbol)
	}

	out := make([]Bar, len(bars))
	copy(out, bars)

	var (
		cumVolume float64
		cumTPV    float64
		prevDate  time.Time
		prevClose float64
	)

	for i := range out {
		b := &out[i]

		if i > 0 && !out[i-1].Timestamp.Before(b.Timestamp) {
			return nil, fmt.Errorf("%w: %s timestamps not strictly increasing at %s",
				ErrInvalidSeries, symbol, b.Timestamp.Format(time.RFC3339))
		}
		if hasNaN(b) {
			return nil, fmt.Errorf("%w: %s has NaN fields at %s",
				ErrInvalidSeries, symbol, b.Timestamp.Format(time.RFC3339))
		}

		// VWAP accumulation resets at each day boundary.
		date := b.Date()
		if !date.Equal(prevDate) {
			cumVolume = 0
			cumTPV = 0
			prevClose = 0
			prevDate = date
		}

		b.TypicalPrice = (b.High + b.Low + b.Close) / 3
		cumVolume += b.Volume
		cumTPV += b.TypicalPrice * b.Volume
		if cumVolume > 0 {
			b.VWAP = cumTPV / cumVolume
		} else {
			b.VWAP = b.TypicalPrice
		}

		if prevClose > 0 {
			b.Return = (b.Close - prevClose) / prevClose
		} else {
			b.Return = 0
		}
		prevClose = b.Close
	}

	return &MarketSeries{Symbol: symbol, Bars: out}, nil
}

// TradingDay is one calendar day's slice of a MarketSeries.
// PrevClose is the previous trading day's closing price, nil on the
// first day of the series.
type TradingDay struct {
	Date      time.Time
	Bars      []Bar
	PrevClose *float64
}

// Days partitions the series into per-day slices in chronological order.
// Bar slices alias the series' backing array; callers must not mutate them.
func (s *MarketSeries) Days() []TradingDay {
	var days []TradingDay

	start := 0
	for i := 1; i <= len(s.Bars); i++ {
		if i == len(s.Bars) || !s.Bars[i].Date().Equal(s.Bars[start].Date()) {
			day := TradingDay{
				Date: s.Bars[start].Date(),
				Bars: s.Bars[start:i],
			}
			if len(days) > 0 {
				prev := days[len(days)-1].Bars
				close := prev[len(prev)-1].Close
				day.PrevClose = &close
			}
			days = append(days, day)
			start = i
		}
	}

	return days
}

func hasNaN(b *Bar) bool {
	return math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) ||
		math.IsNaN(b.Close) || math.IsNaN(b.Volume)
}

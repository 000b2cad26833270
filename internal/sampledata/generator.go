package sampledata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/scmhub/calendar"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// Session bounds for generated bars, inclusive on both ends.
var (
	sessionOpen  = domain.NewClockTime(9, 15)
	sessionClose = domain.NewClockTime(15, 30)
)

// SymbolProfile controls the random walk for one symbol.
type SymbolProfile struct {
	BasePrice  float64
	Volatility float64
}

// DefaultProfiles covers a liquid large-cap universe with per-symbol
// base prices and daily volatilities.
func DefaultProfiles() map[string]SymbolProfile {
	return map[string]SymbolProfile{
		"RELIANCE":   {BasePrice: 2500, Volatility: 0.015},
		"TCS":        {BasePrice: 3500, Volatility: 0.012},
		"HDFCBANK":   {BasePrice: 1600, Volatility: 0.010},
		"INFY":       {BasePrice: 1400, Volatility: 0.014},
		"HINDUNILVR": {BasePrice: 2500, Volatility: 0.011},
		"ICICIBANK":  {BasePrice: 900, Volatility: 0.013},
		"KOTAKBANK":  {BasePrice: 1800, Volatility: 0.010},
		"SBIN":       {BasePrice: 600, Volatility: 0.015},
		"AXISBANK":   {BasePrice: 800, Volatility: 0.014},
		"BAJFINANCE": {BasePrice: 7000, Volatility: 0.016},
	}
}

// Generator produces synthetic minute bars on a random walk, for smoke
// runs and tests. Same seed, same output.
type Generator struct {
	rng      *rand.Rand
	cal      *calendar.Calendar
	profiles map[string]SymbolProfile
}

// Options configures a Generator.
type Options struct {
	// Seed for the random walk. Zero means seed 1.
	Seed int64
	// MIC selects the trading calendar (ISO 10383), default "xnys".
	// Weekday fallback applies when the MIC is unknown.
	MIC string
	// Profiles overrides DefaultProfiles.
	Profiles map[string]SymbolProfile
}

// New creates a Generator.
func New(opts Options) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = 1
	}
	mic := opts.MIC
	if mic == "" {
		mic = "xnys"
	}
	profiles := opts.Profiles
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		cal:      calendar.GetCalendar(mic),
		profiles: profiles,
	}
}

// Symbols returns the generator's symbol universe, sorted.
func (g *Generator) Symbols() []string {
	symbols := make([]string, 0, len(g.profiles))
	for sym := range g.profiles {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Generate produces the full minute-bar series for a symbol between
// start and end dates inclusive, trading days only.
func (g *Generator) Generate(symbol string, start, end time.Time) ([]domain.Bar, error) {
	profile, ok := g.profiles[symbol]
	if !ok {
		profile = SymbolProfile{BasePrice: 1000, Volatility: 0.012}
	}
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var bars []domain.Bar
	basePrice := profile.BasePrice

	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		if !g.isTradingDay(day) {
			continue
		}
		dayBars := g.generateDay(day, basePrice, profile.Volatility)
		bars = append(bars, dayBars...)
		// Next day's base drifts off the close.
		basePrice = dayBars[len(dayBars)-1].Close * (1 + g.rng.NormFloat64()*0.005)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no trading days between %s and %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return bars, nil
}

// Seed generates series for every symbol in the universe and inserts
// them into the store.
func (g *Generator) Seed(ctx context.Context, store storage.SeriesStore, start, end time.Time) (int, error) {
	total := 0
	for _, symbol := range g.Symbols() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		bars, err := g.Generate(symbol, start, end)
		if err != nil {
			return total, fmt.Errorf("generate %s: %w", symbol, err)
		}
		if err := store.InsertBars(ctx, symbol, bars); err != nil {
			return total, fmt.Errorf("insert %s: %w", symbol, err)
		}
		total += len(bars)
	}
	return total, nil
}

// generateDay produces one session of bars with an opening gap,
// time-of-day volatility shaping and open/close volume concentration.
func (g *Generator) generateDay(day time.Time, basePrice, volatility float64) []domain.Bar {
	openTS := time.Date(day.Year(), day.Month(), day.Day(),
		sessionOpen.Hour, sessionOpen.Minute, 0, 0, time.UTC)
	minutes := sessionClose.Minutes() - sessionOpen.Minutes() + 1

	price := basePrice * (1 + g.rng.NormFloat64()*volatility*0.5)
	bars := make([]domain.Bar, 0, minutes)
	prevClose := price

	for i := 0; i < minutes; i++ {
		ts := openTS.Add(time.Duration(i) * time.Minute)
		clock := domain.ClockTimeOf(ts)

		price *= 1 + g.rng.NormFloat64()*volatility*timeFactor(clock)

		high := price * (1 + math.Abs(g.rng.NormFloat64())*volatility*0.3)
		low := price * (1 - math.Abs(g.rng.NormFloat64())*volatility*0.3)

		open := prevClose
		if i == 0 {
			open = price
		}
		high = math.Max(math.Max(high, price), open)
		low = math.Min(math.Min(low, price), open)

		volume := float64(1000+g.rng.Intn(4000)) * volumeFactor(clock)

		bars = append(bars, domain.Bar{
			Timestamp: ts,
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(price),
			Volume:    math.Floor(volume),
		})
		prevClose = bars[len(bars)-1].Close
	}

	return bars
}

func (g *Generator) isTradingDay(day time.Time) bool {
	if g.cal != nil {
		return g.cal.IsBusinessDay(day)
	}
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// timeFactor shapes volatility: elevated in the first and last hours,
// muted over lunch.
func timeFactor(c domain.ClockTime) float64 {
	switch {
	case !c.After(domain.NewClockTime(10, 30)):
		return 1.5
	case !c.Before(domain.NewClockTime(14, 0)):
		return 1.3
	case !c.Before(domain.NewClockTime(12, 30)) && !c.After(domain.NewClockTime(13, 30)):
		return 0.7
	default:
		return 1.0
	}
}

// volumeFactor concentrates volume at the open and the close.
func volumeFactor(c domain.ClockTime) float64 {
	switch {
	case !c.After(domain.NewClockTime(9, 30)):
		return 2.0
	case !c.Before(domain.NewClockTime(15, 15)):
		return 1.8
	case !c.Before(domain.NewClockTime(10, 0)) && !c.After(domain.NewClockTime(11, 0)):
		return 1.3
	case !c.Before(domain.NewClockTime(14, 0)) && !c.After(domain.NewClockTime(15, 0)):
		return 1.4
	default:
		return 1.0
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

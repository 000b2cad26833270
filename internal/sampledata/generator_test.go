package sampledata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage/memory"
)

func TestGenerate_SessionBoundsAndOHLC(t *testing.T) {
	g := New(Options{Seed: 42})
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC) // Monday
	end := time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC)

	bars, err := g.Generate("RELIANCE", start, end)
	require.NoError(t, err)
	require.NotEmpty(t, bars)

	// 5 trading days, 09:15..15:30 inclusive = 376 bars/day.
	assert.Equal(t, 5*376, len(bars))

	for _, b := range bars {
		clock := domain.ClockTimeOf(b.Timestamp)
		assert.False(t, clock.Before(sessionOpen), "bar before session open: %s", b.Timestamp)
		assert.False(t, clock.After(sessionClose), "bar after session close: %s", b.Timestamp)

		assert.GreaterOrEqual(t, b.High, b.Open)
		assert.GreaterOrEqual(t, b.High, b.Close)
		assert.LessOrEqual(t, b.Low, b.Open)
		assert.LessOrEqual(t, b.Low, b.Close)
		assert.Greater(t, b.Volume, 0.0)
	}
}

func TestGenerate_SkipsWeekends(t *testing.T) {
	g := New(Options{Seed: 1})
	// Saturday and Sunday only.
	start := time.Date(2023, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 4, 0, 0, 0, 0, time.UTC)

	_, err := g.Generate("TCS", start, end)
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 6, 0, 0, 0, 0, time.UTC)

	first, err := New(Options{Seed: 7}).Generate("INFY", start, end)
	require.NoError(t, err)
	second, err := New(Options{Seed: 7}).Generate("INFY", start, end)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_SeriesIsValid(t *testing.T) {
	g := New(Options{Seed: 3})
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 16, 0, 0, 0, 0, time.UTC)

	bars, err := g.Generate("SBIN", start, end)
	require.NoError(t, err)

	// Output must pass series validation untouched.
	series, err := domain.NewMarketSeries("SBIN", bars)
	require.NoError(t, err)
	assert.Len(t, series.Days(), 10)
}

func TestSeed_PopulatesAllSymbols(t *testing.T) {
	g := New(Options{Seed: 9})
	store := memory.NewSeriesStore()
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 6, 0, 0, 0, 0, time.UTC)

	total, err := g.Seed(context.Background(), store, start, end)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultProfiles())*2*376, total)

	symbols, err := store.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.Symbols(), symbols)
}

func TestGenerate_UnknownSymbolUsesDefaults(t *testing.T) {
	g := New(Options{Seed: 5})
	start := time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC)

	bars, err := g.Generate("WHOKNOWS", start, start)
	require.NoError(t, err)
	require.NotEmpty(t, bars)
	// Default base price is 1000; the opening gap stays well within 10%.
	assert.InDelta(t, 1000, bars[0].Open, 100)
}

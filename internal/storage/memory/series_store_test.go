package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

func bar(ts time.Time, close float64) domain.Bar {
	return domain.Bar{
		Timestamp: ts,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    1000,
	}
}

func TestSeriesStore_InsertAndGet(t *testing.T) {
	store := NewSeriesStore()
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)

	require.NoError(t, store.InsertBars(ctx, "RELIANCE", []domain.Bar{
		bar(ts, 100), bar(ts.Add(time.Minute), 101),
	}))

	series, err := store.GetBySymbol(ctx, "RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", series.Symbol)
	require.Len(t, series.Bars, 2)
	assert.NotZero(t, series.Bars[0].VWAP, "derived fields computed on load")
}

func TestSeriesStore_InsertKeepsBarsOrdered(t *testing.T) {
	store := NewSeriesStore()
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)

	// Insert out of order across two calls.
	require.NoError(t, store.InsertBars(ctx, "TCS", []domain.Bar{bar(ts.Add(time.Minute), 101)}))
	require.NoError(t, store.InsertBars(ctx, "TCS", []domain.Bar{bar(ts, 100)}))

	series, err := store.GetBySymbol(ctx, "TCS")
	require.NoError(t, err)
	assert.True(t, series.Bars[0].Timestamp.Before(series.Bars[1].Timestamp))
}

func TestSeriesStore_DuplicateTimestampRejected(t *testing.T) {
	store := NewSeriesStore()
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)

	require.NoError(t, store.InsertBars(ctx, "TCS", []domain.Bar{bar(ts, 100)}))
	err := store.InsertBars(ctx, "TCS", []domain.Bar{bar(ts, 101)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSeriesStore_GetUnknownSymbol(t *testing.T) {
	store := NewSeriesStore()

	_, err := store.GetBySymbol(context.Background(), "MISSING")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSeriesStore_ListSymbolsSorted(t *testing.T) {
	store := NewSeriesStore()
	ctx := context.Background()
	ts := time.Date(2023, 1, 2, 9, 15, 0, 0, time.UTC)

	require.NoError(t, store.InsertBars(ctx, "TCS", []domain.Bar{bar(ts, 100)}))
	require.NoError(t, store.InsertBars(ctx, "INFY", []domain.Bar{bar(ts, 100)}))

	symbols, err := store.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"INFY", "TCS"}, symbols)
}

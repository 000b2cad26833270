package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
)

func testTrade(symbol string, entry time.Time, pnl float64) *domain.Trade {
	t := &domain.Trade{
		Symbol:     symbol,
		Strategy:   "STR_001_ORB",
		EntryTime:  entry,
		EntryPrice: 100.6,
		Quantity:   497,
		Side:       domain.SideLong,
	}
	t.Close(entry.Add(30*time.Minute), 100.6+pnl/497, domain.ExitReasonTarget)
	return t
}

func TestLedgerStore_SaveLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)
	ctx := context.Background()
	entry := time.Date(2023, 1, 2, 9, 45, 0, 0, time.UTC)

	saved := []*domain.Trade{
		testTrade("TCS", entry.Add(time.Minute), -80),
		testTrade("RELIANCE", entry, 150),
	}
	require.NoError(t, store.Save(ctx, "STR_001_ORB", saved))

	loaded, err := store.Load(ctx, "STR_001_ORB")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	// Ledger comes back ordered by symbol, entry time.
	assert.Equal(t, "RELIANCE", loaded[0].Symbol)
	assert.Equal(t, "TCS", loaded[1].Symbol)
	assert.True(t, loaded[0].EntryTime.Equal(entry))
	require.NotNil(t, loaded[0].PnL)
	assert.InDelta(t, 150, *loaded[0].PnL, 1e-6)
	assert.Equal(t, domain.SideLong, loaded[0].Side)
}

func TestLedgerStore_LoadUnknownStrategyIsEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)

	trades, err := store.Load(context.Background(), "STR_404")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestLedgerStore_SaveReplacesPreviousLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)
	ctx := context.Background()
	entry := time.Date(2023, 1, 2, 9, 45, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "s", []*domain.Trade{
		testTrade("A", entry, 10),
		testTrade("B", entry, 20),
	}))
	require.NoError(t, store.Save(ctx, "s", []*domain.Trade{testTrade("C", entry, 30)}))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].Symbol)
}

func TestLedgerStore_LedgersAreIsolatedByStrategy(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)
	ctx := context.Background()
	entry := time.Date(2023, 1, 2, 9, 45, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "STR_001", []*domain.Trade{testTrade("A", entry, 10)}))
	require.NoError(t, store.Save(ctx, "STR_002", []*domain.Trade{testTrade("B", entry, 20)}))

	// Overwriting one ledger leaves the other untouched.
	require.NoError(t, store.Save(ctx, "STR_001", nil))

	first, err := store.Load(ctx, "STR_001")
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := store.Load(ctx, "STR_002")
	require.NoError(t, err)
	assert.Len(t, second, 1)

	names, err := store.ListStrategies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"STR_002"}, names)
}

func TestLedgerStore_OpenTradeNullColumns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLedgerStore(pool)
	ctx := context.Background()

	open := &domain.Trade{
		Symbol:     "A",
		Strategy:   "s",
		EntryTime:  time.Date(2023, 1, 2, 9, 45, 0, 0, time.UTC),
		EntryPrice: 100,
		Quantity:   1,
		Side:       domain.SideLong,
	}
	require.NoError(t, store.Save(ctx, "s", []*domain.Trade{open}))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Nil(t, loaded[0].ExitTime)
	assert.Nil(t, loaded[0].ExitPrice)
	assert.Nil(t, loaded[0].PnL)
}

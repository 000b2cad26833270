package postgres

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

func testResult(name string) *domain.StrategyResult {
	return &domain.StrategyResult{
		StrategyName:            name,
		TotalTrades:             120,
		WinningTrades:           70,
		LosingTrades:            50,
		TotalPnL:                5230.5,
		MaxDrawdown:             -812.25,
		ProfitFactor:            1.62,
		SharpeRatio:             0.91,
		AvgTradeDurationMinutes: 47.3,
		Yearly: map[int]domain.PeriodPerformance{
			2022: {Trades: 60, TotalPnL: 2000, MeanPnL: 33.3, Symbols: 12},
			2023: {Trades: 60, TotalPnL: 3230.5, MeanPnL: 53.8, Symbols: 14},
		},
		Monthly: map[time.Month]domain.PeriodPerformance{
			time.January: {Trades: 10, TotalPnL: 500, MeanPnL: 50, Symbols: 5},
		},
		WinRates: domain.WinRateAnalysis{
			Overall:       0.583,
			SymbolAverage: 0.55,
			ByExitReason: map[string]float64{
				domain.ExitReasonTarget:   1.0,
				domain.ExitReasonStopLoss: 0.0,
			},
		},
		Risk: domain.RiskMetrics{
			VaR95:                -120.5,
			VaR99:                -260.0,
			MaxConsecutiveLosses: 6,
			AvgWin:               145.2,
			AvgLoss:              -98.7,
			WinLossRatio:         1.47,
		},
	}
}

func TestResultStore_SaveGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testResult("STR_001_ORB")))

	got, err := store.GetByStrategy(ctx, "STR_001_ORB")
	require.NoError(t, err)
	assert.Equal(t, 120, got.TotalTrades)
	assert.InDelta(t, 5230.5, got.TotalPnL, 1e-9)
	assert.InDelta(t, -812.25, got.MaxDrawdown, 1e-9)

	// Breakdowns survive the JSONB round trip.
	require.Len(t, got.Yearly, 2)
	assert.Equal(t, 60, got.Yearly[2022].Trades)
	assert.Equal(t, 10, got.Monthly[time.January].Trades)
	assert.InDelta(t, 1.0, got.WinRates.ByExitReason[domain.ExitReasonTarget], 1e-9)
	assert.Equal(t, 6, got.Risk.MaxConsecutiveLosses)
}

func TestResultStore_GetMissing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewResultStore(pool)

	_, err := store.GetByStrategy(context.Background(), "STR_404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultStore_SaveIsUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testResult("s")))

	updated := testResult("s")
	updated.TotalTrades = 200
	require.NoError(t, store.Save(ctx, updated))

	got, err := store.GetByStrategy(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 200, got.TotalTrades)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResultStore_GetAllSorted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testResult("STR_002")))
	require.NoError(t, store.Save(ctx, testResult("STR_001")))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "STR_001", all[0].StrategyName)
}

func TestResultStore_InfiniteProfitFactor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewResultStore(pool)
	ctx := context.Background()

	r := testResult("s")
	r.ProfitFactor = math.Inf(1)
	require.NoError(t, store.Save(ctx, r))

	got, err := store.GetByStrategy(ctx, "s")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.ProfitFactor, 1))
}

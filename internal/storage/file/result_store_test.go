package file

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

func sampleResult(name string) *domain.StrategyResult {
	return &domain.StrategyResult{
		StrategyName:            name,
		TotalTrades:             80,
		WinningTrades:           45,
		LosingTrades:            30,
		TotalPnL:                3120.75,
		MaxDrawdown:             -640.5,
		ProfitFactor:            1.55,
		SharpeRatio:             0.82,
		AvgTradeDurationMinutes: 52.1,
		Yearly: map[int]domain.PeriodPerformance{
			2023: {Trades: 80, TotalPnL: 3120.75, MeanPnL: 39.0, Symbols: 9},
		},
		Monthly: map[time.Month]domain.PeriodPerformance{
			time.March: {Trades: 12, TotalPnL: 410, MeanPnL: 34.2, Symbols: 6},
		},
		WinRates: domain.WinRateAnalysis{
			Overall:       0.5625,
			SymbolAverage: 0.54,
			ByExitReason:  map[string]float64{domain.ExitReasonTarget: 1.0},
		},
		Risk: domain.RiskMetrics{
			VaR95:                -110.0,
			VaR99:                -240.0,
			MaxConsecutiveLosses: 4,
			AvgWin:               130.4,
			AvgLoss:              -92.1,
			WinLossRatio:         1.42,
		},
	}
}

func TestResultStore_SaveGetRoundTrip(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := sampleResult("STR_001_ORB")
	require.NoError(t, store.Save(ctx, want))

	got, err := store.GetByStrategy(ctx, "STR_001_ORB")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResultStore_GetMissing(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetByStrategy(context.Background(), "STR_404")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultStore_SaveOverwrites(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleResult("s")))

	updated := sampleResult("s")
	updated.TotalTrades = 99
	require.NoError(t, store.Save(ctx, updated))

	got, err := store.GetByStrategy(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 99, got.TotalTrades)
}

func TestResultStore_InfiniteProfitFactorRoundTrip(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	r := sampleResult("s")
	r.ProfitFactor = math.Inf(1)
	require.NoError(t, store.Save(ctx, r))

	got, err := store.GetByStrategy(ctx, "s")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.ProfitFactor, 1))
}

func TestResultStore_GetAllSorted(t *testing.T) {
	store, err := NewResultStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleResult("STR_002")))
	require.NoError(t, store.Save(ctx, sampleResult("STR_001")))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "STR_001", all[0].StrategyName)
	assert.Equal(t, "STR_002", all[1].StrategyName)
}

func TestResultStore_SharesDirWithLedgers(t *testing.T) {
	dir := t.TempDir()
	ledgers, err := NewLedgerStore(dir)
	require.NoError(t, err)
	results, err := NewResultStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, ledgers.Save(ctx, "s", nil))
	require.NoError(t, results.Save(ctx, sampleResult("s")))

	// Result files are not mistaken for ledgers and vice versa.
	names, err := ledgers.ListStrategies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, names)

	all, err := results.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

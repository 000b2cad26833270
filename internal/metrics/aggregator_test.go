package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage/memory"
)

func TestAggregator_ComputeAndStore(t *testing.T) {
	ledger := memory.NewLedgerStore()
	results := memory.NewResultStore()
	ctx := context.Background()

	entry := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Save(ctx, "STR_001_ORB", []*domain.Trade{
		tradeWithPnL("A", entry, 50, domain.ExitReasonTarget),
		tradeWithPnL("B", entry.Add(24*time.Hour), -20, domain.ExitReasonStopLoss),
	}))

	agg := NewAggregator(ledger, results)
	result, err := agg.ComputeAndStore(ctx, "STR_001_ORB")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalTrades)

	stored, err := results.GetByStrategy(ctx, "STR_001_ORB")
	require.NoError(t, err)
	assert.InDelta(t, 30, stored.TotalPnL, 1e-9)
}

func TestAggregator_EmptyLedgerYieldsZeroResult(t *testing.T) {
	agg := NewAggregator(memory.NewLedgerStore(), memory.NewResultStore())

	result, err := agg.ComputeAndStore(context.Background(), "STR_001_ORB")
	require.NoError(t, err)
	assert.Zero(t, result.TotalTrades)
}

func TestAggregator_RecomputeOverwrites(t *testing.T) {
	ledger := memory.NewLedgerStore()
	results := memory.NewResultStore()
	ctx := context.Background()
	entry := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)

	agg := NewAggregator(ledger, results)

	require.NoError(t, ledger.Save(ctx, "s", []*domain.Trade{
		tradeWithPnL("A", entry, 50, domain.ExitReasonTarget),
	}))
	_, err := agg.ComputeAndStore(ctx, "s")
	require.NoError(t, err)

	require.NoError(t, ledger.Save(ctx, "s", []*domain.Trade{
		tradeWithPnL("A", entry, 50, domain.ExitReasonTarget),
		tradeWithPnL("B", entry.Add(24*time.Hour), 10, domain.ExitReasonTarget),
	}))
	_, err = agg.ComputeAndStore(ctx, "s")
	require.NoError(t, err)

	stored, err := results.GetByStrategy(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalTrades)
}

func TestAggregator_ComputeAll(t *testing.T) {
	ledger := memory.NewLedgerStore()
	results := memory.NewResultStore()
	ctx := context.Background()
	entry := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.Save(ctx, "STR_002", []*domain.Trade{
		tradeWithPnL("A", entry, 10, domain.ExitReasonTarget),
	}))
	require.NoError(t, ledger.Save(ctx, "STR_001", []*domain.Trade{
		tradeWithPnL("A", entry, 20, domain.ExitReasonTarget),
	}))

	agg := NewAggregator(ledger, results)
	all, err := agg.ComputeAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "STR_001", all[0].StrategyName)

	stored, err := results.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

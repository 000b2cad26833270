package metrics

import (
	"context"
	"fmt"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/observability"
	"intraday-strategy-lab/internal/storage"
)

// Aggregator computes strategy results from persisted ledgers.
type Aggregator struct {
	ledgerStore storage.LedgerStore
	resultStore storage.ResultStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(ledgerStore storage.LedgerStore, resultStore storage.ResultStore) *Aggregator {
	return &Aggregator{
		ledgerStore: ledgerStore,
		resultStore: resultStore,
	}
}

// ComputeResult loads the strategy's ledger and computes its result.
// An empty ledger yields a zero result, not an error: a strategy that
// never traded is a valid (and damning) outcome.
func (a *Aggregator) ComputeResult(ctx context.Context, strategy string) (*domain.StrategyResult, error) {
	trades, err := a.ledgerStore.Load(ctx, strategy)
	if err != nil {
		return nil, fmt.Errorf("load ledger for %s: %w", strategy, err)
	}
	return Compute(strategy, trades), nil
}

// ComputeAndStore computes and persists the result, overwriting any
// previous result for the strategy.
func (a *Aggregator) ComputeAndStore(ctx context.Context, strategy string) (*domain.StrategyResult, error) {
	result, err := a.ComputeResult(ctx, strategy)
	if err != nil {
		return nil, err
	}
	if err := a.resultStore.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("save result for %s: %w", strategy, err)
	}
	observability.DefaultMetrics.ResultsComputed.Inc()
	return result, nil
}

// ComputeAll recomputes results for every strategy with a ledger.
func (a *Aggregator) ComputeAll(ctx context.Context) ([]*domain.StrategyResult, error) {
	names, err := a.ledgerStore.ListStrategies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}

	results := make([]*domain.StrategyResult, 0, len(names))
	for _, name := range names {
		result, err := a.ComputeAndStore(ctx, name)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

package storage

import (
	"context"

	"intraday-strategy-lab/internal/domain"
)

// SeriesStore provides access to cleaned minute-bar data, one series per
// symbol. The cleaning/ingestion boundary guarantees series invariants;
// GetBySymbol rejects a corrupted series with domain.ErrInvalidSeries.
type SeriesStore interface {
	// GetBySymbol retrieves the full series for a symbol, bars ordered by
	// timestamp ASC. Returns ErrNotFound if the symbol has no data.
	GetBySymbol(ctx context.Context, symbol string) (*domain.MarketSeries, error)

	// ListSymbols returns all symbols with data, sorted ascending.
	ListSymbols(ctx context.Context) ([]string, error)

	// InsertBars adds bars for a symbol. Bars must not overlap existing
	// timestamps for that symbol.
	InsertBars(ctx context.Context, symbol string, bars []domain.Bar) error
}

// LedgerStore persists the per-strategy trade ledger.
type LedgerStore interface {
	// Load returns all trades recorded for a strategy, or an empty slice
	// if the strategy has no ledger yet. Never returns ErrNotFound.
	Load(ctx context.Context, strategy string) ([]*domain.Trade, error)

	// Save replaces the strategy's ledger with the given trades.
	// The overwrite is idempotent and atomic: a failed save never leaves
	// a partially written ledger behind.
	Save(ctx context.Context, strategy string, trades []*domain.Trade) error

	// ListStrategies returns all strategies with a persisted ledger, sorted.
	ListStrategies(ctx context.Context) ([]string, error)
}

// ResultStore persists computed strategy results.
type ResultStore interface {
	// Save inserts or fully overwrites the result for a strategy.
	Save(ctx context.Context, r *domain.StrategyResult) error

	// GetByStrategy retrieves the result for a strategy.
	// Returns ErrNotFound if the strategy has not been analyzed.
	GetByStrategy(ctx context.Context, strategy string) (*domain.StrategyResult, error)

	// GetAll retrieves all results, sorted by strategy name.
	GetAll(ctx context.Context) ([]*domain.StrategyResult, error)
}

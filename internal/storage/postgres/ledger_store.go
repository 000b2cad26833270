package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// Load retrieves the strategy's ledger ordered by symbol, entry time.
// An unknown strategy yields an empty slice.
func (s *LedgerStore) Load(ctx context.Context, strategy string) ([]*domain.Trade, error) {
	if strategy == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT symbol, strategy, entry_time, exit_time,
		       entry_price, exit_price, quantity, side, pnl, exit_reason
		FROM trades
		WHERE strategy = $1
		ORDER BY symbol ASC, entry_time ASC
	`

	rows, err := s.pool.Query(ctx, query, strategy)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// Save replaces the strategy's ledger in a single transaction: the old
// rows and the new rows never coexist, and a failure rolls back to the
// previous ledger.
func (s *LedgerStore) Save(ctx context.Context, strategy string, trades []*domain.Trade) error {
	if strategy == "" {
		return storage.ErrInvalidInput
	}
	for _, t := range trades {
		if t == nil {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trades WHERE strategy = $1`, strategy); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	query := `
		INSERT INTO trades (
			symbol, strategy, entry_time, exit_time,
			entry_price, exit_price, quantity, side, pnl, exit_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, t := range trades {
		_, err := tx.Exec(ctx, query,
			t.Symbol, strategy, t.EntryTime, t.ExitTime,
			t.EntryPrice, t.ExitPrice, t.Quantity, string(t.Side), t.PnL, t.ExitReason,
		)
		if err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListStrategies returns all strategies with a persisted ledger.
func (s *LedgerStore) ListStrategies(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT strategy FROM trades ORDER BY strategy ASC`)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan strategy name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy names: %w", err)
	}
	return names, nil
}

// scanTrades scans rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	trades := []*domain.Trade{}

	for rows.Next() {
		var t domain.Trade
		var side string

		err := rows.Scan(
			&t.Symbol, &t.Strategy, &t.EntryTime, &t.ExitTime,
			&t.EntryPrice, &t.ExitPrice, &t.Quantity, &side, &t.PnL, &t.ExitReason,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Side = domain.Side(side)

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}

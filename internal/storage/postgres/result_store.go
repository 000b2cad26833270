package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
// Scalar metrics live in columns; the yearly/monthly/win-rate/risk
// breakdowns are stored as a JSONB document.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// resultBreakdowns is the JSONB payload for a strategy result.
type resultBreakdowns struct {
	Yearly   map[int]domain.PeriodPerformance        `json:"yearly,omitempty"`
	Monthly  map[time.Month]domain.PeriodPerformance `json:"monthly,omitempty"`
	WinRates domain.WinRateAnalysis                  `json:"win_rates"`
	Risk     domain.RiskMetrics                      `json:"risk"`
}

// Save inserts or fully overwrites the result for a strategy.
func (s *ResultStore) Save(ctx context.Context, r *domain.StrategyResult) error {
	if r == nil || r.StrategyName == "" {
		return storage.ErrInvalidInput
	}

	breakdowns, err := json.Marshal(resultBreakdowns{
		Yearly:   r.Yearly,
		Monthly:  r.Monthly,
		WinRates: r.WinRates,
		Risk:     r.Risk,
	})
	if err != nil {
		return fmt.Errorf("marshal breakdowns: %w", err)
	}

	query := `
		INSERT INTO strategy_results (
			strategy_name, total_trades, winning_trades, losing_trades,
			total_pnl, max_drawdown, profit_factor, sharpe_ratio,
			avg_trade_duration_minutes, breakdowns, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (strategy_name) DO UPDATE SET
			total_trades = EXCLUDED.total_trades,
			winning_trades = EXCLUDED.winning_trades,
			losing_trades = EXCLUDED.losing_trades,
			total_pnl = EXCLUDED.total_pnl,
			max_drawdown = EXCLUDED.max_drawdown,
			profit_factor = EXCLUDED.profit_factor,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			avg_trade_duration_minutes = EXCLUDED.avg_trade_duration_minutes,
			breakdowns = EXCLUDED.breakdowns,
			updated_at = now()
	`

	_, err = s.pool.Exec(ctx, query,
		r.StrategyName, r.TotalTrades, r.WinningTrades, r.LosingTrades,
		r.TotalPnL, r.MaxDrawdown, r.ProfitFactor, r.SharpeRatio,
		r.AvgTradeDurationMinutes, breakdowns,
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// GetByStrategy retrieves the result for a strategy.
func (s *ResultStore) GetByStrategy(ctx context.Context, strategy string) (*domain.StrategyResult, error) {
	query := `
		SELECT strategy_name, total_trades, winning_trades, losing_trades,
		       total_pnl, max_drawdown, profit_factor, sharpe_ratio,
		       avg_trade_duration_minutes, breakdowns
		FROM strategy_results
		WHERE strategy_name = $1
	`

	r, err := scanResult(s.pool.QueryRow(ctx, query, strategy))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get result by strategy: %w", err)
	}
	return r, nil
}

// GetAll retrieves all results, sorted by strategy name.
func (s *ResultStore) GetAll(ctx context.Context) ([]*domain.StrategyResult, error) {
	query := `
		SELECT strategy_name, total_trades, winning_trades, losing_trades,
		       total_pnl, max_drawdown, profit_factor, sharpe_ratio,
		       avg_trade_duration_minutes, breakdowns
		FROM strategy_results
		ORDER BY strategy_name ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all results: %w", err)
	}
	defer rows.Close()

	var results []*domain.StrategyResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.StrategyResult, error) {
	var r domain.StrategyResult
	var breakdowns []byte

	err := row.Scan(
		&r.StrategyName, &r.TotalTrades, &r.WinningTrades, &r.LosingTrades,
		&r.TotalPnL, &r.MaxDrawdown, &r.ProfitFactor, &r.SharpeRatio,
		&r.AvgTradeDurationMinutes, &breakdowns,
	)
	if err != nil {
		return nil, err
	}

	var b resultBreakdowns
	if err := json.Unmarshal(breakdowns, &b); err != nil {
		return nil, fmt.Errorf("unmarshal breakdowns: %w", err)
	}
	r.Yearly = b.Yearly
	r.Monthly = b.Monthly
	r.WinRates = b.WinRates
	r.Risk = b.Risk

	return &r, nil
}

package clickhouse

import (
	"context"
	"fmt"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// BarStore implements storage.SeriesStore using ClickHouse.
// Bars live in the minute_bars table; derived fields (VWAP, returns)
// are recomputed at read time by domain.NewMarketSeries, so only raw
// OHLCV columns are persisted.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SeriesStore = (*BarStore)(nil)

// chRows abstracts clickhouse rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// InsertBars adds bars for a symbol. MergeTree does not enforce
// uniqueness, so overlap with existing timestamps is checked explicitly
// before the batch insert and reported as ErrDuplicateKey.
func (s *BarStore) InsertBars(ctx context.Context, symbol string, bars []domain.Bar) error {
	if symbol == "" || len(bars) == 0 {
		return storage.ErrInvalidInput
	}

	seen := make(map[int64]struct{}, len(bars))
	minTS, maxTS := bars[0].Timestamp, bars[0].Timestamp
	for _, b := range bars {
		key := b.Timestamp.UnixMilli()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s bar at %s appears twice in batch",
				storage.ErrDuplicateKey, symbol, b.Timestamp.Format(time.RFC3339))
		}
		seen[key] = struct{}{}
		if b.Timestamp.Before(minTS) {
			minTS = b.Timestamp
		}
		if b.Timestamp.After(maxTS) {
			maxTS = b.Timestamp
		}
	}

	if err := s.checkOverlap(ctx, symbol, minTS, maxTS, seen); err != nil {
		return err
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO minute_bars (symbol, ts, open, high, low, close, volume)
	`)
	if err != nil {
		return fmt.Errorf("prepare bars batch: %w", err)
	}

	for _, b := range bars {
		if err := batch.Append(
			symbol, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("append bar: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send bars batch: %w", err)
	}
	return nil
}

// checkOverlap queries existing timestamps in the batch's time range and
// rejects the insert if any collide with the incoming bars.
func (s *BarStore) checkOverlap(ctx context.Context, symbol string, minTS, maxTS time.Time, incoming map[int64]struct{}) error {
	query := `
		SELECT ts
		FROM minute_bars
		WHERE symbol = ? AND ts >= ? AND ts <= ?
	`

	rows, err := s.conn.Query(ctx, query, symbol, minTS, maxTS)
	if err != nil {
		return fmt.Errorf("check existing bars: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return fmt.Errorf("scan existing bar timestamp: %w", err)
		}
		if _, ok := incoming[ts.UnixMilli()]; ok {
			return fmt.Errorf("%w: %s already has a bar at %s",
				storage.ErrDuplicateKey, symbol, ts.Format(time.RFC3339))
		}
	}
	return rows.Err()
}

// GetBySymbol retrieves the full series for a symbol, bars ordered by
// timestamp ASC.
func (s *BarStore) GetBySymbol(ctx context.Context, symbol string) (*domain.MarketSeries, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM minute_bars
		WHERE symbol = ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	bars, err := scanBars(rows)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, storage.ErrNotFound
	}

	series, err := domain.NewMarketSeries(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("build series for %s: %w", symbol, err)
	}
	return series, nil
}

// ListSymbols returns all symbols with data, sorted ascending.
func (s *BarStore) ListSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT symbol
		FROM minute_bars
		ORDER BY symbol ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return symbols, nil
}

func scanBars(rows chRows) ([]domain.Bar, error) {
	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		// ClickHouse returns DateTime64 in UTC; keep it that way.
		b.Timestamp = b.Timestamp.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}
	return bars, nil
}

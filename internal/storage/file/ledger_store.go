// Package file implements ledger persistence as CSV files on disk, one
// file per strategy.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

const ledgerSuffix = "_trades.csv"

var ledgerHeader = []string{
	"symbol", "strategy", "entry_time", "exit_time",
	"entry_price", "exit_price", "quantity", "side", "pnl", "exit_reason",
}

// LedgerStore persists trade ledgers as <strategy>_trades.csv under a
// results directory. Saves are atomic: the ledger is written to a temp
// file and renamed over the old one, so a crash mid-save never leaves
// a truncated ledger behind.
type LedgerStore struct {
	dir string
}

// NewLedgerStore creates the results directory if needed.
func NewLedgerStore(dir string) (*LedgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty results dir", storage.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &LedgerStore{dir: dir}, nil
}

// Load reads the strategy's ledger. A missing file is an empty ledger,
// not an error.
func (s *LedgerStore) Load(_ context.Context, strategy string) ([]*domain.Trade, error) {
	if strategy == "" {
		return nil, storage.ErrInvalidInput
	}

	f, err := os.Open(s.path(strategy))
	if os.IsNotExist(err) {
		return []*domain.Trade{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path(strategy), err)
	}
	if len(records) == 0 {
		return []*domain.Trade{}, nil
	}

	trades := make([]*domain.Trade, 0, len(records)-1)
	for _, rec := range records[1:] {
		t, err := parseTrade(rec)
		if err != nil {
			return nil, fmt.Errorf("parse ledger %s: %w", s.path(strategy), err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// Save replaces the strategy's ledger file.
func (s *LedgerStore) Save(_ context.Context, strategy string, trades []*domain.Trade) error {
	if strategy == "" {
		return storage.ErrInvalidInput
	}
	for _, t := range trades {
		if t == nil {
			return storage.ErrInvalidInput
		}
	}

	tmp, err := os.CreateTemp(s.dir, strategy+".tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(ledgerHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, t := range trades {
		if err := w.Write(formatTrade(t)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(strategy)); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// ListStrategies scans the results directory for ledger files.
func (s *LedgerStore) ListStrategies(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ledgerSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ledgerSuffix))
	}
	sort.Strings(names)
	return names, nil
}

func (s *LedgerStore) path(strategy string) string {
	return filepath.Join(s.dir, strategy+ledgerSuffix)
}

func formatTrade(t *domain.Trade) []string {
	rec := []string{
		t.Symbol,
		t.Strategy,
		t.EntryTime.UTC().Format(time.RFC3339),
		"",
		strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
		"",
		strconv.Itoa(t.Quantity),
		string(t.Side),
		"",
		t.ExitReason,
	}
	if t.ExitTime != nil {
		rec[3] = t.ExitTime.UTC().Format(time.RFC3339)
	}
	if t.ExitPrice != nil {
		rec[5] = strconv.FormatFloat(*t.ExitPrice, 'f', -1, 64)
	}
	if t.PnL != nil {
		rec[8] = strconv.FormatFloat(*t.PnL, 'f', -1, 64)
	}
	return rec
}

func parseTrade(rec []string) (*domain.Trade, error) {
	if len(rec) != len(ledgerHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(ledgerHeader), len(rec))
	}

	entryTime, err := time.Parse(time.RFC3339, rec[2])
	if err != nil {
		return nil, fmt.Errorf("entry_time: %w", err)
	}
	entryPrice, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return nil, fmt.Errorf("entry_price: %w", err)
	}
	quantity, err := strconv.Atoi(rec[6])
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}

	t := &domain.Trade{
		Symbol:     rec[0],
		Strategy:   rec[1],
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Side:       domain.Side(rec[7]),
		ExitReason: rec[9],
	}

	if rec[3] != "" {
		exitTime, err := time.Parse(time.RFC3339, rec[3])
		if err != nil {
			return nil, fmt.Errorf("exit_time: %w", err)
		}
		t.ExitTime = &exitTime
	}
	if rec[5] != "" {
		exitPrice, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("exit_price: %w", err)
		}
		t.ExitPrice = &exitPrice
	}
	if rec[8] != "" {
		pnl, err := strconv.ParseFloat(rec[8], 64)
		if err != nil {
			return nil, fmt.Errorf("pnl: %w", err)
		}
		t.PnL = &pnl
	}
	return t, nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// SeriesStore is an in-memory implementation of storage.SeriesStore.
type SeriesStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Bar // keyed by symbol, bars ordered by timestamp
}

// NewSeriesStore creates a new in-memory series store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{
		data: make(map[string][]domain.Bar),
	}
}

// InsertBars adds bars for a symbol. Returns ErrDuplicateKey if any bar
// timestamp overlaps bars already stored for that symbol.
func (s *SeriesStore) InsertBars(_ context.Context, symbol string, bars []domain.Bar) error {
	if symbol == "" || len(bars) == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[symbol]
	seen := make(map[int64]struct{}, len(existing))
	for _, b := range existing {
		seen[b.Timestamp.UnixNano()] = struct{}{}
	}
	for _, b := range bars {
		key := b.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	merged := make([]domain.Bar, 0, len(existing)+len(bars))
	merged = append(merged, existing...)
	merged = append(merged, bars...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	s.data[symbol] = merged
	return nil
}

// GetBySymbol retrieves the full validated series for a symbol.
func (s *SeriesStore) GetBySymbol(_ context.Context, symbol string) (*domain.MarketSeries, error) {
	s.mu.RLock()
	bars, exists := s.data[symbol]
	s.mu.RUnlock()

	if !exists {
		return nil, storage.ErrNotFound
	}

	return domain.NewMarketSeries(symbol, bars)
}

// ListSymbols returns all symbols with data, sorted ascending.
func (s *SeriesStore) ListSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.data))
	for symbol := range s.data {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

var _ storage.SeriesStore = (*SeriesStore)(nil)

package memory

import (
	"context"
	"sort"
	"sync"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.Trade // keyed by strategy name
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		data: make(map[string][]*domain.Trade),
	}
}

// Load returns all trades for a strategy, or an empty slice if none.
func (s *LedgerStore) Load(_ context.Context, strategy string) ([]*domain.Trade, error) {
	if strategy == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.data[strategy]
	out := make([]*domain.Trade, len(trades))
	for i, t := range trades {
		copy := *t
		out[i] = &copy
	}
	return out, nil
}

// Save replaces the strategy's ledger with the given trades.
func (s *LedgerStore) Save(_ context.Context, strategy string, trades []*domain.Trade) error {
	if strategy == "" {
		return storage.ErrInvalidInput
	}

	stored := make([]*domain.Trade, len(trades))
	for i, t := range trades {
		if t == nil {
			return storage.ErrInvalidInput
		}
		copy := *t
		stored[i] = &copy
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[strategy] = stored
	return nil
}

// ListStrategies returns all strategies with a ledger, sorted.
func (s *LedgerStore) ListStrategies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)

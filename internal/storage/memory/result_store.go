package memory

import (
	"context"
	"sort"
	"sync"

	"intraday-strategy-lab/internal/domain"
	"intraday-strategy-lab/internal/storage"
)

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StrategyResult // keyed by strategy name
}

// NewResultStore creates a new in-memory result store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		data: make(map[string]*domain.StrategyResult),
	}
}

// Save inserts or overwrites the result for a strategy.
func (s *ResultStore) Save(_ context.Context, r *domain.StrategyResult) error {
	if r == nil || r.StrategyName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *r
	s.data[r.StrategyName] = &copy
	return nil
}

// GetByStrategy retrieves the result for a strategy.
func (s *ResultStore) GetByStrategy(_ context.Context, strategy string) (*domain.StrategyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[strategy]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// GetAll retrieves all results, sorted by strategy name.
func (s *ResultStore) GetAll(_ context.Context) ([]*domain.StrategyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*domain.StrategyResult, len(names))
	for i, name := range names {
		copy := *s.data[name]
		out[i] = &copy
	}
	return out, nil
}

var _ storage.ResultStore = (*ResultStore)(nil)

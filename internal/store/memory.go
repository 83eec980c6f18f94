package store

import (
	"context"
	"sync"

	"drawdown-service/internal/model"
)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string]model.DrawdownSeries
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string]model.DrawdownSeries)}
}

// Get returns a copy of the stored series.
func (s *MemoryStore) Get(ctx context.Context, category string) (model.DrawdownSeries, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[category]
	if !ok {
		return nil, false, nil
	}
	return series.Clone(), true, nil
}

// Put stores a copy of series, replacing any previous value.
func (s *MemoryStore) Put(ctx context.Context, category string, series model.DrawdownSeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := series.Clone()
	if stored == nil {
		stored = model.DrawdownSeries{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[category] = stored
	return nil
}

func (s *MemoryStore) Close() error { return nil }

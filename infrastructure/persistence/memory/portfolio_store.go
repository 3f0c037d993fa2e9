// Package memory provides an in-memory portfolio store for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	domain "snipetrack-backend/domain/portfolio"
)

// PortfolioStore keeps tracked items in memory.
type PortfolioStore struct {
	mu    sync.RWMutex
	items []domain.TrackedItem
}

// NewPortfolioStore creates an in-memory portfolio store
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{}
}

// Load returns a copy of the stored list.
func (s *PortfolioStore) Load(ctx context.Context) ([]domain.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.TrackedItem, len(s.items))
	copy(items, s.items)
	return items, nil
}

// Save replaces the stored list.
func (s *PortfolioStore) Save(ctx context.Context, items []domain.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]domain.TrackedItem, len(items))
	copy(s.items, items)
	return nil
}

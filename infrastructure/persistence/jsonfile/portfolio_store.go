// Package jsonfile persists the tracked-item list to a local JSON file. It is
// the desktop analogue of the browser's local storage: single-user,
// client-local, rewritten wholesale on every save.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domain "snipetrack-backend/domain/portfolio"
)

// PortfolioStore stores tracked items in one JSON file.
type PortfolioStore struct {
	path string
	mu   sync.Mutex
}

// NewPortfolioStore creates a file-backed portfolio store
func NewPortfolioStore(path string) *PortfolioStore {
	return &PortfolioStore{path: path}
}

// Load reads the tracked-item list. A missing file is an empty portfolio.
func (s *PortfolioStore) Load(ctx context.Context) ([]domain.TrackedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.TrackedItem{}, nil
		}
		return nil, err
	}

	var items []domain.TrackedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Save replaces the stored list. The write goes through a temp file and a
// rename so a crash mid-write cannot corrupt the portfolio.
func (s *PortfolioStore) Save(ctx context.Context, items []domain.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

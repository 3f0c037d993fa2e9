// Package portfolio implements the reconciler that owns the user's tracked
// items: add, import, remove and the concurrent valuation refresh.
package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "snipetrack-backend/domain/portfolio"
	apperrors "snipetrack-backend/pkg/errors"
)

// refreshWorkers bounds the valuation fan-out during a refresh.
const refreshWorkers = 8

// Store persists the tracked-item list. The medium is the caller's choice; the
// reconciler only ever loads and saves the whole list.
type Store interface {
	Load(ctx context.Context) ([]domain.TrackedItem, error)
	Save(ctx context.Context, items []domain.TrackedItem) error
}

// ItemResolver resolves one asset's current valuation.
type ItemResolver interface {
	Resolve(ctx context.Context, assetID int64) (Valuation, error)
}

// Valuation is the slice of a resolver result the reconciler consumes.
type Valuation struct {
	Name               string
	RecentAveragePrice int64
	IsLimited          bool
	ThumbnailURL       string
}

// TransactionCandidate is a purchase offered for import from a scanned page.
type TransactionCandidate struct {
	AssetID      int64
	AssetName    string
	RobuxSpent   int64
	Created      time.Time
	CurrentRAP   *int64
	ThumbnailURL string
}

// BulkCandidate is one row of a manual bulk import.
type BulkCandidate struct {
	AssetID   int64
	BoughtFor int64
}

// Reconciler mutates the tracked set and keeps aggregate stats consistent.
// Mutations are serialized; the store only ever sees whole-list writes.
type Reconciler struct {
	store    Store
	resolver ItemResolver
	now      func() time.Time
	logger   *zap.Logger

	mu sync.Mutex
}

// NewReconciler creates a portfolio reconciler
func NewReconciler(store Store, resolver ItemResolver, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		resolver: resolver,
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the tracked items and their aggregate stats.
func (r *Reconciler) List(ctx context.Context) ([]domain.TrackedItem, domain.Stats, error) {
	items, err := r.store.Load(ctx)
	if err != nil {
		return nil, domain.Stats{}, apperrors.Wrap(err, "load portfolio")
	}
	return items, domain.ComputeStats(items), nil
}

// Add tracks a new item by asset ID after resolving its current valuation.
// Only known limiteds can be tracked; duplicates by asset ID are rejected.
func (r *Reconciler) Add(ctx context.Context, assetID int64, boughtFor int64) (domain.TrackedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.Load(ctx)
	if err != nil {
		return domain.TrackedItem{}, apperrors.Wrap(err, "load portfolio")
	}

	if !domain.IsImportable(assetID, domain.AssetIDs(items), nil) {
		return domain.TrackedItem{}, apperrors.NewConflictError("item already exists")
	}

	valuation, err := r.resolver.Resolve(ctx, assetID)
	if err != nil {
		return domain.TrackedItem{}, err
	}
	if !valuation.IsLimited {
		return domain.TrackedItem{}, apperrors.NewNotFoundError("limited item")
	}

	rap := valuation.RecentAveragePrice
	item := domain.TrackedItem{
		ID:           uuid.New().String(),
		AssetID:      assetID,
		Name:         valuation.Name,
		BoughtFor:    boughtFor,
		CurrentRAP:   &rap,
		AcquiredAt:   r.now(),
		ThumbnailURL: valuation.ThumbnailURL,
	}

	items = append(items, item)
	if err := r.store.Save(ctx, items); err != nil {
		return domain.TrackedItem{}, apperrors.Wrap(err, "save portfolio")
	}

	r.logger.Info("item tracked", zap.Int64("assetID", assetID), zap.Int64("boughtFor", boughtFor))
	return item, nil
}

// ImportTransaction tracks an item from a scanned purchase transaction,
// carrying over the valuation the scanner attached. The same asset imported
// twice reports a conflict rather than creating a second entry.
func (r *Reconciler) ImportTransaction(ctx context.Context, tx TransactionCandidate) (domain.TrackedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.Load(ctx)
	if err != nil {
		return domain.TrackedItem{}, apperrors.Wrap(err, "load portfolio")
	}

	if !domain.IsImportable(tx.AssetID, domain.AssetIDs(items), nil) {
		return domain.TrackedItem{}, apperrors.NewConflictError("item already exists")
	}

	item := domain.TrackedItem{
		ID:           uuid.New().String(),
		AssetID:      tx.AssetID,
		Name:         tx.AssetName,
		BoughtFor:    tx.RobuxSpent,
		CurrentRAP:   tx.CurrentRAP,
		AcquiredAt:   tx.Created,
		ThumbnailURL: tx.ThumbnailURL,
	}
	if item.AcquiredAt.IsZero() {
		item.AcquiredAt = r.now()
	}

	items = append(items, item)
	if err := r.store.Save(ctx, items); err != nil {
		return domain.TrackedItem{}, apperrors.Wrap(err, "save portfolio")
	}

	r.logger.Info("transaction imported", zap.Int64("assetID", tx.AssetID))
	return item, nil
}

// BulkAdd tracks many items in one pass. Duplicates and non-limiteds are
// skipped, not fatal; the caller learns how many of each.
func (r *Reconciler) BulkAdd(ctx context.Context, candidates []BulkCandidate) (added []domain.TrackedItem, skipped int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.Load(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "load portfolio")
	}

	existing := domain.AssetIDs(items)
	var imported []int64

	for _, candidate := range candidates {
		if !domain.IsImportable(candidate.AssetID, existing, imported) {
			skipped++
			continue
		}

		valuation, err := r.resolver.Resolve(ctx, candidate.AssetID)
		if err != nil || !valuation.IsLimited {
			skipped++
			continue
		}

		rap := valuation.RecentAveragePrice
		item := domain.TrackedItem{
			ID:           uuid.New().String(),
			AssetID:      candidate.AssetID,
			Name:         valuation.Name,
			BoughtFor:    candidate.BoughtFor,
			CurrentRAP:   &rap,
			AcquiredAt:   r.now(),
			ThumbnailURL: valuation.ThumbnailURL,
		}
		items = append(items, item)
		added = append(added, item)
		imported = append(imported, candidate.AssetID)
	}

	if len(added) > 0 {
		if err := r.store.Save(ctx, items); err != nil {
			return nil, 0, apperrors.Wrap(err, "save portfolio")
		}
	}

	r.logger.Info("bulk import finished", zap.Int("added", len(added)), zap.Int("skipped", skipped))
	return added, skipped, nil
}

// Remove deletes a tracked item by its record ID.
func (r *Reconciler) Remove(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.Load(ctx)
	if err != nil {
		return apperrors.Wrap(err, "load portfolio")
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return apperrors.NewNotFoundError("tracked item")
	}

	if err := r.store.Save(ctx, kept); err != nil {
		return apperrors.Wrap(err, "save portfolio")
	}
	return nil
}

// RefreshValuations re-resolves every tracked item concurrently. Each item's
// failure keeps its previous RAP and never blocks sibling items.
func (r *Reconciler) RefreshValuations(ctx context.Context) ([]domain.TrackedItem, domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.store.Load(ctx)
	if err != nil {
		return nil, domain.Stats{}, apperrors.Wrap(err, "load portfolio")
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, refreshWorkers)

	for i := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item *domain.TrackedItem) {
			defer wg.Done()
			defer func() { <-sem }()

			valuation, err := r.resolver.Resolve(ctx, item.AssetID)
			if err != nil {
				r.logger.Debug("valuation refresh failed for item",
					zap.Int64("assetID", item.AssetID),
					zap.Error(err),
				)
				return
			}

			rap := valuation.RecentAveragePrice
			item.CurrentRAP = &rap
			if valuation.ThumbnailURL != "" {
				item.ThumbnailURL = valuation.ThumbnailURL
			}
		}(&items[i])
	}
	wg.Wait()

	if err := r.store.Save(ctx, items); err != nil {
		return nil, domain.Stats{}, apperrors.Wrap(err, "save portfolio")
	}

	return items, domain.ComputeStats(items), nil
}

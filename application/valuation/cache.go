// Package valuation implements the item-valuation core: the time-boxed market
// catalog cache and the per-item resolver built on top of it.
package valuation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"snipetrack-backend/domain/catalog"
	"snipetrack-backend/pkg/observability"
)

// DefaultFreshness is how long a catalog snapshot is served without refetching.
const DefaultFreshness = 5 * time.Minute

// CatalogFetcher fetches the aggregator's full limited-item catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (map[int64]catalog.Entry, error)
}

// MarketCache holds the process-lifetime catalog snapshot. Reads within the
// freshness window are lock-cheap and never touch the network; refreshes are
// serialized so at most one upstream fetch is in flight. A failed refresh
// degrades to the previous snapshot — Snapshot never returns an error.
type MarketCache struct {
	fetcher   CatalogFetcher
	freshness time.Duration
	now       func() time.Time
	logger    *zap.Logger
	metrics   *observability.Metrics

	mu        sync.RWMutex
	snap      catalog.Snapshot
	refreshMu sync.Mutex
}

// MarketCacheOption configures a MarketCache.
type MarketCacheOption func(*MarketCache)

// WithFreshness overrides the snapshot freshness window.
func WithFreshness(d time.Duration) MarketCacheOption {
	return func(c *MarketCache) { c.freshness = d }
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) MarketCacheOption {
	return func(c *MarketCache) { c.now = now }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *observability.Metrics) MarketCacheOption {
	return func(c *MarketCache) { c.metrics = m }
}

// NewMarketCache creates a market catalog cache
func NewMarketCache(fetcher CatalogFetcher, logger *zap.Logger, opts ...MarketCacheOption) *MarketCache {
	c := &MarketCache{
		fetcher:   fetcher,
		freshness: DefaultFreshness,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current catalog snapshot, refreshing it first when the
// held one has expired. Callers that arrive during a refresh wait for it and
// observe the refreshed snapshot. On refresh failure the previous snapshot is
// returned even though it is past its window; before the first successful
// fetch the returned snapshot is empty with a zero capture time.
func (c *MarketCache) Snapshot(ctx context.Context) catalog.Snapshot {
	if snap, ok := c.fresh(); ok {
		return snap
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have completed the refresh while this one waited.
	if snap, ok := c.fresh(); ok {
		return snap
	}

	items, err := c.fetcher.FetchCatalog(ctx)
	c.metrics.RecordCatalogRefresh(ctx, len(items), err)
	if err != nil {
		c.mu.RLock()
		stale := c.snap
		c.mu.RUnlock()

		c.logger.Warn("catalog refresh failed, serving previous snapshot",
			zap.Error(err),
			zap.Time("capturedAt", stale.CapturedAt),
			zap.Int("items", stale.Len()),
		)
		return stale
	}

	fresh := catalog.Snapshot{Items: items, CapturedAt: c.now()}

	c.mu.Lock()
	c.snap = fresh
	c.mu.Unlock()

	c.logger.Info("catalog snapshot refreshed", zap.Int("items", fresh.Len()))
	return fresh
}

// fresh returns the held snapshot when it is still within the freshness window.
func (c *MarketCache) fresh() (catalog.Snapshot, bool) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	if snap.IsZero() {
		return catalog.Snapshot{}, false
	}
	if c.now().Sub(snap.CapturedAt) >= c.freshness {
		return catalog.Snapshot{}, false
	}
	return snap, true
}

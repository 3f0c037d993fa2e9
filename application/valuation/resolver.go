package valuation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"snipetrack-backend/infrastructure/upstream/roblox"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
)

// Origin tags where a valuation came from.
type Origin string

const (
	OriginAggregator Origin = "aggregator"
	OriginPlatform   Origin = "platform"
	OriginNone       Origin = "none"
)

// Result is one item's valuation. Ephemeral; computed per request.
type Result struct {
	AssetID            int64
	Name               string
	RecentAveragePrice int64
	Value              int64
	Price              int64
	IsLimited          bool
	ThumbnailURL       string
	Origin             Origin
}

// ThumbnailResolver resolves thumbnail URLs for asset IDs.
type ThumbnailResolver interface {
	AssetThumbnails(ctx context.Context, assetIDs []int64) (map[int64]string, error)
}

// AssetDetailsSource fetches the platform's own per-asset details record.
type AssetDetailsSource interface {
	AssetDetailsByID(ctx context.Context, assetID int64) (roblox.AssetDetails, error)
}

// Resolver resolves one item's limited status and market valuation. Membership
// in the aggregator catalog is the sole limited signal; the platform details
// endpoint contributes only the best-effort catalog price.
type Resolver struct {
	cache   *MarketCache
	thumbs  ThumbnailResolver
	details AssetDetailsSource
	logger  *zap.Logger
}

// NewResolver creates an item valuation resolver
func NewResolver(cache *MarketCache, thumbs ThumbnailResolver, details AssetDetailsSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		cache:   cache,
		thumbs:  thumbs,
		details: details,
		logger:  logger,
	}
}

// Resolve returns the valuation for one asset. Absence from the catalog means
// the item is not a known limited and resolves to a not-found error; an empty,
// never-captured catalog means the aggregator could not be reached at all.
func (r *Resolver) Resolve(ctx context.Context, assetID int64) (Result, error) {
	snap := r.cache.Snapshot(ctx)
	if snap.IsZero() {
		return Result{}, apperrors.NewUpstreamError("aggregator", 0,
			fmt.Errorf("item catalog unavailable"))
	}

	entry, ok := snap.Lookup(assetID)
	if !ok {
		return Result{}, apperrors.NewNotFoundError("item")
	}

	result := Result{
		AssetID:            entry.AssetID,
		Name:               entry.Name,
		RecentAveragePrice: entry.RecentAveragePrice,
		Value:              entry.Value,
		IsLimited:          true,
		Origin:             OriginAggregator,
	}

	if details, ok := common.BestEffort(ctx, r.logger, "asset details", func(ctx context.Context) (roblox.AssetDetails, error) {
		return r.details.AssetDetailsByID(ctx, assetID)
	}); ok {
		result.Price = details.PriceInRobux
	}

	if urls, ok := common.BestEffort(ctx, r.logger, "thumbnail", func(ctx context.Context) (map[int64]string, error) {
		return r.thumbs.AssetThumbnails(ctx, []int64{assetID})
	}); ok {
		result.ThumbnailURL = urls[assetID]
	}

	return result, nil
}

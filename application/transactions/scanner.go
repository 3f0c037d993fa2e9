// Package transactions implements the purchase-history scanner that turns raw
// platform transactions into catalog-classified, thumbnail-annotated pages.
package transactions

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"snipetrack-backend/application/valuation"
	"snipetrack-backend/infrastructure/upstream/roblox"
	"snipetrack-backend/pkg/common"
	apperrors "snipetrack-backend/pkg/errors"
	"snipetrack-backend/pkg/observability"
)

// assetKind is the details.type tag that marks a tradeable asset purchase.
// Game passes, subscriptions and the other purchase kinds are filtered out.
const assetKind = "Asset"

// Enriched is one purchase transaction after filtering and classification.
type Enriched struct {
	ID           int64     `json:"id"`
	AssetID      int64     `json:"assetId"`
	AssetName    string    `json:"assetName"`
	AssetType    string    `json:"assetType"`
	RobuxSpent   int64     `json:"robuxSpent"`
	Created      time.Time `json:"created"`
	IsLimited    bool      `json:"isLimited"`
	CurrentRAP   *int64    `json:"currentRap,omitempty"`
	Value        *int64    `json:"value,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// Page is one enriched page of purchase history.
type Page struct {
	Transactions []Enriched `json:"transactions"`
	NextCursor   string     `json:"nextCursor"`
	HasMore      bool       `json:"hasMore"`
}

// TransactionSource fetches one raw page of a user's purchase history.
type TransactionSource interface {
	PurchaseTransactions(ctx context.Context, cookie string, userID int64, cursor string) (roblox.TransactionPage, error)
}

// ThumbnailResolver resolves thumbnail URLs for asset IDs.
type ThumbnailResolver interface {
	AssetThumbnails(ctx context.Context, assetIDs []int64) (map[int64]string, error)
}

// Scanner scans a user's purchase history one page at a time. Multi-page
// policy (how many pages, when to stop) belongs to the caller.
type Scanner struct {
	cache   *valuation.MarketCache
	source  TransactionSource
	thumbs  ThumbnailResolver
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewScanner creates a transaction scanner
func NewScanner(cache *valuation.MarketCache, source TransactionSource, thumbs ThumbnailResolver, logger *zap.Logger, metrics *observability.Metrics) *Scanner {
	return &Scanner{
		cache:   cache,
		source:  source,
		thumbs:  thumbs,
		logger:  logger,
		metrics: metrics,
	}
}

// ScanPage fetches and enriches one page of purchase transactions. The market
// snapshot is taken once per page; classification is a membership test against
// it, never a per-transaction fetch. Thumbnails are a best-effort side fetch.
func (s *Scanner) ScanPage(ctx context.Context, sessionToken string, userID int64, cursor string) (Page, error) {
	token := strings.TrimSpace(sessionToken)
	if token == "" {
		return Page{}, apperrors.NewUnauthenticatedError("session token is required")
	}
	if userID <= 0 {
		return Page{}, apperrors.NewValidationError("userid is required")
	}

	raw, err := s.source.PurchaseTransactions(ctx, token, userID, cursor)
	s.metrics.RecordScanPage(ctx, len(raw.Data), err)
	if err != nil {
		return Page{}, err
	}

	snap := s.cache.Snapshot(ctx)

	enriched := make([]Enriched, 0, len(raw.Data))
	for _, tx := range raw.Data {
		if tx.Details.Type != assetKind || tx.Details.ID == 0 {
			continue
		}

		item := Enriched{
			ID:         tx.ID,
			AssetID:    tx.Details.ID,
			AssetName:  tx.Details.Name,
			AssetType:  tx.Details.Type,
			RobuxSpent: abs(tx.Currency.Amount),
			Created:    tx.Created,
		}

		if entry, ok := snap.Lookup(tx.Details.ID); ok {
			rap, value := entry.RecentAveragePrice, entry.Value
			item.IsLimited = true
			item.CurrentRAP = &rap
			item.Value = &value
			if entry.Name != "" {
				item.AssetName = entry.Name
			}
		}

		enriched = append(enriched, item)
	}

	s.attachThumbnails(ctx, enriched)

	s.logger.Info("scanned transaction page",
		zap.Int64("userID", userID),
		zap.Int("raw", len(raw.Data)),
		zap.Int("kept", len(enriched)),
		zap.Bool("hasMore", raw.NextPageCursor != ""),
	)

	return Page{
		Transactions: enriched,
		NextCursor:   raw.NextPageCursor,
		HasMore:      raw.NextPageCursor != "",
	}, nil
}

// attachThumbnails annotates the page in place. A failed batch leaves every
// thumbnail empty rather than failing the page.
func (s *Scanner) attachThumbnails(ctx context.Context, items []Enriched) {
	if len(items) == 0 {
		return
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.AssetID)
	}

	urls, ok := common.BestEffort(ctx, s.logger, "thumbnails", func(ctx context.Context) (map[int64]string, error) {
		return s.thumbs.AssetThumbnails(ctx, ids)
	})
	if !ok {
		return
	}

	for i := range items {
		items[i].ThumbnailURL = urls[items[i].AssetID]
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

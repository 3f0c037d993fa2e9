// Package portfolio holds the tracked-item model and the pure reconciliation
// helpers. Nothing in this package performs I/O.
package portfolio

import "time"

// TrackedItem is one limited the user is tracking. AssetID is unique within a
// user's tracked set; CurrentRAP is nil until the first valuation refresh.
type TrackedItem struct {
	ID           string    `json:"id"`
	AssetID      int64     `json:"assetId"`
	Name         string    `json:"name"`
	BoughtFor    int64     `json:"boughtFor"`
	CurrentRAP   *int64    `json:"currentRap"`
	AcquiredAt   time.Time `json:"date"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}

// Stats are the aggregate portfolio figures shown on the dashboard.
type Stats struct {
	Count          int     `json:"count"`
	TotalInvested  int64   `json:"totalInvested"`
	PortfolioValue int64   `json:"portfolioValue"`
	Profit         int64   `json:"profit"`
	ProfitPercent  float64 `json:"profitPercent"`
}

// IsImportable reports whether an asset may be imported: false if it already
// appears in the tracked set or among the assets imported earlier in the same
// import run.
func IsImportable(assetID int64, existing []int64, imported []int64) bool {
	for _, id := range existing {
		if id == assetID {
			return false
		}
	}
	for _, id := range imported {
		if id == assetID {
			return false
		}
	}
	return true
}

// ComputeStats aggregates a tracked-item list. A nil CurrentRAP counts as zero
// toward portfolio value.
func ComputeStats(items []TrackedItem) Stats {
	stats := Stats{Count: len(items)}

	for _, item := range items {
		stats.TotalInvested += item.BoughtFor
		if item.CurrentRAP != nil {
			stats.PortfolioValue += *item.CurrentRAP
		}
	}

	stats.Profit = stats.PortfolioValue - stats.TotalInvested
	if stats.TotalInvested > 0 {
		stats.ProfitPercent = float64(stats.Profit) / float64(stats.TotalInvested) * 100
	}

	return stats
}

// AssetIDs extracts the asset identifiers of a tracked-item list.
func AssetIDs(items []TrackedItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.AssetID)
	}
	return ids
}

// Package catalog holds the value types for the third-party aggregator's
// limited-item catalog. Presence of an asset in the catalog is the sole signal
// that it is a limited.
package catalog

import "time"

// Entry is one limited item as known to the aggregator.
type Entry struct {
	AssetID            int64
	Name               string
	RecentAveragePrice int64
	Value              int64
}

// Snapshot is a wholesale capture of the aggregator catalog at a point in time.
// A zero CapturedAt means the catalog has never been fetched successfully.
type Snapshot struct {
	Items      map[int64]Entry
	CapturedAt time.Time
}

// Lookup returns the entry for an asset ID, if the asset is a known limited.
func (s Snapshot) Lookup(assetID int64) (Entry, bool) {
	entry, ok := s.Items[assetID]
	return entry, ok
}

// IsZero reports whether the snapshot has never been populated.
func (s Snapshot) IsZero() bool {
	return s.CapturedAt.IsZero()
}

// Len returns the number of known limiteds.
func (s Snapshot) Len() int {
	return len(s.Items)
}

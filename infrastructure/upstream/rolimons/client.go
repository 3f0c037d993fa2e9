// Package rolimons implements the client for the third-party aggregator that
// publishes the full limited-item catalog with recent average prices.
package rolimons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"snipetrack-backend/domain/catalog"
)

const defaultBaseURL = "https://www.rolimons.com"

// Client fetches the aggregator's item catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a new aggregator client
func NewClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// catalogResponse is the aggregator wire format. Each item is a positional
// array: [name, acronym, rap, value, demand, trend, projected, hyped, rare].
type catalogResponse struct {
	Success bool                         `json:"success"`
	Items   map[string][]json.RawMessage `json:"items"`
}

// FetchCatalog fetches the complete limited-item catalog. Individual malformed
// records are skipped; a malformed top-level response is an error so the cache
// can fall back to its previous snapshot.
func (c *Client) FetchCatalog(ctx context.Context) (map[int64]catalog.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/items", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch item catalog: unexpected status %d", resp.StatusCode)
	}

	var body catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode item catalog: %w", err)
	}

	if !body.Success || body.Items == nil {
		return nil, fmt.Errorf("item catalog response malformed")
	}

	entries := make(map[int64]catalog.Entry, len(body.Items))
	skipped := 0
	for key, fields := range body.Items {
		assetID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			skipped++
			continue
		}

		entry, ok := parseEntry(assetID, fields)
		if !ok {
			skipped++
			continue
		}
		entries[assetID] = entry
	}

	if skipped > 0 {
		c.logger.Warn("skipped malformed catalog records",
			zap.Int("skipped", skipped),
			zap.Int("parsed", len(entries)),
		)
	}

	return entries, nil
}

// parseEntry decodes one positional record. Records with fewer than 4 fields or
// undecodable name/rap/value fields are treated as malformed, not fatal.
func parseEntry(assetID int64, fields []json.RawMessage) (catalog.Entry, bool) {
	if len(fields) < 4 {
		return catalog.Entry{}, false
	}

	var name string
	if err := json.Unmarshal(fields[0], &name); err != nil {
		return catalog.Entry{}, false
	}

	rap, ok := parseAmount(fields[2])
	if !ok {
		return catalog.Entry{}, false
	}

	value, ok := parseAmount(fields[3])
	if !ok {
		return catalog.Entry{}, false
	}

	if rap < 0 {
		rap = 0
	}
	// The aggregator reports -1 (or 0) for items it has not assigned a value to;
	// RAP stands in for the estimated value in that case.
	if value <= 0 {
		value = rap
	}

	return catalog.Entry{
		AssetID:            assetID,
		Name:               name,
		RecentAveragePrice: rap,
		Value:              value,
	}, true
}

func parseAmount(raw json.RawMessage) (int64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return int64(n), true
}

package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "snipetrack-backend/pkg/errors"
)

// transactionPageSize is the page size the transaction-history endpoint serves.
const transactionPageSize = 100

// RawTransaction is one record from the purchase-transaction history.
type RawTransaction struct {
	ID       int64     `json:"id"`
	Created  time.Time `json:"created"`
	Currency struct {
		Amount int64 `json:"amount"`
	} `json:"currency"`
	Details struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"details"`
}

// TransactionPage is one cursor-delimited page of purchase transactions.
type TransactionPage struct {
	Data           []RawTransaction `json:"data"`
	NextPageCursor string           `json:"nextPageCursor"`
}

// PurchaseTransactions fetches one page of a user's purchase history,
// optionally continuing from an opaque cursor.
func (c *Client) PurchaseTransactions(ctx context.Context, cookie string, userID int64, cursor string) (TransactionPage, error) {
	endpoint := fmt.Sprintf("%s/v2/users/%d/transactions?transactionType=Purchase&limit=%d",
		c.economyBaseURL, userID, transactionPageSize)
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, cookie)
	if err != nil {
		return TransactionPage{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransactionPage{}, apperrors.NewUpstreamError("economy", 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return TransactionPage{}, apperrors.NewUnauthenticatedError("invalid cookie or authentication failed")
	case resp.StatusCode != http.StatusOK:
		return TransactionPage{}, apperrors.NewUpstreamError("economy", resp.StatusCode,
			fmt.Errorf("failed to fetch transactions: %d", resp.StatusCode))
	}

	var page TransactionPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return TransactionPage{}, apperrors.NewUpstreamError("economy", resp.StatusCode, err)
	}

	return page, nil
}

// RobuxBalance fetches the authenticated user's currency balance.
func (c *Client) RobuxBalance(ctx context.Context, cookie string, userID int64) (int64, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%d/currency", c.economyBaseURL, userID)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, cookie)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch balance: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Robux int64 `json:"robux"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	return body.Robux, nil
}

// AssetDetails is the subset of the per-asset details endpoint this system
// consumes. It is enrichment only; limited classification never reads it.
type AssetDetails struct {
	AssetID       int64  `json:"AssetId"`
	Name          string `json:"Name"`
	PriceInRobux  int64  `json:"PriceInRobux"`
	CreatorName   string
}

type assetDetailsResponse struct {
	AssetID      int64  `json:"AssetId"`
	Name         string `json:"Name"`
	PriceInRobux int64  `json:"PriceInRobux"`
	Creator      struct {
		Name string `json:"Name"`
	} `json:"Creator"`
}

// AssetDetailsByID fetches the platform's own details record for one asset.
func (c *Client) AssetDetailsByID(ctx context.Context, assetID int64) (AssetDetails, error) {
	endpoint := fmt.Sprintf("%s/v2/assets/%d/details", c.economyBaseURL, assetID)
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, "")
	if err != nil {
		return AssetDetails{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AssetDetails{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AssetDetails{}, fmt.Errorf("fetch asset details: unexpected status %d", resp.StatusCode)
	}

	var body assetDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return AssetDetails{}, err
	}

	return AssetDetails{
		AssetID:      body.AssetID,
		Name:         body.Name,
		PriceInRobux: body.PriceInRobux,
		CreatorName:  body.Creator.Name,
	}, nil
}

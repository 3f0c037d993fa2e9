package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"snipetrack-backend/application/valuation"
	"snipetrack-backend/domain/catalog"
	"snipetrack-backend/infrastructure/upstream/roblox"
	apperrors "snipetrack-backend/pkg/errors"
)

type stubCatalogFetcher struct {
	calls   int
	entries map[int64]catalog.Entry
	err     error
}

func (f *stubCatalogFetcher) FetchCatalog(ctx context.Context) (map[int64]catalog.Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type stubSource struct {
	calls int
	page  roblox.TransactionPage
	err   error

	gotCookie string
	gotUserID int64
	gotCursor string
}

func (s *stubSource) PurchaseTransactions(ctx context.Context, cookie string, userID int64, cursor string) (roblox.TransactionPage, error) {
	s.calls++
	s.gotCookie = cookie
	s.gotUserID = userID
	s.gotCursor = cursor
	if s.err != nil {
		return roblox.TransactionPage{}, s.err
	}
	return s.page, nil
}

type stubThumbnails struct {
	calls int
	urls  map[int64]string
	err   error
}

func (s *stubThumbnails) AssetThumbnails(ctx context.Context, assetIDs []int64) (map[int64]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.urls, nil
}

func rawPurchase(id, assetID int64, name, kind string, amount int64) roblox.RawTransaction {
	var tx roblox.RawTransaction
	tx.ID = id
	tx.Created = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	tx.Currency.Amount = amount
	tx.Details.ID = assetID
	tx.Details.Name = name
	tx.Details.Type = kind
	return tx
}

func newTestScanner(fetcher *stubCatalogFetcher, source *stubSource, thumbs *stubThumbnails) *Scanner {
	cache := valuation.NewMarketCache(fetcher, zap.NewNop())
	return NewScanner(cache, source, thumbs, zap.NewNop(), nil)
}

func TestScanPage_EmptyTokenIsUnauthenticatedWithoutUpstreamCalls(t *testing.T) {
	fetcher := &stubCatalogFetcher{}
	source := &stubSource{}
	thumbs := &stubThumbnails{}
	scanner := newTestScanner(fetcher, source, thumbs)

	_, err := scanner.ScanPage(context.Background(), "   ", 123, "")

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Equal(t, 0, source.calls)
	assert.Equal(t, 0, fetcher.calls)
	assert.Equal(t, 0, thumbs.calls)
}

func TestScanPage_InvalidUserIDIsValidationError(t *testing.T) {
	scanner := newTestScanner(&stubCatalogFetcher{}, &stubSource{}, &stubThumbnails{})

	_, err := scanner.ScanPage(context.Background(), "cookie", 0, "")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestScanPage_FiltersAndClassifies(t *testing.T) {
	fetcher := &stubCatalogFetcher{entries: map[int64]catalog.Entry{
		1028606: {AssetID: 1028606, Name: "Red Baseball Cap", RecentAveragePrice: 4500, Value: 5000},
	}}
	source := &stubSource{page: roblox.TransactionPage{
		Data: []roblox.RawTransaction{
			rawPurchase(1, 1028606, "red cap", "Asset", -4500),
			rawPurchase(2, 55555, "Some Shirt", "Asset", -50),
			rawPurchase(3, 77777, "VIP Pass", "GamePass", -100),
			rawPurchase(4, 0, "Broken", "Asset", -10),
		},
		NextPageCursor: "next-cursor",
	}}
	thumbs := &stubThumbnails{urls: map[int64]string{
		1028606: "https://cdn.example/cap.png",
	}}
	scanner := newTestScanner(fetcher, source, thumbs)

	page, err := scanner.ScanPage(context.Background(), "cookie", 123, "")
	require.NoError(t, err)

	require.Len(t, page.Transactions, 2)
	assert.Equal(t, "next-cursor", page.NextCursor)
	assert.True(t, page.HasMore)

	limited := page.Transactions[0]
	assert.Equal(t, int64(1028606), limited.AssetID)
	assert.True(t, limited.IsLimited)
	assert.Equal(t, "Red Baseball Cap", limited.AssetName)
	assert.Equal(t, int64(4500), limited.RobuxSpent)
	require.NotNil(t, limited.CurrentRAP)
	assert.Equal(t, int64(4500), *limited.CurrentRAP)
	require.NotNil(t, limited.Value)
	assert.Equal(t, int64(5000), *limited.Value)
	assert.Equal(t, "https://cdn.example/cap.png", limited.ThumbnailURL)

	plain := page.Transactions[1]
	assert.Equal(t, int64(55555), plain.AssetID)
	assert.False(t, plain.IsLimited)
	assert.Nil(t, plain.CurrentRAP)
	assert.Nil(t, plain.Value)
	assert.Equal(t, "Some Shirt", plain.AssetName)
}

func TestScanPage_OneSnapshotPerPage(t *testing.T) {
	fetcher := &stubCatalogFetcher{entries: map[int64]catalog.Entry{}}
	source := &stubSource{page: roblox.TransactionPage{
		Data: []roblox.RawTransaction{
			rawPurchase(1, 100, "A", "Asset", -10),
			rawPurchase(2, 200, "B", "Asset", -20),
			rawPurchase(3, 300, "C", "Asset", -30),
		},
	}}
	scanner := newTestScanner(fetcher, source, &stubThumbnails{})

	_, err := scanner.ScanPage(context.Background(), "cookie", 123, "")
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
}

func TestScanPage_ThumbnailFailureIsTolerated(t *testing.T) {
	fetcher := &stubCatalogFetcher{entries: map[int64]catalog.Entry{}}
	source := &stubSource{page: roblox.TransactionPage{
		Data: []roblox.RawTransaction{
			rawPurchase(1, 100, "A", "Asset", -10),
		},
	}}
	thumbs := &stubThumbnails{err: errors.New("thumbnails down")}
	scanner := newTestScanner(fetcher, source, thumbs)

	page, err := scanner.ScanPage(context.Background(), "cookie", 123, "")
	require.NoError(t, err)

	require.Len(t, page.Transactions, 1)
	assert.Empty(t, page.Transactions[0].ThumbnailURL)
}

func TestScanPage_PropagatesCursor(t *testing.T) {
	source := &stubSource{page: roblox.TransactionPage{}}
	scanner := newTestScanner(&stubCatalogFetcher{}, source, &stubThumbnails{})

	page, err := scanner.ScanPage(context.Background(), "cookie", 42, "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", source.gotCursor)
	assert.Equal(t, int64(42), source.gotUserID)
	assert.Empty(t, page.NextCursor)
	assert.False(t, page.HasMore)
	assert.NotNil(t, page.Transactions)
}

func TestScanPage_SourceErrorPropagates(t *testing.T) {
	source := &stubSource{err: apperrors.NewUpstreamError("economy", 429, errors.New("throttled"))}
	scanner := newTestScanner(&stubCatalogFetcher{}, source, &stubThumbnails{})

	_, err := scanner.ScanPage(context.Background(), "cookie", 123, "")

	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 429, appErr.UpstreamStatus)
}

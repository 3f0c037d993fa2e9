package roblox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "snipetrack-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.Client(), Config{
		UsersBaseURL:      server.URL,
		EconomyBaseURL:    server.URL,
		ThumbnailsBaseURL: server.URL,
	})
}

func TestWhoAmI(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/authenticated", r.URL.Path)
		assert.Equal(t, ".ROBLOSECURITY=secret-cookie", r.Header.Get("Cookie"))
		w.Write([]byte(`{"id": 42, "name": "builderman", "displayName": "Builderman", "hasVerifiedBadge": true}`))
	}))

	user, err := client.WhoAmI(context.Background(), "secret-cookie")
	require.NoError(t, err)

	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "builderman", user.Name)
	assert.Equal(t, "Builderman", user.DisplayName)
	assert.True(t, user.HasVerifiedBadge)
}

func TestWhoAmI_UnauthorizedStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := client.WhoAmI(context.Background(), "bad-cookie")
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthenticated(err))
	}
}

func TestWhoAmI_ServerErrorIsUpstream(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.WhoAmI(context.Background(), "cookie")
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.UpstreamStatus)
}

func TestPurchaseTransactions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/users/42/transactions", r.URL.Path)
		assert.Equal(t, "Purchase", r.URL.Query().Get("transactionType"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "cursor-1", r.URL.Query().Get("cursor"))
		w.Write([]byte(`{
			"data": [
				{
					"id": 9001,
					"created": "2024-05-10T08:00:00Z",
					"currency": {"amount": -4500},
					"details": {"id": 1028606, "name": "Red Baseball Cap", "type": "Asset"}
				}
			],
			"nextPageCursor": "cursor-2"
		}`))
	}))

	page, err := client.PurchaseTransactions(context.Background(), "cookie", 42, "cursor-1")
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	tx := page.Data[0]
	assert.Equal(t, int64(9001), tx.ID)
	assert.Equal(t, int64(-4500), tx.Currency.Amount)
	assert.Equal(t, int64(1028606), tx.Details.ID)
	assert.Equal(t, "Asset", tx.Details.Type)
	assert.Equal(t, "cursor-2", page.NextPageCursor)
}

func TestPurchaseTransactions_NoCursorParamOnFirstPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["cursor"]
		assert.False(t, present)
		w.Write([]byte(`{"data": [], "nextPageCursor": null}`))
	}))

	page, err := client.PurchaseTransactions(context.Background(), "cookie", 42, "")
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Empty(t, page.NextPageCursor)
}

func TestPurchaseTransactions_Unauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.PurchaseTransactions(context.Background(), "bad-cookie", 42, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestRobuxBalance(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/42/currency", r.URL.Path)
		w.Write([]byte(`{"robux": 12345}`))
	}))

	balance, err := client.RobuxBalance(context.Background(), "cookie", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), balance)
}

func TestAssetDetailsByID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/assets/1028606/details", r.URL.Path)
		assert.Empty(t, r.Header.Get("Cookie"))
		w.Write([]byte(`{"AssetId": 1028606, "Name": "Red Baseball Cap", "PriceInRobux": 6000, "Creator": {"Name": "Roblox"}}`))
	}))

	details, err := client.AssetDetailsByID(context.Background(), 1028606)
	require.NoError(t, err)

	assert.Equal(t, int64(1028606), details.AssetID)
	assert.Equal(t, int64(6000), details.PriceInRobux)
	assert.Equal(t, "Roblox", details.CreatorName)
}

func TestAssetThumbnails_BatchesAtLimit(t *testing.T) {
	var batchSizes []int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("assetIds"), ",")
		batchSizes = append(batchSizes, len(ids))
		w.Write([]byte(`{"data": [{"targetId": 1, "state": "Completed", "imageUrl": "https://cdn.example/1.png"}]}`))
	}))

	ids := make([]int64, 150)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	urls, err := client.AssetThumbnails(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []int{100, 50}, batchSizes)
	assert.Equal(t, "https://cdn.example/1.png", urls[1])
}

func TestAssetThumbnails_OmitsIncompleteRecords(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"targetId": 1, "state": "Completed", "imageUrl": "https://cdn.example/1.png"},
			{"targetId": 2, "state": "Pending", "imageUrl": ""}
		]}`))
	}))

	urls, err := client.AssetThumbnails(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/1.png", urls[1])
	_, present := urls[2]
	assert.False(t, present)
}

func TestAvatarHeadshot(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/avatar-headshot", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("userIds"))
		w.Write([]byte(`{"data": [{"targetId": 42, "state": "Completed", "imageUrl": "https://cdn.example/42.png"}]}`))
	}))

	url, err := client.AvatarHeadshot(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/42.png", url)
}

package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "snipetrack-backend/domain/portfolio"
	"snipetrack-backend/infrastructure/persistence/memory"
	apperrors "snipetrack-backend/pkg/errors"
)

type stubResolver struct {
	mu         sync.Mutex
	valuations map[int64]Valuation
	failing    map[int64]error
	calls      int
}

func (s *stubResolver) Resolve(ctx context.Context, assetID int64) (Valuation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.failing[assetID]; ok {
		return Valuation{}, err
	}
	v, ok := s.valuations[assetID]
	if !ok {
		return Valuation{}, apperrors.NewNotFoundError("item")
	}
	return v, nil
}

func newTestReconciler(resolver *stubResolver) (*Reconciler, *memory.PortfolioStore) {
	store := memory.NewPortfolioStore()
	return NewReconciler(store, resolver, zap.NewNop()), store
}

func limitedValuation(name string, rap int64) Valuation {
	return Valuation{Name: name, RecentAveragePrice: rap, IsLimited: true}
}

func TestAdd_TracksLimited(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1028606: limitedValuation("Red Baseball Cap", 4500),
	}}
	reconciler, _ := newTestReconciler(resolver)

	item, err := reconciler.Add(context.Background(), 1028606, 4000)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, int64(1028606), item.AssetID)
	assert.Equal(t, "Red Baseball Cap", item.Name)
	assert.Equal(t, int64(4000), item.BoughtFor)
	require.NotNil(t, item.CurrentRAP)
	assert.Equal(t, int64(4500), *item.CurrentRAP)
	assert.False(t, item.AcquiredAt.IsZero())
}

func TestAdd_DuplicateAssetIsConflict(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1028606: limitedValuation("Red Baseball Cap", 4500),
	}}
	reconciler, _ := newTestReconciler(resolver)

	_, err := reconciler.Add(context.Background(), 1028606, 4000)
	require.NoError(t, err)

	_, err = reconciler.Add(context.Background(), 1028606, 4200)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestAdd_NonLimitedIsNotFound(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		55555: {Name: "Some Shirt", IsLimited: false},
	}}
	reconciler, _ := newTestReconciler(resolver)

	_, err := reconciler.Add(context.Background(), 55555, 50)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestImportTransaction_DoubleImportIsConflict(t *testing.T) {
	reconciler, _ := newTestReconciler(&stubResolver{})

	rap := int64(4500)
	candidate := TransactionCandidate{
		AssetID:    1028606,
		AssetName:  "Red Baseball Cap",
		RobuxSpent: 4000,
		Created:    time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
		CurrentRAP: &rap,
	}

	item, err := reconciler.ImportTransaction(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, candidate.Created, item.AcquiredAt)

	_, err = reconciler.ImportTransaction(context.Background(), candidate)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestImportTransaction_ZeroCreatedGetsNow(t *testing.T) {
	reconciler, _ := newTestReconciler(&stubResolver{})

	item, err := reconciler.ImportTransaction(context.Background(), TransactionCandidate{
		AssetID:   777,
		AssetName: "Old Hat",
	})
	require.NoError(t, err)
	assert.False(t, item.AcquiredAt.IsZero())
}

func TestBulkAdd_SkipsDuplicatesAndNonLimiteds(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1: limitedValuation("One", 100),
		2: {Name: "Two", IsLimited: false},
		3: limitedValuation("Three", 300),
	}}
	reconciler, _ := newTestReconciler(resolver)

	_, err := reconciler.Add(context.Background(), 1, 90)
	require.NoError(t, err)

	added, skipped, err := reconciler.BulkAdd(context.Background(), []BulkCandidate{
		{AssetID: 1, BoughtFor: 100},
		{AssetID: 2, BoughtFor: 200},
		{AssetID: 3, BoughtFor: 300},
		{AssetID: 3, BoughtFor: 300},
	})
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, int64(3), added[0].AssetID)
	assert.Equal(t, 3, skipped)
}

func TestRemove(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1: limitedValuation("One", 100),
	}}
	reconciler, _ := newTestReconciler(resolver)

	item, err := reconciler.Add(context.Background(), 1, 90)
	require.NoError(t, err)

	require.NoError(t, reconciler.Remove(context.Background(), item.ID))

	items, stats, err := reconciler.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, stats.Count)

	err = reconciler.Remove(context.Background(), item.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRefreshValuations_PartialFailureKeepsPreviousRAP(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1: limitedValuation("One", 100),
		2: limitedValuation("Two", 200),
	}}
	reconciler, _ := newTestReconciler(resolver)

	_, err := reconciler.Add(context.Background(), 1, 90)
	require.NoError(t, err)
	_, err = reconciler.Add(context.Background(), 2, 180)
	require.NoError(t, err)

	resolver.mu.Lock()
	resolver.valuations[1] = limitedValuation("One", 150)
	resolver.failing = map[int64]error{2: errors.New("aggregator down")}
	resolver.mu.Unlock()

	items, stats, err := reconciler.RefreshValuations(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	byAsset := map[int64]domain.TrackedItem{}
	for _, item := range items {
		byAsset[item.AssetID] = item
	}

	require.NotNil(t, byAsset[1].CurrentRAP)
	assert.Equal(t, int64(150), *byAsset[1].CurrentRAP)
	require.NotNil(t, byAsset[2].CurrentRAP)
	assert.Equal(t, int64(200), *byAsset[2].CurrentRAP)

	assert.Equal(t, int64(270), stats.TotalInvested)
	assert.Equal(t, int64(350), stats.PortfolioValue)
	assert.Equal(t, int64(80), stats.Profit)
}

func TestList_StatsMatchItems(t *testing.T) {
	resolver := &stubResolver{valuations: map[int64]Valuation{
		1: limitedValuation("One", 150),
	}}
	reconciler, store := newTestReconciler(resolver)

	_, err := reconciler.Add(context.Background(), 1, 100)
	require.NoError(t, err)

	items, stats, err := reconciler.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(100), stats.TotalInvested)
	assert.Equal(t, int64(150), stats.PortfolioValue)
	assert.Equal(t, int64(50), stats.Profit)
	assert.Equal(t, float64(50), stats.ProfitPercent)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, stored)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog"
	memcatalog "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/catalog/memory"
	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/domain"
	memengine "github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/internal/engine/memory"
)

func TestIndexAndDeleteRecord(t *testing.T) {
	eng := memengine.New()
	svc := NewSyncService(eng, nil, nil, 0, testLogger)
	ctx := context.Background()

	record := map[string]any{"name": "Laptop Dell", "price": 25000000.0, "stock": 5.0}
	require.NoError(t, svc.IndexRecord(ctx, "p1", record))

	result, err := eng.Search(ctx, &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Laptop Dell", result.Hits[0].Name)

	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
	// Repeating the delete still succeeds.
	require.NoError(t, svc.DeleteProduct(ctx, "p1"))
}

func TestUpsertConverges(t *testing.T) {
	eng := memengine.New()
	svc := NewSyncService(eng, nil, nil, 0, testLogger)
	ctx := context.Background()

	// An update event arriving before the create still lands.
	require.NoError(t, svc.UpsertRecord(ctx, "p1", map[string]any{"name": "v2", "price": 900.0}))
	require.NoError(t, svc.UpsertRecord(ctx, "p1", map[string]any{"name": "v2", "price": 900.0}))

	result, err := eng.Search(ctx, &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, 900.0, result.Hits[0].Price)
}

func TestSyncAllChunksAndCounts(t *testing.T) {
	eng := memengine.New()
	store := memcatalog.New()
	for i := 0; i < 7; i++ {
		store.Put(string(rune('a'+i)), map[string]any{"name": "Product", "price": 1000.0})
	}

	// Chunk size 3 forces three sequential bulk requests.
	svc := NewSyncService(eng, store, nil, 3, testLogger)
	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 7, report.TotalProducts)
	assert.Equal(t, 7, report.SuccessCount)
	assert.Zero(t, report.FailedCount)

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Size: 100})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Total)
}

func TestSyncAllWithoutStore(t *testing.T) {
	svc := NewSyncService(memengine.New(), nil, nil, 0, testLogger)
	_, err := svc.SyncAll(context.Background())
	assert.Error(t, err)
}

func TestReindexReplacesIndex(t *testing.T) {
	eng := memengine.New()
	store := memcatalog.New()
	store.Put("fresh", map[string]any{"name": "Fresh"})
	svc := NewSyncService(eng, store, nil, 0, testLogger)
	ctx := context.Background()

	// A stale document not present in the catalog disappears on reindex.
	require.NoError(t, svc.IndexRecord(ctx, "stale", map[string]any{"name": "Stale"}))

	report, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)

	result, err := eng.Search(ctx, &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "fresh", result.Hits[0].ID)
}

func TestRunSubscriptionAppliesChanges(t *testing.T) {
	eng := memengine.New()
	store := memcatalog.New()
	svc := NewSyncService(eng, store, nil, 0, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := store.Subscribe(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		svc.RunSubscription(ctx, changes)
		close(done)
	}()

	store.Put("p1", map[string]any{"name": "Laptop"})
	store.Put("p1", map[string]any{"name": "Laptop v2"})
	store.Put("p2", map[string]any{"name": "Phone"})
	store.Remove("p2")

	require.Eventually(t, func() bool {
		result, err := eng.Search(context.Background(), &domain.SearchQuery{Size: 10})
		if err != nil || result.Total != 1 {
			return false
		}
		return result.Hits[0].Name == "Laptop v2"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscription pump did not stop")
	}
}

func TestRunSubscriptionSkipsBadChanges(t *testing.T) {
	eng := memengine.New()
	svc := NewSyncService(eng, nil, nil, 0, testLogger)

	changes := make(chan []catalog.Change, 1)
	changes <- []catalog.Change{
		{Kind: catalog.ChangeAdded, ID: "", Data: map[string]any{"name": "broken"}},
		{Kind: catalog.ChangeAdded, ID: "ok", Data: map[string]any{"name": "Good"}},
	}
	close(changes)

	svc.RunSubscription(context.Background(), changes)

	result, err := eng.Search(context.Background(), &domain.SearchQuery{Size: 10})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "ok", result.Hits[0].ID)
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/adapters/driven/storage/memory"
	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

func TestReconciler_AddsAndUpdates(t *testing.T) {
	cache := memory.NewCacheStore()
	reconciler := NewReconciler(cache)
	ctx := context.Background()

	added, updated, err := reconciler.Reconcile(ctx, "shop1", products(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 0, updated)

	// Overlapping second batch: 1 and 2 exist, 4 is new
	added, updated, err = reconciler.Reconcile(ctx, "shop1", products(1, 2, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, updated)

	count, err := cache.Count(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestReconciler_Idempotent(t *testing.T) {
	cache := memory.NewCacheStore()
	reconciler := NewReconciler(cache)
	ctx := context.Background()

	batch := products(1, 2)
	_, _, err := reconciler.Reconcile(ctx, "shop1", batch)
	require.NoError(t, err)

	added, updated, err := reconciler.Reconcile(ctx, "shop1", batch)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 2, updated)

	count, err := cache.Count(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReconciler_MixedResourceTypes(t *testing.T) {
	cache := memory.NewCacheStore()
	reconciler := NewReconciler(cache)
	ctx := context.Background()

	records := []domain.Record{
		domain.Product{ID: 1},
		domain.Customer{ID: 1},
		domain.Order{ID: 1},
		domain.Invoice{ID: 1},
	}
	added, _, err := reconciler.Reconcile(ctx, "shop1", records)
	require.NoError(t, err)
	assert.Equal(t, 4, added)

	for _, resource := range domain.AllResourceTypes() {
		count, err := cache.Count(ctx, "shop1", resource)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "resource %s", resource)
	}
}

// failingCache wraps the memory store and fails after a fixed number of
// upserts.
type failingCache struct {
	*memory.CacheStore
	failAfter int
	upserts   int
}

func (c *failingCache) Upsert(ctx context.Context, ownerID string, record domain.Record) error {
	if c.upserts >= c.failAfter {
		return errors.New("disk full")
	}
	c.upserts++
	return c.CacheStore.Upsert(ctx, ownerID, record)
}

func TestReconciler_PartialFailureReturnsCounts(t *testing.T) {
	cache := &failingCache{CacheStore: memory.NewCacheStore(), failAfter: 2}
	reconciler := NewReconciler(cache)
	ctx := context.Background()

	added, updated, err := reconciler.Reconcile(ctx, "shop1", products(1, 2, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, updated)

	// The two committed records are durable
	count, err := cache.Count(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "cache.db"), store.Path())
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store1, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store1.CacheStore().Upsert(
		context.Background(), "shop1", domain.Product{ID: 1, Name: "keep"}))
	require.NoError(t, store1.Close())

	// Reopening must not re-run migrations or lose data
	store2, err := NewStore(dir)
	require.NoError(t, err)
	defer store2.Close()

	count, err := store2.CacheStore().Count(context.Background(), "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCacheStore_UpsertAllRecordTypes(t *testing.T) {
	store := newTestStore(t)
	cache := store.CacheStore()
	ctx := context.Background()

	modified := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	records := []domain.Record{
		domain.Product{ID: 1, Code: "SP1", Name: "Widget", BasePrice: 5000,
			OnHand: 3, IsActive: true, ModifiedAt: modified},
		domain.Customer{ID: 2, Code: "KH2", Name: "Alice", Email: "a@example.com"},
		domain.Order{ID: 3, Code: "DH3", Status: "done", Total: 99000,
			PurchaseDate: modified},
		domain.Invoice{ID: 4, Code: "HD4", Status: "paid", Total: 42000},
	}

	for _, rec := range records {
		require.NoError(t, cache.Upsert(ctx, "shop1", rec))
	}

	for _, rec := range records {
		exists, err := cache.Exists(ctx, "shop1", rec.Resource(), rec.ExternalID())
		require.NoError(t, err)
		assert.True(t, exists, "resource %s id %d", rec.Resource(), rec.ExternalID())

		count, err := cache.Count(ctx, "shop1", rec.Resource())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}
}

func TestCacheStore_UpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	cache := store.CacheStore()
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, "shop1", domain.Product{ID: 1, Name: "Old"}))
	require.NoError(t, cache.Upsert(ctx, "shop1", domain.Product{ID: 1, Name: "New", BasePrice: 100}))

	count, err := cache.Count(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var name string
	var price float64
	err = store.db.QueryRow(
		"SELECT name, base_price FROM products WHERE owner_id = ? AND external_id = ?",
		"shop1", 1).Scan(&name, &price)
	require.NoError(t, err)
	assert.Equal(t, "New", name)
	assert.Equal(t, 100.0, price)
}

func TestCacheStore_OwnersAreIsolated(t *testing.T) {
	store := newTestStore(t)
	cache := store.CacheStore()
	ctx := context.Background()

	require.NoError(t, cache.Upsert(ctx, "shop1", domain.Product{ID: 1}))
	require.NoError(t, cache.Upsert(ctx, "shop2", domain.Product{ID: 1}))

	count, err := cache.Count(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exists, err := cache.Exists(ctx, "shop3", domain.ResourceProducts, 1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheStore_UnsupportedType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CacheStore().Count(context.Background(), "shop1", domain.ResourceType("widgets"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSyncStateStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	_, err := states.Get(ctx, "shop1", domain.ResourceProducts)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))

	state, err := states.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.True(t, state.InProgress)
	assert.False(t, state.StartedAt.IsZero())
	assert.True(t, state.LastSyncAt.IsZero())

	require.NoError(t, states.Complete(ctx, "shop1", domain.ResourceProducts, 17))

	state, err = states.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.False(t, state.InProgress)
	assert.False(t, state.LastSyncAt.IsZero())
	assert.Equal(t, 17, state.ItemsSynced)
}

func TestSyncStateStore_BeginGuard(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceOrders))

	// Second Begin on the same pair is refused
	err := states.Begin(ctx, "shop1", domain.ResourceOrders)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	// Different resource type and different owner are unaffected
	assert.NoError(t, states.Begin(ctx, "shop1", domain.ResourceInvoices))
	assert.NoError(t, states.Begin(ctx, "shop2", domain.ResourceOrders))

	// Completing releases the guard
	require.NoError(t, states.Complete(ctx, "shop1", domain.ResourceOrders, 0))
	assert.NoError(t, states.Begin(ctx, "shop1", domain.ResourceOrders))
}

func TestSyncStateStore_BeginTakesOverStaleFlag(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))

	// Age the flag past the staleness timeout, as if a run crashed
	stale := time.Now().UTC().Add(-driven.StaleSyncTimeout - time.Minute)
	_, err := store.db.Exec(
		"UPDATE sync_states SET started_at = ? WHERE owner_id = ? AND resource_type = ?",
		stale, "shop1", string(domain.ResourceProducts))
	require.NoError(t, err)

	assert.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))
}

func TestSyncStateStore_FailKeepsCheckpoint(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))
	require.NoError(t, states.Complete(ctx, "shop1", domain.ResourceProducts, 5))

	before, err := states.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))
	require.NoError(t, states.Fail(ctx, "shop1", domain.ResourceProducts))

	after, err := states.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.False(t, after.InProgress)
	assert.True(t, before.LastSyncAt.Equal(after.LastSyncAt))
}

func TestSyncStateStore_ResetInProgress(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))
	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceOrders))
	require.NoError(t, states.Begin(ctx, "shop2", domain.ResourceProducts))

	require.NoError(t, states.ResetInProgress(ctx, "shop1"))

	list, err := states.List(ctx, "shop1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, state := range list {
		assert.False(t, state.InProgress)
	}

	other, err := states.Get(ctx, "shop2", domain.ResourceProducts)
	require.NoError(t, err)
	assert.True(t, other.InProgress)
}

func TestSyncStateStore_NeedsInitialSync(t *testing.T) {
	store := newTestStore(t)
	states := store.SyncStateStore()
	ctx := context.Background()

	needs, err := states.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.True(t, needs)

	// A row without a checkpoint (failed pass) still counts as unsynced
	require.NoError(t, states.Begin(ctx, "shop1", domain.ResourceProducts))
	require.NoError(t, states.Fail(ctx, "shop1", domain.ResourceProducts))
	needs, err = states.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.True(t, needs)

	for _, resource := range domain.AllResourceTypes() {
		require.NoError(t, states.Begin(ctx, "shop1", resource))
		require.NoError(t, states.Complete(ctx, "shop1", resource, 1))
	}
	needs, err = states.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestSyncLogStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	logs := store.SyncLogStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := domain.SyncLogEntry{
			ID:        uuid.NewString(),
			OwnerID:   "shop1",
			Resource:  domain.ResourceProducts,
			Operation: domain.OpFullSync,
			Processed: i,
			Added:     i,
			Duration:  time.Duration(i) * time.Second,
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, logs.Append(ctx, entry))
	}
	require.NoError(t, logs.Append(ctx, domain.SyncLogEntry{
		ID: uuid.NewString(), OwnerID: "shop2",
		Operation: domain.OpError, ErrorMessage: "boom", CreatedAt: base,
	}))

	entries, err := logs.List(ctx, "shop1", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, 4, entries[0].Processed)
	assert.Equal(t, 2, entries[2].Processed)
	assert.Equal(t, 4*time.Second, entries[0].Duration)
	assert.True(t, entries[0].Success)

	// Failure details round-trip
	entries, err = logs.List(ctx, "shop2", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "boom", entries[0].ErrorMessage)
	assert.Equal(t, domain.OpError, entries[0].Operation)
}

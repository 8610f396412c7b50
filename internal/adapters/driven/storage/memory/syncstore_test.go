package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
)

func TestSyncStateStore_BeginComplete(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceProducts))

	state, err := store.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.True(t, state.InProgress)
	assert.True(t, state.LastSyncAt.IsZero())

	require.NoError(t, store.Complete(ctx, "shop1", domain.ResourceProducts, 42))

	state, err = store.Get(ctx, "shop1", domain.ResourceProducts)
	require.NoError(t, err)
	assert.False(t, state.InProgress)
	assert.False(t, state.LastSyncAt.IsZero())
	assert.Equal(t, 42, state.ItemsSynced)
}

func TestSyncStateStore_BeginRefusesConcurrent(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceOrders))

	err := store.Begin(ctx, "shop1", domain.ResourceOrders)
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	// A different resource type is not blocked
	assert.NoError(t, store.Begin(ctx, "shop1", domain.ResourceInvoices))

	// Neither is a different owner
	assert.NoError(t, store.Begin(ctx, "shop2", domain.ResourceOrders))
}

func TestSyncStateStore_BeginTakesOverStaleFlag(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceProducts))

	// Fast-forward past the staleness timeout
	store.now = func() time.Time {
		return time.Now().Add(driven.StaleSyncTimeout + time.Minute)
	}

	assert.NoError(t, store.Begin(ctx, "shop1", domain.ResourceProducts))
}

func TestSyncStateStore_FailKeepsCheckpoint(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceCustomers))
	require.NoError(t, store.Complete(ctx, "shop1", domain.ResourceCustomers, 10))

	state, err := store.Get(ctx, "shop1", domain.ResourceCustomers)
	require.NoError(t, err)
	checkpoint := state.LastSyncAt

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceCustomers))
	require.NoError(t, store.Fail(ctx, "shop1", domain.ResourceCustomers))

	state, err = store.Get(ctx, "shop1", domain.ResourceCustomers)
	require.NoError(t, err)
	assert.False(t, state.InProgress)
	assert.Equal(t, checkpoint, state.LastSyncAt)
}

func TestSyncStateStore_ResetInProgress(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceProducts))
	require.NoError(t, store.Begin(ctx, "shop1", domain.ResourceOrders))
	require.NoError(t, store.Begin(ctx, "shop2", domain.ResourceProducts))

	require.NoError(t, store.ResetInProgress(ctx, "shop1"))

	states, err := store.List(ctx, "shop1")
	require.NoError(t, err)
	for _, state := range states {
		assert.False(t, state.InProgress)
	}

	// Other owners are untouched
	state, err := store.Get(ctx, "shop2", domain.ResourceProducts)
	require.NoError(t, err)
	assert.True(t, state.InProgress)
}

func TestSyncStateStore_NeedsInitialSync(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	needs, err := store.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.True(t, needs)

	// A partial history still needs the bootstrap
	require.NoError(t, store.Complete(ctx, "shop1", domain.ResourceProducts, 5))
	needs, err = store.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.True(t, needs)

	for _, resource := range domain.AllResourceTypes() {
		require.NoError(t, store.Complete(ctx, "shop1", resource, 5))
	}
	needs, err = store.NeedsInitialSync(ctx, "shop1")
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestSyncStateStore_GetNotFound(t *testing.T) {
	store := NewSyncStateStore()

	_, err := store.Get(context.Background(), "shop1", domain.ResourceProducts)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncLogStore_AppendList(t *testing.T) {
	store := NewSyncLogStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := domain.SyncLogEntry{
			ID:        string(rune('a' + i)),
			OwnerID:   "shop1",
			Resource:  domain.ResourceProducts,
			Operation: domain.OpFullSync,
			Processed: i,
			Success:   true,
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.Append(ctx, entry))
	}
	require.NoError(t, store.Append(ctx, domain.SyncLogEntry{ID: "x", OwnerID: "shop2"}))

	entries, err := store.List(ctx, "shop1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "a", entries[2].ID)

	// Limit applies
	entries, err = store.List(ctx, "shop1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

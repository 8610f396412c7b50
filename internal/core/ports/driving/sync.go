package driving

import (
	"context"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// ProgressFunc receives progress snapshots from a running sync pass.
// Callbacks must be quick; they are invoked inline after each fetched
// batch.
type ProgressFunc func(domain.ProgressSnapshot)

// SyncRunner triggers store-data synchronisation. The caller decides
// when to run; the core never self-schedules.
type SyncRunner interface {
	// RunFullSync bootstraps the cache: all four resource types,
	// generous item budgets, no checkpoint lower bound (orders and
	// invoices are bounded to a default recency window to cap cost).
	RunFullSync(ctx context.Context, ownerID string) error

	// RunIncrementalSync fetches records modified since each resource
	// type's last successful checkpoint.
	RunIncrementalSync(ctx context.Context, ownerID string) error

	// NeedsInitialSync reports whether the owner still needs the
	// bootstrap pass.
	NeedsInitialSync(ctx context.Context, ownerID string) (bool, error)

	// Status returns the persisted sync states for an owner.
	Status(ctx context.Context, ownerID string) ([]domain.SyncState, error)

	// Subscribe registers a progress observer. The returned function
	// removes the subscription; multiple subscribers may be active and
	// concurrent owner runs do not clobber each other.
	Subscribe(fn ProgressFunc) (cancel func())
}

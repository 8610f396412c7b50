package driven

import (
	"context"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// StaleSyncTimeout is how old an in-progress flag may be before Begin
// treats it as abandoned by a crashed run and takes it over.
const StaleSyncTimeout = 15 * time.Minute

// SyncStateStore persists per (owner, resource type) sync checkpoints.
type SyncStateStore interface {
	// Get retrieves sync state. Returns domain.ErrNotFound if the pair
	// has never been synced.
	Get(ctx context.Context, ownerID string, resource domain.ResourceType) (*domain.SyncState, error)

	// List returns all sync states for an owner.
	List(ctx context.Context, ownerID string) ([]domain.SyncState, error)

	// Begin atomically marks a sync as in progress, creating the state
	// row if needed. Returns domain.ErrSyncInProgress when another pass
	// holds the flag and it is younger than StaleSyncTimeout.
	Begin(ctx context.Context, ownerID string, resource domain.ResourceType) error

	// Complete records a successful pass: clears the in-progress flag,
	// stamps the checkpoint and stores the item count.
	Complete(ctx context.Context, ownerID string, resource domain.ResourceType, itemCount int) error

	// Fail clears the in-progress flag without moving the checkpoint.
	Fail(ctx context.Context, ownerID string, resource domain.ResourceType) error

	// ResetInProgress clears the in-progress flag for every resource
	// type of an owner. Crash-recovery cleanup after an aborted pass.
	ResetInProgress(ctx context.Context, ownerID string) error

	// NeedsInitialSync reports whether any of the four resource types
	// has never been synced for the owner. A partial history still
	// counts as needing the initial bootstrap.
	NeedsInitialSync(ctx context.Context, ownerID string) (bool, error)
}

// SyncLogStore persists the append-only sync audit trail.
type SyncLogStore interface {
	// Append writes one log entry. Entries are never mutated.
	Append(ctx context.Context, entry domain.SyncLogEntry) error

	// List returns the most recent entries for an owner, newest first.
	List(ctx context.Context, ownerID string, limit int) ([]domain.SyncLogEntry, error)
}

package domain

import "time"

// SyncState tracks the checkpoint for one (owner, resource type) pair.
// Rows are created lazily on the first sync attempt and never deleted;
// history lives in the sync log.
type SyncState struct {
	// OwnerID identifies the retailer whose data is synchronised.
	OwnerID string

	// Resource is the synchronised resource type.
	Resource ResourceType

	// LastSyncAt is when the last successful pass for this resource type
	// completed. Zero before the first successful sync.
	LastSyncAt time.Time

	// InProgress guards against overlapping syncs of the same resource
	// type for the same owner.
	InProgress bool

	// StartedAt is when the in-progress pass began. Used to treat stale
	// flags from crashed runs as abandoned.
	StartedAt time.Time

	// ItemsSynced is the item count from the last successful pass.
	ItemsSynced int
}

// SyncOperation classifies a sync log entry.
type SyncOperation string

const (
	// OpFullSync is a bootstrap pass over a resource type.
	OpFullSync SyncOperation = "full_sync"
	// OpIncrementalSync is a checkpointed pass over a resource type.
	OpIncrementalSync SyncOperation = "incremental_sync"
	// OpError records a failed pass.
	OpError SyncOperation = "error"
)

// SyncLogEntry is one row of the append-only sync audit trail.
// Entries are written once per completed or failed resource-type pass
// and never mutated.
type SyncLogEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// OwnerID identifies the retailer.
	OwnerID string

	// Resource is the resource type the pass covered.
	Resource ResourceType

	// Operation classifies the pass.
	Operation SyncOperation

	// Processed is the number of records fetched from the source.
	Processed int

	// Added is the number of records inserted into the cache.
	Added int

	// Updated is the number of records overwritten in the cache.
	Updated int

	// Deleted is the number of records removed. Always zero today:
	// upstream deletions are not mirrored (no tombstone handling).
	Deleted int

	// Duration is the wall-clock time of the pass.
	Duration time.Duration

	// Success reports whether the pass completed.
	Success bool

	// ErrorMessage holds the failure reason when Success is false.
	ErrorMessage string

	// CreatedAt is when the entry was written.
	CreatedAt time.Time
}

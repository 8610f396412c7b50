package driven

import (
	"context"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// CacheStore persists normalised records per resource type.
// The cache is a read replica with a single writer (the sync engine);
// writes are last-writer-wins per-record upserts that commit
// independently, so a failure mid-batch leaves a partially-updated,
// still-valid cache.
type CacheStore interface {
	// Exists reports whether a record with the given external ID is
	// already cached for the owner and resource type.
	Exists(ctx context.Context, ownerID string, resource domain.ResourceType, externalID int64) (bool, error)

	// Upsert inserts or overwrites a single record and refreshes its
	// synced-at timestamp.
	Upsert(ctx context.Context, ownerID string, record domain.Record) error

	// Count returns the number of cached records for the owner and
	// resource type.
	Count(ctx context.Context, ownerID string, resource domain.ResourceType) (int, error)
}

package services

import (
	"context"
	"fmt"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
	"github.com/lamdong-labs/kvsync-cli/internal/logger"
)

// Reconciler merges fetched records into the local cache, tracking
// inserts versus updates. Reconciliation is last-writer-wins: the cache
// is a read replica with a single writer, so no conflict detection
// against local edits is needed. Re-running with identical input yields
// the same stored state and zero additional inserts.
type Reconciler struct {
	cache driven.CacheStore
}

// NewReconciler creates a reconciler over the given cache store.
func NewReconciler(cache driven.CacheStore) *Reconciler {
	return &Reconciler{cache: cache}
}

// Reconcile upserts records for one owner and resource type.
// Each record commits independently; on a store error the counts so far
// are returned alongside the error.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	ownerID string,
	records []domain.Record,
) (added, updated int, err error) {
	for _, rec := range records {
		exists, err := r.cache.Exists(ctx, ownerID, rec.Resource(), rec.ExternalID())
		if err != nil {
			return added, updated, fmt.Errorf("check record %d: %w", rec.ExternalID(), err)
		}

		if err := r.cache.Upsert(ctx, ownerID, rec); err != nil {
			return added, updated, fmt.Errorf("upsert record %d: %w", rec.ExternalID(), err)
		}

		if exists {
			updated++
		} else {
			added++
		}
	}

	logger.Debug("Reconciled %d records: %d added, %d updated", len(records), added, updated)
	return added, updated, nil
}

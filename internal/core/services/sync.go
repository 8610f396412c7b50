package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driving"
	"github.com/lamdong-labs/kvsync-cli/internal/logger"
)

// Item budgets per resource type. The fetcher additionally enforces its
// own request ceiling, so these bound cost rather than guarantee counts.
const (
	fullSyncMaxItems        = 1000
	incrementalSyncMaxItems = 500
)

// Date-window policy. A full sync fetches the whole product catalogue
// and customer list, but orders and invoices are bounded to a recency
// window to cap bootstrap cost. Incremental syncs that have never
// completed fall back to a shorter window.
const (
	fullSyncOrderWindow       = 90 * 24 * time.Hour
	incrementalFallbackWindow = 30 * 24 * time.Hour
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncRunner = (*SyncOrchestrator)(nil)

// SyncOrchestrator sequences the four resource types through fetch,
// reconcile and checkpoint. Resource types are processed sequentially,
// never concurrently: the source's per-retailer pagination state and
// coarse rate limiting make parallel multi-resource fetching unsafe
// without extra coordination.
type SyncOrchestrator struct {
	factory    driven.FetcherFactory
	reconciler *Reconciler
	syncStore  driven.SyncStateStore
	logStore   driven.SyncLogStore
	reporter   *ProgressReporter

	// now is swappable for tests.
	now func() time.Time
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	factory driven.FetcherFactory,
	reconciler *Reconciler,
	syncStore driven.SyncStateStore,
	logStore driven.SyncLogStore,
	reporter *ProgressReporter,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		factory:    factory,
		reconciler: reconciler,
		syncStore:  syncStore,
		logStore:   logStore,
		reporter:   reporter,
		now:        time.Now,
	}
}

// RunFullSync bootstraps the cache for an owner.
func (o *SyncOrchestrator) RunFullSync(ctx context.Context, ownerID string) error {
	return o.runPass(ctx, ownerID, domain.OpFullSync)
}

// RunIncrementalSync fetches records modified since the last checkpoint.
func (o *SyncOrchestrator) RunIncrementalSync(ctx context.Context, ownerID string) error {
	return o.runPass(ctx, ownerID, domain.OpIncrementalSync)
}

// NeedsInitialSync reports whether the owner still needs the bootstrap
// pass over all four resource types.
func (o *SyncOrchestrator) NeedsInitialSync(ctx context.Context, ownerID string) (bool, error) {
	return o.syncStore.NeedsInitialSync(ctx, ownerID)
}

// Status returns the persisted sync states for an owner.
func (o *SyncOrchestrator) Status(ctx context.Context, ownerID string) ([]domain.SyncState, error) {
	return o.syncStore.List(ctx, ownerID)
}

// Subscribe registers a progress observer.
func (o *SyncOrchestrator) Subscribe(fn driving.ProgressFunc) func() {
	return o.reporter.Subscribe(fn)
}

// runPass executes one orchestration over all four resource types.
//
// A failure scoped to one resource type is logged and the pass continues:
// partial sync success is preferred over total failure. Owner-scoped
// failures (invalid credentials, cancellation) abort immediately after
// resetting every in-progress flag, so a later retry is not blocked.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) runPass(ctx context.Context, ownerID string, op domain.SyncOperation) error {
	fetcher, err := o.factory.Create(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	types := domain.AllResourceTypes()
	tracker := newProgressTracker(ownerID, len(types), o.now)

	logger.Info("Starting %s for owner %s", op, ownerID)

	var typeErrs []error
	for i, resource := range types {
		budget := itemBudget(op)
		tracker.startStep(i, resource, budget)
		o.reporter.Publish(tracker.snapshot(fmt.Sprintf("syncing %s", resource), false))

		if err := o.syncStore.Begin(ctx, ownerID, resource); err != nil {
			if errors.Is(err, domain.ErrSyncInProgress) {
				logger.Warn("Skipping %s: %v", resource, err)
				o.appendLogEntry(ctx, domain.SyncLogEntry{
					OwnerID:      ownerID,
					Resource:     resource,
					Operation:    domain.OpError,
					ErrorMessage: err.Error(),
				})
				typeErrs = append(typeErrs, fmt.Errorf("%s: %w", resource, err))
				continue
			}
			return fmt.Errorf("begin %s: %w", resource, err)
		}

		stepStart := o.now()
		opts := o.fetchOptions(ctx, ownerID, resource, op, budget, tracker)
		result, fetchErr := fetcher.FetchAll(ctx, resource, opts)

		// Owner-scoped failures abort the whole pass after crash-recovery
		// cleanup of every in-progress flag.
		if fetchErr != nil && (errors.Is(fetchErr, domain.ErrAuthInvalid) || ctx.Err() != nil) {
			o.abortPass(ctx, ownerID, resource, stepStart, fetchErr)
			o.reporter.Publish(tracker.finished(fetchErr))
			return fmt.Errorf("sync %s: %w", resource, fetchErr)
		}

		// Partial data fetched before a non-fatal error is still
		// reconciled; the cache stays valid without transactions.
		var processed, added, updated int
		if result != nil && len(result.Records) > 0 {
			processed = len(result.Records)
			var recErr error
			added, updated, recErr = o.reconciler.Reconcile(ctx, ownerID, result.Records)
			if fetchErr == nil {
				fetchErr = recErr
			}
		}

		duration := o.now().Sub(stepStart)
		if fetchErr != nil {
			logger.Warn("Sync failed for %s: %v", resource, fetchErr)
			if err := o.syncStore.Fail(ctx, ownerID, resource); err != nil {
				logger.Warn("Failed to clear in-progress flag for %s: %v", resource, err)
			}
			o.appendLogEntry(ctx, domain.SyncLogEntry{
				OwnerID:      ownerID,
				Resource:     resource,
				Operation:    domain.OpError,
				Processed:    processed,
				Added:        added,
				Updated:      updated,
				Duration:     duration,
				Success:      false,
				ErrorMessage: fetchErr.Error(),
			})
			typeErrs = append(typeErrs, fmt.Errorf("%s: %w", resource, fetchErr))
			o.reporter.Publish(tracker.snapshot(fmt.Sprintf("%s failed", resource), true))
			continue
		}

		if err := o.syncStore.Complete(ctx, ownerID, resource, processed); err != nil {
			// The flag must not linger until the staleness takeover.
			if ferr := o.syncStore.Fail(context.WithoutCancel(ctx), ownerID, resource); ferr != nil {
				logger.Warn("Failed to clear in-progress flag for %s: %v", resource, ferr)
			}
			o.reporter.Publish(tracker.finished(err))
			return fmt.Errorf("complete %s: %w", resource, err)
		}
		o.appendLogEntry(ctx, domain.SyncLogEntry{
			OwnerID:   ownerID,
			Resource:  resource,
			Operation: op,
			Processed: processed,
			Added:     added,
			Updated:   updated,
			Duration:  duration,
			Success:   true,
		})

		logger.Info("Synced %s: %d records (%d added, %d updated)", resource, processed, added, updated)
		o.reporter.Publish(tracker.snapshot(fmt.Sprintf("%s done: %d records", resource, processed), true))
	}

	if len(typeErrs) > 0 {
		err := errors.Join(typeErrs...)
		o.reporter.Publish(tracker.finished(err))
		return fmt.Errorf("sync completed with errors: %w", err)
	}

	o.reporter.Publish(tracker.finished(nil))
	logger.Info("Sync complete for owner %s", ownerID)
	return nil
}

// fetchOptions derives the pagination bounds for one resource type.
func (o *SyncOrchestrator) fetchOptions(
	ctx context.Context,
	ownerID string,
	resource domain.ResourceType,
	op domain.SyncOperation,
	budget int,
	tracker *progressTracker,
) driven.FetchOptions {
	opts := driven.FetchOptions{
		MaxItems: budget,
		Progress: func(fetched, reportedTotal int) {
			tracker.update(fetched, reportedTotal, budget)
			o.reporter.Publish(tracker.snapshot(fmt.Sprintf("syncing %s", resource), false))
		},
	}

	switch op {
	case domain.OpFullSync:
		if resource.SupportsDateFilter() {
			opts.From = o.now().Add(-fullSyncOrderWindow)
		}
	case domain.OpIncrementalSync:
		opts.From = o.now().Add(-incrementalFallbackWindow)
		state, err := o.syncStore.Get(ctx, ownerID, resource)
		if err == nil && !state.LastSyncAt.IsZero() {
			opts.From = state.LastSyncAt
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Reading checkpoint for %s: %v", resource, err)
		}
	}

	return opts
}

// abortPass performs crash-recovery cleanup before surfacing an
// owner-scoped error: the current step is logged as failed and every
// in-progress flag for the owner is reset.
func (o *SyncOrchestrator) abortPass(
	ctx context.Context,
	ownerID string,
	resource domain.ResourceType,
	stepStart time.Time,
	cause error,
) {
	// The pass may have been cancelled; cleanup must still run.
	cleanupCtx := context.WithoutCancel(ctx)

	o.appendLogEntry(cleanupCtx, domain.SyncLogEntry{
		OwnerID:      ownerID,
		Resource:     resource,
		Operation:    domain.OpError,
		Duration:     o.now().Sub(stepStart),
		ErrorMessage: cause.Error(),
	})
	if err := o.syncStore.ResetInProgress(cleanupCtx, ownerID); err != nil {
		logger.Warn("Crash-recovery cleanup failed for owner %s: %v", ownerID, err)
	}
}

// appendLogEntry writes an audit entry, logging rather than failing the
// pass when the write itself errors.
func (o *SyncOrchestrator) appendLogEntry(ctx context.Context, entry domain.SyncLogEntry) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = o.now()
	if err := o.logStore.Append(ctx, entry); err != nil {
		logger.Warn("Failed to append sync log entry: %v", err)
	}
}

// itemBudget returns the per-type item cap for a pass mode.
func itemBudget(op domain.SyncOperation) int {
	if op == domain.OpIncrementalSync {
		return incrementalSyncMaxItems
	}
	return fullSyncMaxItems
}

package driven

import (
	"context"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// FetchOptions bound one pagination run over a single resource type.
type FetchOptions struct {
	// MaxItems caps how many records the run may accumulate.
	MaxItems int

	// From filters by last-modified date on resource types that support
	// server-side date filtering. Zero means no lower bound.
	From time.Time

	// To is the optional upper bound of the date filter.
	To time.Time

	// Progress, when non-nil, is invoked after every fetched batch with
	// the accumulated item count and the total reported by the source on
	// its first response (zero when the source gave none).
	Progress func(fetched, reportedTotal int)
}

// FetchResult is the outcome of one pagination run.
type FetchResult struct {
	// Records are the normalised records fetched, in source order.
	Records []domain.Record

	// ReportedTotal is the total the source claimed on its first
	// response. Not always reliable; zero when absent.
	ReportedTotal int

	// Requests is the number of HTTP requests spent, retries included.
	Requests int
}

// ResourceFetcher pulls records for one owner from the upstream POS API.
// FetchAll paginates a single resource endpoint until end of data or one
// of the configured caps is hit.
//
// On a mid-pagination failure the partial result is returned alongside
// the error so the caller can still reconcile what was fetched.
type ResourceFetcher interface {
	FetchAll(ctx context.Context, resource domain.ResourceType, opts FetchOptions) (*FetchResult, error)
}

// FetcherFactory creates owner-scoped fetchers from stored credentials.
// Keeping the client per owner avoids shared mutable credential state
// across concurrently syncing retailers.
type FetcherFactory interface {
	// Create builds a fetcher for the owner. Returns
	// domain.ErrOwnerNotConfigured when no credentials are stored.
	Create(ctx context.Context, ownerID string) (ResourceFetcher, error)
}

package kiotviet

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
	"github.com/lamdong-labs/kvsync-cli/internal/core/ports/driven"
	"github.com/lamdong-labs/kvsync-cli/internal/logger"
)

const (
	// PageSize is the fixed batch size the API returns. Requesting a
	// larger page does not yield more items per call, so the fetcher
	// always asks for exactly this many and advances the offset by it.
	PageSize = 20

	// maxRequests is the hard safety ceiling on requests per run. It is
	// authoritative: every attempt counts against it, retries included,
	// so a run terminates even when the source misreports totals.
	maxRequests = 50
)

// Inter-batch throttling: the delay grows with each batch and is
// bounded above.
const (
	baseDelay = 250 * time.Millisecond
	delayStep = 250 * time.Millisecond
	maxDelay  = 2 * time.Second

	// rateLimitCooldown is the fixed pause before the single retry after
	// an explicit "too many requests" signal.
	rateLimitCooldown = 2 * time.Second
)

// Ensure Fetcher implements the interface.
var _ driven.ResourceFetcher = (*Fetcher)(nil)

// Fetcher paginates KiotViet list endpoints for one retailer.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a fetcher over an owner-scoped client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// endpointFor maps a resource type to its API path.
func endpointFor(resource domain.ResourceType) (string, error) {
	switch resource {
	case domain.ResourceProducts:
		return "/products", nil
	case domain.ResourceCustomers:
		return "/customers", nil
	case domain.ResourceOrders:
		return "/orders", nil
	case domain.ResourceInvoices:
		return "/invoices", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, resource)
	}
}

// FetchAll paginates one resource endpoint until end of data or a cap.
//
// Stopping conditions are checked in order after each batch:
//  1. the batch was shorter than the fixed page size (end of data)
//  2. the accumulated count reached opts.MaxItems
//  3. the accumulated count reached the total reported on the first
//     response, when one was given
//  4. the request ceiling was reached
//
// On a rate-limit signal the same offset is retried once after a fixed
// cooldown. Any other error ends the run, returning the partial result
// alongside the error so callers can still reconcile what was fetched.
func (f *Fetcher) FetchAll(
	ctx context.Context,
	resource domain.ResourceType,
	opts driven.FetchOptions,
) (*driven.FetchResult, error) {
	endpoint, err := endpointFor(resource)
	if err != nil {
		return nil, err
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = PageSize * maxRequests
	}
	budget := (maxItems + PageSize - 1) / PageSize
	if budget > maxRequests {
		budget = maxRequests
	}

	result := &driven.FetchResult{}
	offset := 0
	fetched := 0
	retried := false

	for result.Requests < budget {
		if result.Requests > 0 {
			if err := f.pause(ctx, batchDelay(result.Requests)); err != nil {
				return result, err
			}
		}

		page, err := f.fetchPage(ctx, endpoint, resource, offset, opts)
		result.Requests++
		if err != nil {
			if IsRateLimited(err) {
				if retried || result.Requests >= budget {
					return result, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
				}
				retried = true
				logger.Warn("Rate limited on %s at offset %d, cooling down", resource, offset)
				if perr := f.pause(ctx, rateLimitCooldown); perr != nil {
					return result, perr
				}
				continue
			}
			// An endpoint 401/403 that survived the client's token refresh
			// stays a plain APIError: the credentials work for the owner,
			// so callers treat the failure as scoped to this resource.
			// Only a failed token exchange carries domain.ErrAuthInvalid.
			return result, fmt.Errorf("fetch %s at offset %d: %w", resource, offset, err)
		}
		retried = false

		if result.Requests == 1 {
			result.ReportedTotal = page.Total
		}

		batch := len(page.Data)
		fetched += batch
		for _, raw := range page.Data {
			if len(result.Records) >= maxItems {
				break
			}
			rec, terr := Transform(resource, raw)
			if terr != nil {
				logger.Debug("Skipping malformed %s item: %v", resource, terr)
				continue
			}
			result.Records = append(result.Records, rec)
		}

		logger.Debug("Fetched %s batch: %d items at offset %d (total %d)",
			resource, batch, offset, result.ReportedTotal)
		if opts.Progress != nil {
			opts.Progress(fetched, result.ReportedTotal)
		}

		if batch < PageSize {
			break // end of data
		}
		if fetched >= maxItems {
			break
		}
		if result.ReportedTotal > 0 && fetched >= result.ReportedTotal {
			break
		}
		offset += PageSize
	}

	return result, nil
}

// fetchPage requests a single fixed-size page.
func (f *Fetcher) fetchPage(
	ctx context.Context,
	endpoint string,
	resource domain.ResourceType,
	offset int,
	opts driven.FetchOptions,
) (*listPage, error) {
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(PageSize))
	query.Set("currentItem", strconv.Itoa(offset))

	// Only order-like endpoints honour server-side date filtering.
	if resource.SupportsDateFilter() {
		if !opts.From.IsZero() {
			query.Set("lastModifiedFrom", opts.From.Format(apiTimeLayout))
		}
		if !opts.To.IsZero() {
			query.Set("toDate", opts.To.Format(apiTimeLayout))
		}
	}

	var page listPage
	if err := f.client.GetJSON(ctx, endpoint, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// batchDelay returns the escalating inter-batch delay for the n-th batch.
func batchDelay(n int) time.Duration {
	d := baseDelay + time.Duration(n-1)*delayStep
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// pause sleeps for d or until the context is cancelled.
func (f *Fetcher) pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

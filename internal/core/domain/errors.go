package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown resource type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the
	// same owner and resource type.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrOwnerNotConfigured indicates no credentials are stored for the
	// requested retailer.
	ErrOwnerNotConfigured = errors.New("owner not configured")

	// Authentication Errors.

	// ErrAuthRequired indicates the connector requires authentication but
	// none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the stored credentials are invalid.
	// This aborts a whole orchestration pass, not just one resource type.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Connector Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

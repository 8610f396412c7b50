package kiotviet

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-success response from the KiotViet API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the response body snippet, when available.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("kiotviet api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("kiotviet api: status %d", e.StatusCode)
}

// IsRateLimited checks if an error is a "too many requests" signal.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsUnauthorized checks if an error is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

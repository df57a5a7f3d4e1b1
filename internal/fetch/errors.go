package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Fetch errors.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., retry on timeout, but fail fast on a 404).
var (
	// ErrMaxRetriesExceeded is returned when every retry attempt failed
	// with a transient error. The last attempt's error is wrapped.
	ErrMaxRetriesExceeded = errors.New("max retry attempts exceeded")
)

// StatusError is returned when the server responds with a non-success
// HTTP status. The status code determines whether the fetch is retried:
// 429 and 5xx responses are transient, other 4xx responses are not.
type StatusError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// URL is the URL that produced the response.
	URL string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status indicates a transient condition.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// ErrTooManyRedirects is returned when a fetch follows more than
// MaxRedirects redirects. The page is recorded as failed; the run continues.
var ErrTooManyRedirects = errors.New("too many redirects")

// HTTPStatusError reports a non-2xx response. Status errors are recorded,
// never retried: the server answered, it just said no.
type HTTPStatusError struct {
	// Code is the HTTP status code.
	Code int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d", e.Code)
}

// NetworkError wraps a connection-level failure: timeout, DNS failure,
// connection refused. These are the only fetch errors eligible for retry.
type NetworkError struct {
	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying failure was a timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

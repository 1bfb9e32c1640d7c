package enrich

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a source that answered "no such record". Adapters decide
// what it means: the breach adapter translates it to an empty result, others
// surface it.
var ErrNotFound = errors.New("enrich: not found")

// AuthError reports rejected or missing credentials (HTTP 401/403). It is
// never retried: the same key will fail the same way.
type AuthError struct {
	// Service is the adapter name.
	Service string

	// Code is the HTTP status code, zero for non-HTTP sources.
	Code int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected (status %d)", e.Service, e.Code)
}

// TransientError wraps a failure worth retrying with backoff: timeouts,
// connection errors, HTTP 429 and 5xx.
type TransientError struct {
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

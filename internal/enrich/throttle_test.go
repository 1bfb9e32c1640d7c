package enrich

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gianlucabassani/browsint/internal/model"
)

// fakeAdapter is a scriptable Adapter for tests.
type fakeAdapter struct {
	name    string
	accepts model.TargetType
	enabled bool
	fn      func(ctx context.Context, q model.EnrichmentQuery) (any, error)
}

func (f *fakeAdapter) Name() string                    { return f.name }
func (f *fakeAdapter) Accepts(t model.TargetType) bool { return t == f.accepts }
func (f *fakeAdapter) Enabled() bool                   { return f.enabled }
func (f *fakeAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	return f.fn(ctx, q)
}

func TestThrottleRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := &fakeAdapter{
		name:    "flaky",
		accepts: model.TargetDomain,
		enabled: true,
		fn: func(context.Context, model.EnrichmentQuery) (any, error) {
			if calls.Add(1) < 3 {
				return nil, &TransientError{Err: errors.New("http 503")}
			}
			return "ok", nil
		},
	}

	a := Throttle(inner, time.Millisecond)
	data, err := a.Query(t.Context(), model.EnrichmentQuery{Type: model.TargetDomain, Value: "corp.io"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if data != "ok" {
		t.Errorf("data = %v, want ok", data)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestThrottleExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := &fakeAdapter{
		name:    "down",
		accepts: model.TargetDomain,
		enabled: true,
		fn: func(context.Context, model.EnrichmentQuery) (any, error) {
			calls.Add(1)
			return nil, &TransientError{Err: errors.New("http 503")}
		},
	}

	a := Throttle(inner, time.Millisecond)
	_, err := a.Query(t.Context(), model.EnrichmentQuery{Type: model.TargetDomain, Value: "corp.io"})

	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("Query() error = %v, want TransientError", err)
	}
	if calls.Load() != retryAttempts {
		t.Errorf("calls = %d, want %d", calls.Load(), retryAttempts)
	}
}

func TestThrottleNeverRetriesAuthErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := &fakeAdapter{
		name:    "locked",
		accepts: model.TargetEmail,
		enabled: true,
		fn: func(context.Context, model.EnrichmentQuery) (any, error) {
			calls.Add(1)
			return nil, &AuthError{Service: "locked", Code: 401}
		},
	}

	a := Throttle(inner, time.Millisecond)
	_, err := a.Query(t.Context(), model.EnrichmentQuery{Type: model.TargetEmail, Value: "a@b.io"})

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Query() error = %v, want AuthError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want exactly 1 (no retry on auth failure)", calls.Load())
	}
}

func TestThrottleSpacesRequests(t *testing.T) {
	t.Parallel()

	const interval = 60 * time.Millisecond
	inner := &fakeAdapter{
		name:    "fast",
		accepts: model.TargetDomain,
		enabled: true,
		fn: func(context.Context, model.EnrichmentQuery) (any, error) {
			return "ok", nil
		},
	}

	a := Throttle(inner, interval)
	q := model.EnrichmentQuery{Type: model.TargetDomain, Value: "corp.io"}

	start := time.Now()
	for range 3 {
		if _, err := a.Query(t.Context(), q); err != nil {
			t.Fatalf("Query() error = %v", err)
		}
	}
	// Three requests through a 1-token bucket need two refill intervals.
	if elapsed := time.Since(start); elapsed < 2*interval-10*time.Millisecond {
		t.Errorf("three queries took %v, want >= %v", elapsed, 2*interval)
	}
}

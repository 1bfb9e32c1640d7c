package enrich

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/gianlucabassani/browsint/internal/model"
)

// Retry policy for transient failures. Applied by Throttle around every
// adapter query.
const (
	// retryAttempts is the total number of attempts per query.
	retryAttempts = 3

	// retryBaseDelay is the first backoff pause; it doubles per attempt.
	retryBaseDelay = 500 * time.Millisecond
)

// Throttle wraps an adapter with a token bucket spacing its requests at
// least minInterval apart, plus exponential-backoff retry on transient
// failures. The bucket is shared by every profile using the wrapped adapter.
func Throttle(a Adapter, minInterval time.Duration) Adapter {
	return &throttled{
		inner:   a,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

type throttled struct {
	inner   Adapter
	limiter *rate.Limiter
}

func (t *throttled) Name() string { return t.inner.Name() }

func (t *throttled) Accepts(tt model.TargetType) bool { return t.inner.Accepts(tt) }

func (t *throttled) Enabled() bool { return t.inner.Enabled() }

// Query waits for a rate token, then runs the inner query with retry.
// AuthError aborts immediately; TransientError is retried with doubling
// backoff until the attempt budget runs out, then surfaced as-is.
func (t *throttled) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
			delay *= 2
		}

		data, err := t.inner.Query(ctx, q)
		if err == nil {
			return data, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

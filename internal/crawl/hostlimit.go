package crawl

import (
	"context"
	"sync"
	"time"
)

// hostLimiter enforces the politeness contract: requests to the same host
// never overlap, and consecutive requests are spaced at least delay apart,
// measured from the completion of the previous request, not its start.
type hostLimiter struct {
	delay time.Duration

	mu    sync.Mutex
	gates map[string]*hostGate
}

// hostGate is the per-host state. The semaphore serializes dispatch; nextAt
// is the earliest time the next request to the host may start.
type hostGate struct {
	sem chan struct{}

	mu     sync.Mutex
	nextAt time.Time

	// delay overrides the limiter default for this host when larger
	// (a robots.txt crawl-delay directive).
	delay time.Duration
}

func newHostLimiter(delay time.Duration) *hostLimiter {
	return &hostLimiter{
		delay: delay,
		gates: make(map[string]*hostGate),
	}
}

func (l *hostLimiter) gate(host string) *hostGate {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.gates[host]
	if !ok {
		g = &hostGate{sem: make(chan struct{}, 1)}
		l.gates[host] = g
	}
	return g
}

// acquire blocks until the host's gate is free and its delay window has
// passed. It returns the context error on cancellation; in that case the
// gate is not held.
func (l *hostLimiter) acquire(ctx context.Context, host string) error {
	g := l.gate(host)

	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	g.mu.Lock()
	wait := time.Until(g.nextAt)
	g.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			<-g.sem
			return ctx.Err()
		}
	}
	return nil
}

// raiseDelay widens the spacing for one host. A smaller value never lowers
// the configured delay: the stricter of operator config and host demand wins.
func (l *hostLimiter) raiseDelay(host string, d time.Duration) {
	g := l.gate(host)
	g.mu.Lock()
	if d > g.delay {
		g.delay = d
	}
	g.mu.Unlock()
}

// release records the request's completion time and frees the gate. It must
// be called exactly once per successful acquire, after the request finishes.
func (l *hostLimiter) release(host string) {
	g := l.gate(host)

	g.mu.Lock()
	delay := l.delay
	if g.delay > delay {
		delay = g.delay
	}
	g.nextAt = time.Now().Add(delay)
	g.mu.Unlock()

	<-g.sem
}

package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gianlucabassani/browsint/internal/model"
)

// ErrUnknownRun is returned for a run ID the runner has never issued.
var ErrUnknownRun = errors.New("crawl: unknown run ID")

// Runner is the registry of crawl runs. It starts coordinators in the
// background, hands out run IDs, and lets callers cancel or wait on a run
// by ID.
type Runner struct {
	mu     sync.Mutex
	nextID int
	runs   map[string]*run
}

// run is one registered crawl run.
type run struct {
	coordinator *Coordinator
	cancel      context.CancelFunc
	done        chan struct{}

	// result and err are valid only after done is closed.
	result *model.CrawlRunResult
	err    error
}

// NewRunner creates an empty run registry.
func NewRunner() *Runner {
	return &Runner{runs: make(map[string]*run)}
}

// Start launches the coordinator against seedURL in the background and
// returns the run ID. The run inherits ctx; cancelling ctx or calling
// Cancel aborts it.
func (r *Runner) Start(ctx context.Context, c *Coordinator, seedURL string) string {
	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.nextID++
	id := fmt.Sprintf("run-%04d", r.nextID)
	rn := &run{
		coordinator: c,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	r.runs[id] = rn
	r.mu.Unlock()

	go func() {
		defer close(rn.done)
		defer cancel()
		rn.result, rn.err = c.Run(runCtx, seedURL)
	}()

	return id
}

// Cancel aborts the run with the given ID. Cancelling a finished run is a
// no-op. The partial result stays available through Wait.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	rn, ok := r.runs[runID]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownRun
	}
	rn.cancel()
	return nil
}

// Wait blocks until the run finishes and returns its result. For an aborted
// run the partial result is returned together with the abort error.
func (r *Runner) Wait(runID string) (*model.CrawlRunResult, error) {
	r.mu.Lock()
	rn, ok := r.runs[runID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrUnknownRun
	}
	<-rn.done
	return rn.result, rn.err
}

// Status returns the lifecycle state of the run.
func (r *Runner) Status(runID string) (State, error) {
	r.mu.Lock()
	rn, ok := r.runs[runID]
	r.mu.Unlock()
	if !ok {
		return "", ErrUnknownRun
	}
	return rn.coordinator.State(), nil
}

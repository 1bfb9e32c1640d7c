package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gianlucabassani/browsint/internal/model"
)

// DefaultProfileDeadline bounds one whole profile, all adapters included.
const DefaultProfileDeadline = 60 * time.Second

// Aggregator fans an enrichment query out to every matching adapter and
// assembles a TargetProfile from the answers.
type Aggregator struct {
	registry *Registry
	logger   *slog.Logger
	deadline time.Duration
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithDeadline sets the overall deadline for one profile.
func WithDeadline(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.deadline = d
	}
}

// WithAggregatorLogger sets the structured logger.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator over the given registry.
func NewAggregator(registry *Registry, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: registry,
		logger:   slog.Default(),
		deadline: DefaultProfileDeadline,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Profile builds a TargetProfile for the query. Adapters run concurrently
// under one shared deadline. The profile is always returned: per-adapter
// failures become error fields, keyless adapters disabled fields. The only
// error path is an invalid target type.
func (a *Aggregator) Profile(ctx context.Context, q model.EnrichmentQuery) (*model.TargetProfile, error) {
	if !q.Type.Valid() {
		return nil, fmt.Errorf("enrich: unknown target type %q", q.Type)
	}
	if q.Value == "" {
		return nil, fmt.Errorf("enrich: empty target value")
	}

	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	profile := model.NewTargetProfile(q)
	adapters := a.registry.For(q.Type)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, adapter := range adapters {
		if !adapter.Enabled() {
			profile.Fields[adapter.Name()] = model.FieldResult{Status: model.FieldDisabled}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			data, err := adapter.Query(ctx, q)
			elapsed := time.Since(start)

			field := model.FieldResult{Status: model.FieldOK, Data: data, Elapsed: elapsed}
			if err != nil {
				field = model.FieldResult{Status: model.FieldError, Error: err.Error(), Elapsed: elapsed}
				a.logger.Warn("enrichment adapter failed",
					slog.String("adapter", adapter.Name()),
					slog.String("target", q.Value),
					slog.String("error", err.Error()),
				)
			} else {
				a.logger.Debug("enrichment adapter done",
					slog.String("adapter", adapter.Name()),
					slog.String("target", q.Value),
					slog.Duration("elapsed", elapsed),
				)
			}

			mu.Lock()
			profile.Fields[adapter.Name()] = field
			mu.Unlock()
		}()
	}
	wg.Wait()

	profile.CompletedAt = time.Now()
	return profile, nil
}

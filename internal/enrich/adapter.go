package enrich

import (
	"context"

	"github.com/gianlucabassani/browsint/internal/model"
)

// Adapter is one external intelligence source.
//
// Query must honor ctx cancellation and classify its failures: AuthError for
// rejected credentials, TransientError for retryable conditions, anything
// else for permanent ones. Enabled is false when the adapter cannot run for
// configuration reasons (typically a missing API key); disabled adapters are
// reported as such in the profile instead of being queried.
type Adapter interface {
	// Name is the adapter's stable identifier, used as the profile field key.
	Name() string

	// Accepts reports whether the adapter can handle the given target type.
	Accepts(t model.TargetType) bool

	// Enabled reports whether the adapter is configured to run.
	Enabled() bool

	// Query performs one lookup.
	Query(ctx context.Context, q model.EnrichmentQuery) (any, error)
}

// Registry holds the configured adapters for a process.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters, in order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter. Not safe for concurrent use with queries;
// register everything during startup.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// For returns the adapters accepting the given target type, in registration
// order. Disabled adapters are included; the aggregator reports them as
// disabled fields.
func (r *Registry) For(t model.TargetType) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if a.Accepts(t) {
			out = append(out, a)
		}
	}
	return out
}

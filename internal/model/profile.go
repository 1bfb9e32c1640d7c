package model

import "time"

// TargetType classifies an enrichment target.
type TargetType string

// The target types an enrichment adapter can accept.
const (
	TargetDomain   TargetType = "domain"
	TargetEmail    TargetType = "email"
	TargetUsername TargetType = "username"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	switch t {
	case TargetDomain, TargetEmail, TargetUsername:
		return true
	}
	return false
}

// EnrichmentQuery identifies one target to profile. It fans out to every
// adapter whose accepted types include Type.
type EnrichmentQuery struct {
	// Type is the kind of target (domain, email, username).
	Type TargetType `json:"type"`

	// Value is the target itself.
	Value string `json:"value"`
}

// FieldStatus describes the outcome of one adapter within a profile.
type FieldStatus string

// Field statuses. A disabled adapter (missing API key) is distinct from a
// failed one: disabled is a configuration condition, not a target condition.
const (
	FieldOK       FieldStatus = "ok"
	FieldError    FieldStatus = "error"
	FieldDisabled FieldStatus = "disabled"
)

// FieldResult is one adapter's contribution to a target profile:
// a result, an error, or a disabled marker.
type FieldResult struct {
	// Status tells which of Data and Error is meaningful.
	Status FieldStatus `json:"status"`

	// Data is the adapter's result payload when Status is ok.
	Data any `json:"data,omitempty"`

	// Error is the failure text when Status is error.
	Error string `json:"error,omitempty"`

	// Elapsed is how long the adapter took, including retries.
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// TargetProfile is the merged result of all enrichment queries for one
// target. Partial profiles are normal: a failing adapter yields an error
// field, never a failed profile.
type TargetProfile struct {
	// Target is the profiled value.
	Target string `json:"target"`

	// Type is the target's type.
	Type TargetType `json:"type"`

	// Fields maps adapter name to that adapter's result-or-error.
	Fields map[string]FieldResult `json:"fields"`

	// CompletedAt is when the profile was assembled.
	CompletedAt time.Time `json:"completed_at"`
}

// NewTargetProfile creates an empty profile for the given query.
func NewTargetProfile(q EnrichmentQuery) *TargetProfile {
	return &TargetProfile{
		Target: q.Value,
		Type:   q.Type,
		Fields: make(map[string]FieldResult),
	}
}

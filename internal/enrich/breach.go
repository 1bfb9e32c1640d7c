package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gianlucabassani/browsint/internal/model"
)

// hibpBaseURL is the production endpoint of the breach API.
const hibpBaseURL = "https://haveibeenpwned.com/api/v3"

// Breach describes one known breach an account appeared in.
type Breach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int      `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
}

// BreachResult lists every breach for one account. Zero breaches is a real,
// positive answer, not an absence of data.
type BreachResult struct {
	Breaches []Breach `json:"breaches"`
}

// BreachAdapter queries a HIBP-style breached-account API. Disabled without
// an API key.
type BreachAdapter struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// BreachOption configures a BreachAdapter.
type BreachOption func(*BreachAdapter)

// WithBreachBaseURL overrides the API endpoint.
func WithBreachBaseURL(base string) BreachOption {
	return func(a *BreachAdapter) {
		a.baseURL = base
	}
}

// NewBreachAdapter creates the adapter. An empty apiKey disables it.
func NewBreachAdapter(client *http.Client, apiKey string, opts ...BreachOption) *BreachAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	a := &BreachAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: hibpBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *BreachAdapter) Name() string { return "breach" }

// Accepts implements Adapter.
func (a *BreachAdapter) Accepts(t model.TargetType) bool { return t == model.TargetEmail }

// Enabled implements Adapter.
func (a *BreachAdapter) Enabled() bool { return a.apiKey != "" }

// Query looks the address up in the breach corpus. The API answers 404 for
// accounts with no breaches; that is translated to an empty BreachResult.
func (a *BreachAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	endpoint := a.baseURL + "/breachedaccount/" + url.PathEscape(q.Value) + "?truncateResponse=false"

	var breaches []Breach
	err := getJSON(ctx, a.client, a.Name(), endpoint, map[string]string{
		"hibp-api-key": a.apiKey,
	}, &breaches)
	if errors.Is(err, ErrNotFound) {
		return &BreachResult{Breaches: []Breach{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &BreachResult{Breaches: breaches}, nil
}

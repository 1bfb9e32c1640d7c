package enrich

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gianlucabassani/browsint/internal/model"
)

// shodanBaseURL is the production endpoint of the host intelligence API.
const shodanBaseURL = "https://api.shodan.io"

// ExposedHost is one internet-facing host attributed to the domain.
type ExposedHost struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Org      string `json:"org,omitempty"`
	Product  string `json:"product,omitempty"`
	Hostname string `json:"hostname,omitempty"`
}

// ReputationResult summarizes a domain's exposed attack surface.
type ReputationResult struct {
	// Total is the source's full match count, which may exceed len(Hosts).
	Total int `json:"total"`

	Hosts []ExposedHost `json:"hosts,omitempty"`
}

// ReputationAdapter queries a Shodan-style host search API for services
// exposed under the domain. Disabled without an API key.
type ReputationAdapter struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// ReputationOption configures a ReputationAdapter.
type ReputationOption func(*ReputationAdapter)

// WithReputationBaseURL overrides the API endpoint.
func WithReputationBaseURL(base string) ReputationOption {
	return func(a *ReputationAdapter) {
		a.baseURL = base
	}
}

// NewReputationAdapter creates the adapter. An empty apiKey disables it.
func NewReputationAdapter(client *http.Client, apiKey string, opts ...ReputationOption) *ReputationAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	a := &ReputationAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: shodanBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *ReputationAdapter) Name() string { return "reputation" }

// Accepts implements Adapter.
func (a *ReputationAdapter) Accepts(t model.TargetType) bool { return t == model.TargetDomain }

// Enabled implements Adapter.
func (a *ReputationAdapter) Enabled() bool { return a.apiKey != "" }

// Query searches for hosts under the domain's hostname.
func (a *ReputationAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	endpoint := a.baseURL + "/shodan/host/search?" + url.Values{
		"key":   {a.apiKey},
		"query": {"hostname:" + q.Value},
	}.Encode()

	var payload struct {
		Total   int `json:"total"`
		Matches []struct {
			IPStr     string   `json:"ip_str"`
			Port      int      `json:"port"`
			Org       string   `json:"org"`
			Product   string   `json:"product"`
			Hostnames []string `json:"hostnames"`
		} `json:"matches"`
	}
	if err := getJSON(ctx, a.client, a.Name(), endpoint, nil, &payload); err != nil {
		return nil, err
	}

	result := &ReputationResult{Total: payload.Total}
	for _, m := range payload.Matches {
		host := ExposedHost{
			IP:      m.IPStr,
			Port:    m.Port,
			Org:     m.Org,
			Product: m.Product,
		}
		if len(m.Hostnames) > 0 {
			host.Hostname = m.Hostnames[0]
		}
		result.Hosts = append(result.Hosts, host)
	}
	return result, nil
}

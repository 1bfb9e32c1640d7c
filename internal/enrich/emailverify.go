package enrich

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gianlucabassani/browsint/internal/model"
)

// hunterBaseURL is the production endpoint of the email verification API.
const hunterBaseURL = "https://api.hunter.io/v2"

// EmailVerification is the distilled verifier answer for one address.
type EmailVerification struct {
	// Status is the verifier's verdict: valid, invalid, accept_all,
	// webmail, disposable, unknown.
	Status string `json:"status"`

	// Result is the deliverability call: deliverable, undeliverable, risky.
	Result string `json:"result"`

	// Score is the verifier's confidence, 0-100.
	Score int `json:"score"`

	Disposable bool `json:"disposable"`
	Webmail    bool `json:"webmail"`
	MXRecords  bool `json:"mx_records"`
	SMTPCheck  bool `json:"smtp_check"`
}

// EmailVerifyAdapter checks address deliverability through a Hunter-style
// HTTP API. Disabled without an API key.
type EmailVerifyAdapter struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// EmailVerifyOption configures an EmailVerifyAdapter.
type EmailVerifyOption func(*EmailVerifyAdapter)

// WithEmailVerifyBaseURL overrides the API endpoint.
func WithEmailVerifyBaseURL(base string) EmailVerifyOption {
	return func(a *EmailVerifyAdapter) {
		a.baseURL = base
	}
}

// NewEmailVerifyAdapter creates the adapter. An empty apiKey disables it.
func NewEmailVerifyAdapter(client *http.Client, apiKey string, opts ...EmailVerifyOption) *EmailVerifyAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	a := &EmailVerifyAdapter{
		client:  client,
		apiKey:  apiKey,
		baseURL: hunterBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *EmailVerifyAdapter) Name() string { return "emailverify" }

// Accepts implements Adapter.
func (a *EmailVerifyAdapter) Accepts(t model.TargetType) bool { return t == model.TargetEmail }

// Enabled implements Adapter.
func (a *EmailVerifyAdapter) Enabled() bool { return a.apiKey != "" }

// Query calls the email-verifier endpoint and returns an EmailVerification.
func (a *EmailVerifyAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	endpoint := a.baseURL + "/email-verifier?" + url.Values{
		"email":   {q.Value},
		"api_key": {a.apiKey},
	}.Encode()

	var payload struct {
		Data EmailVerification `json:"data"`
	}
	if err := getJSON(ctx, a.client, a.Name(), endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

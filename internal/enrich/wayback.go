package enrich

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gianlucabassani/browsint/internal/model"
)

// waybackCDXURL is the CDX search endpoint of the Internet Archive.
const waybackCDXURL = "https://web.archive.org/cdx/search/cdx"

// waybackLimit caps the number of snapshots requested per domain.
const waybackLimit = 50

// Snapshot is one archived capture of a URL.
type Snapshot struct {
	// Timestamp is the capture time in the archive's YYYYMMDDhhmmss form.
	Timestamp string `json:"timestamp"`

	// URL is the captured URL.
	URL string `json:"url"`

	// StatusCode is the HTTP status the archive recorded, when known.
	StatusCode string `json:"status_code,omitempty"`
}

// WaybackResult lists a domain's archived snapshots, oldest first.
type WaybackResult struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// WaybackAdapter lists archived snapshots of a domain through the CDX API.
// Keyless.
type WaybackAdapter struct {
	client  *http.Client
	baseURL string
}

// WaybackOption configures a WaybackAdapter.
type WaybackOption func(*WaybackAdapter)

// WithWaybackBaseURL overrides the CDX endpoint.
func WithWaybackBaseURL(base string) WaybackOption {
	return func(a *WaybackAdapter) {
		a.baseURL = base
	}
}

// NewWaybackAdapter creates the adapter.
func NewWaybackAdapter(client *http.Client, opts ...WaybackOption) *WaybackAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	a := &WaybackAdapter{
		client:  client,
		baseURL: waybackCDXURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *WaybackAdapter) Name() string { return "wayback" }

// Accepts implements Adapter.
func (a *WaybackAdapter) Accepts(t model.TargetType) bool { return t == model.TargetDomain }

// Enabled implements Adapter.
func (a *WaybackAdapter) Enabled() bool { return true }

// Query lists snapshots for the domain. The CDX JSON format is an array of
// rows whose first row names the columns.
func (a *WaybackAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	endpoint := a.baseURL + "?" + url.Values{
		"url":    {q.Value},
		"output": {"json"},
		"fl":     {"timestamp,original,statuscode"},
		"limit":  {strconv.Itoa(waybackLimit)},
	}.Encode()

	var rows [][]string
	if err := getJSON(ctx, a.client, a.Name(), endpoint, nil, &rows); err != nil {
		return nil, err
	}

	result := &WaybackResult{Snapshots: []Snapshot{}}
	for i, row := range rows {
		// Row zero is the header.
		if i == 0 || len(row) < 2 {
			continue
		}
		snap := Snapshot{Timestamp: row[0], URL: row[1]}
		if len(row) > 2 {
			snap.StatusCode = row[2]
		}
		result.Snapshots = append(result.Snapshots, snap)
		if len(result.Snapshots) >= waybackLimit {
			break
		}
	}
	return result, nil
}

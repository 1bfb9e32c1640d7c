package model

import "time"

// FetchResult holds the outcome of fetching a single URL.
// It is transient state owned by the coordinator for the duration of one
// task; only aggregated data survives into the CrawlRunResult.
type FetchResult struct {
	// URL is the final URL after redirects, not the originally requested one.
	// Relative links must be resolved against this value.
	URL string

	// StatusCode is the HTTP response status code. Zero when the request
	// never produced a response (network error).
	StatusCode int

	// ContentType is the MIME type from the Content-Type header.
	ContentType string

	// Body is the response body, possibly truncated at the configured byte
	// cap. Empty for non-2xx responses.
	Body []byte

	// Truncated is true when the body was cut at the byte cap. Truncation is
	// not a failure; extraction proceeds on the partial content.
	Truncated bool

	// Elapsed is the wall time the request took, redirects included.
	Elapsed time.Duration

	// Err is the typed fetch error, nil on success. See the fetcher package
	// for the taxonomy.
	Err error
}

// OK reports whether the fetch produced usable content.
func (r *FetchResult) OK() bool {
	return r.Err == nil
}

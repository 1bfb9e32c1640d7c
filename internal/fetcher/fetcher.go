package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gianlucabassani/browsint/internal/model"
)

// MaxRedirects bounds redirect chains. Five hops covers every legitimate
// canonicalization chain seen in practice; longer chains are loops.
const MaxRedirects = 5

// transientRetries is the number of extra attempts after a connection-level
// failure. HTTP status errors get zero retries.
const transientRetries = 2

// retryDelay is the pause between transient retries.
const retryDelay = 500 * time.Millisecond

// Fetcher performs single HTTP GETs on behalf of the crawl coordinator.
//
// Design decision: We accept an external *http.Client rather than building
// one because:
//  1. Tests inject httptest clients with local transports
//  2. Proxy and TLS configuration stay the caller's concern
//  3. Consistent with how the enrichment adapters take their clients
type Fetcher struct {
	client *http.Client

	// timeout bounds each request, redirects included.
	timeout time.Duration

	// maxBytes caps how much of the body is read. Larger bodies are
	// truncated, not failed.
	maxBytes int64

	// userAgent is sent on every request.
	userAgent string

	// extraHeaders are added to every request, after the defaults.
	extraHeaders map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBytes sets the response body byte cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithExtraHeaders adds per-site headers (e.g. a session cookie) to every
// request this fetcher makes.
func WithExtraHeaders(h map[string]string) Option {
	return func(f *Fetcher) {
		f.extraHeaders = h
	}
}

// New creates a Fetcher around the given client. The client's own redirect
// policy is replaced with the MaxRedirects bound.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	// Shallow-copy so the caller's client is not mutated.
	c := *client
	c.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= MaxRedirects {
			return ErrTooManyRedirects
		}
		return nil
	}

	f := &Fetcher{
		client:    &c,
		timeout:   30 * time.Second,
		maxBytes:  5 * 1024 * 1024,
		userAgent: "Browsint/1.0 (+https://github.com/gianlucabassani/browsint)",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL and returns a FetchResult. The result always has
// URL set to the final post-redirect URL when a response was obtained, so
// callers resolve relative links against it. Fetch itself returns no error:
// failures are carried in FetchResult.Err so the coordinator treats every
// page uniformly.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *model.FetchResult {
	start := time.Now()
	result := &model.FetchResult{URL: rawURL}

	var lastErr error
	for attempt := 0; attempt <= transientRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				result.Err = &NetworkError{Err: ctx.Err()}
				result.Elapsed = time.Since(start)
				return result
			case <-time.After(retryDelay):
			}
		}

		done, err := f.attempt(ctx, rawURL, result)
		if done {
			result.Elapsed = time.Since(start)
			return result
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	result.Err = &NetworkError{Err: lastErr}
	result.Elapsed = time.Since(start)
	return result
}

// attempt performs one request. It returns done=true when the result is
// final (success, status error, or redirect bound), and done=false with the
// transport error when a retry may help.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, result *model.FetchResult) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Err = &NetworkError{Err: err}
		return true, nil
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isRedirectBound(err) {
			result.Err = ErrTooManyRedirects
			return true, nil
		}
		return false, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already consumed

	result.URL = resp.Request.URL.String()
	result.StatusCode = resp.StatusCode
	result.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// No body for status failures; the page is failed, not retried.
		result.Err = &HTTPStatusError{Code: resp.StatusCode}
		return true, nil
	}

	// Read one byte past the cap to detect truncation without buffering
	// the whole oversized body.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return false, err
	}
	if int64(len(body)) > f.maxBytes {
		body = body[:f.maxBytes]
		result.Truncated = true
	}
	result.Body = decodeCharset(body, result.ContentType)
	result.Err = nil
	return true, nil
}

// retryable reports whether a transport error is a connection-level
// transient worth another attempt.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		errors.Is(err, context.DeadlineExceeded)
}

// isRedirectBound detects the CheckRedirect sentinel, which net/http wraps
// in a *url.Error.
func isRedirectBound(err error) bool {
	return errors.Is(err, ErrTooManyRedirects)
}

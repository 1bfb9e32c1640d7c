package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxAPIResponse caps how much of an API response is read. Intelligence
// APIs return kilobytes; anything bigger is misbehaving.
const maxAPIResponse = 4 * 1024 * 1024

// getJSON performs an authenticated GET and decodes the JSON response into
// out. It maps the HTTP status taxonomy onto the adapter error taxonomy:
// 401/403 -> AuthError, 429/5xx -> TransientError, 404 -> ErrNotFound.
// Transport errors are transient.
func getJSON(ctx context.Context, client *http.Client, service, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Browsint/1.0 (+https://github.com/gianlucabassani/browsint)")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already consumed

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Service: service, Code: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &TransientError{Err: fmt.Errorf("%s: http %d", service, resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s: unexpected http %d", service, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponse))
	if err != nil {
		return &TransientError{Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", service, err)
	}
	return nil
}

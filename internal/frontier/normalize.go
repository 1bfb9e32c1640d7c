package frontier

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned by Normalize when the input cannot be parsed
// into an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid URL: must be absolute http or https")

// Normalize reduces a URL to its canonical visited-set form:
// scheme + host + path, with
//   - scheme and host lower-cased
//   - default ports (:80 for http, :443 for https) stripped
//   - fragment and query stripped
//   - trailing slash collapsed, except for the root path
//
// Two URLs that normalize identically are treated as the same page for
// deduplication. The original URL, not the normalized one, is what gets
// fetched.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Host)
	if host == "" {
		return "", ErrInvalidURL
	}

	// Strip default ports.
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	// Collapse the trailing slash except at the root, so /about and /about/
	// dedupe to the same entry.
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	return scheme + "://" + host + path, nil
}

// Host returns the lower-cased hostname (without port) of a URL, or an
// empty string when the URL does not parse.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

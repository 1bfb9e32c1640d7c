package config

import "errors"

// Configuration validation errors, returned by ValidateCrawl.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in ValidateCrawl(). This allows callers to
// use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoSeed is returned when no seed URL is specified.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidSeed is returned when the seed URL is not an absolute
	// http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed URL: must be absolute http or https")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive. A zero timeout would fail every request immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the per-host delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page ceiling is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Use 0 to fetch only the seed page.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body cap is negative.
	// Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownKind is returned when an extraction kind name is not one
	// of: emails, phones, social, metadata, forms, technologies.
	ErrUnknownKind = errors.New("unknown extraction kind")
)

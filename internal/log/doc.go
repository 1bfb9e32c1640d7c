// Package log provides structured logging with automatic masking of
// secrets, built on the standard slog package.
//
// Crawl and enrichment logging routinely touches values that must never
// land in a log file: API keys for the enrichment services, per-site
// session cookies, and request URLs that carry a key as a query parameter.
// The SecureHandler masks all of these before the record reaches the
// underlying handler, so no call site has to remember to redact.
package log

// Package fetcher retrieves single pages over HTTP with the guard rails a
// crawler needs: a per-request timeout, a redirect bound, a response byte
// cap, and a small retry budget for connection-level transients.
//
// The fetcher never retries HTTP status errors. A 500 today is a 500 on the
// next attempt too, and the crawl budget is better spent elsewhere; the
// coordinator records the page as failed and moves on.
package fetcher

// Package extract parses fetched HTML and pulls structured intelligence:
// email addresses, phone numbers, social media links, page metadata, forms,
// and technology fingerprints.
//
// # Architecture
//
// The Extractor walks the DOM once (golang.org/x/net/html) collecting
// elements and text, then runs pattern matching over the gathered text.
// Pattern scanning covers the raw decoded HTML text, HTML comments, and the
// mailto:/tel: attribute values, so obfuscated contacts embedded in markup
// are caught by the same rule as visible ones.
//
// Design decision: We use golang.org/x/net/html rather than regex over the
// raw document because:
//  1. It correctly handles the malformed HTML common on the web
//  2. Links, forms, and meta tags need real attribute parsing
//  3. Text extraction must not leak tag soup into the contact patterns
//
// Each extraction kind can be disabled independently; disabled kinds are
// omitted from the record without error. Outbound links are returned for
// every page regardless of kind configuration, since the frontier, not the
// extractor, applies crawl filters.
package extract

// Package model defines the data types shared across the crawl-and-extract
// engine: crawl tasks and results, extraction records, enrichment queries,
// and target profiles.
//
// Types in this package are plain data carriers. Behavior (fetching, parsing,
// scheduling, enrichment) lives in the packages that produce or consume them.
package model

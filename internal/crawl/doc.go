// Package crawl coordinates a crawl run: it drives the frontier, dispatches
// fetch tasks to a bounded worker pool, feeds the extractor, and aggregates
// per-page records into one run result.
//
// # Architecture
//
// A run is a loop over batches. The coordinator pulls up to Workers tasks
// from the frontier, processes the batch concurrently through an errgroup,
// enqueues the discovered links, and repeats until the frontier drains, the
// page ceiling is hit, or the context is cancelled.
//
// Design decision: We process the frontier in batches rather than with a
// long-lived worker pool because:
//  1. Batch boundaries give a natural point to check the page ceiling
//  2. The frontier stays a plain queue; no condition-variable completion
//     detection is needed
//  3. errgroup.Wait per batch makes "no work in flight" trivially observable
//
// Per-page failures are recorded and logged, never fatal: a crawl over real
// pages always hits some broken links.
package crawl

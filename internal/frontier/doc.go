// Package frontier implements the crawl frontier: the pending/visited URL
// ledger for a single crawl run.
//
// The frontier is the only shared mutable structure within a run. All access
// goes through a single mutex so that the visited-set check-and-insert is
// atomic; two workers extracting overlapping link sets can never both enqueue
// the same normalized URL.
//
// Ordering is breadth-first: accepted URLs are appended in discovery order
// and Next returns the head of the queue.
package frontier

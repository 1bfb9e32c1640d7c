package crawl

// ProgressEvent is a point-in-time snapshot emitted after each processed
// page. Events are emitted from worker goroutines; the callback must be safe
// for concurrent use.
type ProgressEvent struct {
	// URL is the page that was just processed.
	URL string

	// PagesVisited and PagesFailed are the running counters.
	PagesVisited int
	PagesFailed  int

	// Pending is the frontier queue length at emission time.
	Pending int

	// Per-kind counts of the aggregated extraction so far.
	Emails       int
	Phones       int
	SocialLinks  int
	Technologies int
}

// ProgressFunc receives progress events during a run. A nil func disables
// progress reporting.
type ProgressFunc func(ProgressEvent)

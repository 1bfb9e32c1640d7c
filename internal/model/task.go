package model

// CrawlTask is one unit of crawl work: a URL to fetch at a given depth.
// Tasks are immutable once enqueued and are consumed exactly once by the
// crawl coordinator.
type CrawlTask struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is the link distance from the seed. The seed itself is depth 0.
	Depth int

	// OriginHost is the host of the seed URL. It is carried on the task so
	// workers can enforce the same-domain policy without sharing run state.
	OriginHost string
}

package model

import "time"

// TerminationReason explains why a crawl run ended.
type TerminationReason string

// Termination reasons. A run that drains its frontier completes; anything
// else is an abort with a partial result.
const (
	// TerminationCompleted means the frontier emptied with no work in flight.
	TerminationCompleted TerminationReason = "completed"

	// TerminationCancelled means the run was cancelled by the caller.
	TerminationCancelled TerminationReason = "cancelled"

	// TerminationMaxPages means the configured page ceiling was reached.
	TerminationMaxPages TerminationReason = "max_pages"
)

// PageFailure records one page that could not be processed, with its cause.
// Failures never abort the run; they are logged and counted.
type PageFailure struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Reason is a short cause label (timeout, http_status, parse_error, ...).
	Reason string `json:"reason"`

	// Detail is the error text, if any.
	Detail string `json:"detail,omitempty"`
}

// CrawlRunResult is the finalized outcome of one crawl run. It is created
// when the run starts, finalized exactly once when the run ends, and is
// immutable thereafter. The persistence layer receives it as-is.
type CrawlRunResult struct {
	// SeedURL is the URL the run started from.
	SeedURL string `json:"seed_url"`

	// PagesVisited counts pages fetched and extracted successfully.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed counts pages that produced a fetch or parse failure.
	// Truncated bodies do not count as failures.
	PagesFailed int `json:"pages_failed"`

	// Failures lists each failed page with its cause.
	Failures []PageFailure `json:"failures,omitempty"`

	// Extraction is the union of every successful page's extraction record.
	Extraction *ExtractionRecord `json:"extraction"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TerminationReason explains how the run ended.
	TerminationReason TerminationReason `json:"termination_reason"`
}

// NewCrawlRunResult creates a result shell for a run starting now.
func NewCrawlRunResult(seedURL string) *CrawlRunResult {
	return &CrawlRunResult{
		SeedURL:    seedURL,
		Extraction: NewExtractionRecord(seedURL),
		StartedAt:  time.Now(),
	}
}

// Finalize stamps the end time and termination reason. It is called exactly
// once by the coordinator; the result must not be modified afterwards.
func (r *CrawlRunResult) Finalize(reason TerminationReason) {
	r.FinishedAt = time.Now()
	r.TerminationReason = reason
}

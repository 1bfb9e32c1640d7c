package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gianlucabassani/browsint/internal/extract"
	"github.com/gianlucabassani/browsint/internal/fetcher"
	"github.com/gianlucabassani/browsint/internal/frontier"
	"github.com/gianlucabassani/browsint/internal/model"
	"github.com/gianlucabassani/browsint/internal/robots"
)

// State is the lifecycle state of a Coordinator.
type State string

// Coordinator states. A coordinator runs once: Idle -> Running -> Completed
// or Aborted. Create a new one per run.
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

var (
	// ErrAlreadyStarted is returned by Run when the coordinator left the
	// Idle state. Coordinators are single-use.
	ErrAlreadyStarted = errors.New("crawl: coordinator already started")

	// ErrRunAborted wraps the termination reason when a run ends before the
	// frontier drains. The partial result is still returned.
	ErrRunAborted = errors.New("crawl: run aborted")
)

// Defaults for a crawl run. Each is overridable with an option.
const (
	// DefaultWorkers is the fetch concurrency bound.
	DefaultWorkers = 4

	// DefaultMaxPages is the total page ceiling per run.
	DefaultMaxPages = 100

	// DefaultMaxDepth is the link distance bound from the seed.
	DefaultMaxDepth = 2

	// DefaultHostDelay is the minimum spacing between requests to one host,
	// measured from the completion of the previous request.
	DefaultHostDelay = 1 * time.Second
)

// PageFetcher fetches one URL. *fetcher.Fetcher satisfies it; tests may
// substitute their own.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) *model.FetchResult
}

// Coordinator drives one crawl run end to end.
type Coordinator struct {
	fetcher   PageFetcher
	extractor *extract.Extractor
	logger    *slog.Logger

	workers        int
	maxPages       int
	maxDepth       int
	sameDomainOnly bool
	respectRobots  bool
	hostDelay      time.Duration
	progress       ProgressFunc
	ignorePatterns []string
	followPatterns []string

	mu    sync.Mutex
	state State
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the fetch concurrency bound.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		c.workers = n
	}
}

// WithMaxPages sets the total page ceiling for the run.
func WithMaxPages(n int) Option {
	return func(c *Coordinator) {
		c.maxPages = n
	}
}

// WithMaxDepth sets the maximum link distance from the seed.
// 0 means only the seed page.
func WithMaxDepth(depth int) Option {
	return func(c *Coordinator) {
		c.maxDepth = depth
	}
}

// WithSameDomainOnly restricts the crawl to the seed's host.
func WithSameDomainOnly(on bool) Option {
	return func(c *Coordinator) {
		c.sameDomainOnly = on
	}
}

// WithHostDelay sets the per-host politeness delay.
func WithHostDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		c.hostDelay = d
	}
}

// WithRespectRobots controls whether the seed host's robots.txt is fetched
// and its disallow rules honored. On by default.
func WithRespectRobots(on bool) Option {
	return func(c *Coordinator) {
		c.respectRobots = on
	}
}

// WithIgnorePatterns sets URL path glob patterns to skip during the crawl.
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Coordinator) {
		c.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path glob patterns to follow. When non-empty,
// only discovered links matching at least one pattern are crawled.
func WithFollowPatterns(patterns []string) Option {
	return func(c *Coordinator) {
		c.followPatterns = patterns
	}
}

// WithLogger sets the structured logger for run events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithProgress sets the progress callback. It is called from worker
// goroutines and must be safe for concurrent use.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) {
		c.progress = fn
	}
}

// New creates a Coordinator around the given fetcher and extractor.
func New(f PageFetcher, ex *extract.Extractor, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:        f,
		extractor:      ex,
		logger:         slog.Default(),
		workers:        DefaultWorkers,
		maxPages:       DefaultMaxPages,
		maxDepth:       DefaultMaxDepth,
		sameDomainOnly: true,
		respectRobots:  true,
		hostDelay:      DefaultHostDelay,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the coordinator's lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run crawls from seedURL until the frontier drains, the page ceiling is
// reached, or ctx is cancelled. The returned result is always non-nil after
// a successful start: an aborted run carries its partial result together
// with an ErrRunAborted error.
func (c *Coordinator) Run(ctx context.Context, seedURL string) (*model.CrawlRunResult, error) {
	norm, err := frontier.Normalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	c.state = StateRunning
	c.mu.Unlock()

	fr := frontier.New(frontier.Host(norm),
		frontier.WithMaxDepth(c.maxDepth),
		frontier.WithSameDomainOnly(c.sameDomainOnly),
		frontier.WithIgnorePatterns(c.ignorePatterns),
		frontier.WithFollowPatterns(c.followPatterns),
	)
	fr.Enqueue(norm, 0)

	result := model.NewCrawlRunResult(norm)
	limiter := newHostLimiter(c.hostDelay)
	agg := &aggregator{result: result}

	c.logger.Info("crawl started",
		slog.String("seed", norm),
		slog.Int("workers", c.workers),
		slog.Int("max_pages", c.maxPages),
		slog.Int("max_depth", c.maxDepth),
	)

	var policy *robotsPolicy
	if c.respectRobots {
		policy = c.fetchRobots(ctx, norm, limiter)
	}

	reason := model.TerminationCompleted
	attempted := 0

	for {
		if ctx.Err() != nil {
			reason = model.TerminationCancelled
			break
		}

		budget := c.maxPages - attempted
		if budget <= 0 {
			if fr.PendingLen() > 0 {
				reason = model.TerminationMaxPages
			}
			break
		}

		size := c.workers
		if size > budget {
			size = budget
		}
		batch := fr.NextBatch(size)
		if len(batch) == 0 {
			break
		}

		if policy != nil {
			kept := batch[:0]
			for _, task := range batch {
				if policy.allows(task.URL) {
					kept = append(kept, task)
					continue
				}
				c.logger.Debug("skipped by robots.txt", slog.String("url", task.URL))
			}
			batch = kept
			if len(batch) == 0 {
				continue
			}
		}
		attempted += len(batch)

		g := new(errgroup.Group)
		g.SetLimit(c.workers)
		for _, task := range batch {
			g.Go(func() error {
				c.processTask(ctx, task, fr, limiter, agg)
				return nil
			})
		}
		// Workers report failures through the aggregator, never as errors.
		_ = g.Wait()
	}

	// A cancellation observed mid-batch still terminates as cancelled.
	if ctx.Err() != nil {
		reason = model.TerminationCancelled
	}

	result.Finalize(reason)

	c.mu.Lock()
	if reason == model.TerminationCompleted {
		c.state = StateCompleted
	} else {
		c.state = StateAborted
	}
	c.mu.Unlock()

	c.logger.Info("crawl finished",
		slog.String("seed", norm),
		slog.String("reason", string(reason)),
		slog.Int("pages_visited", result.PagesVisited),
		slog.Int("pages_failed", result.PagesFailed),
	)

	if reason != model.TerminationCompleted {
		return result, fmt.Errorf("%w: %s", ErrRunAborted, reason)
	}
	return result, nil
}

// robotsAgent is the product token robots.txt user-agent groups are matched
// against. Groups addressed to "*" apply as well.
const robotsAgent = "browsint"

// robotsPolicy holds the parsed robots.txt rules for the seed host. A nil
// policy allows everything.
type robotsPolicy struct {
	host  string
	rules *robots.Rules
}

// allows reports whether the policy permits fetching rawURL. URLs on other
// hosts are outside the policy's scope and always allowed.
func (p *robotsPolicy) allows(rawURL string) bool {
	if p == nil {
		return true
	}
	if frontier.Host(rawURL) != p.host {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return p.rules.IsAllowed(u.Path)
}

// fetchRobots retrieves and parses the seed host's robots.txt through the
// politeness gate. Any failure, a missing file included, yields a nil policy:
// robots.txt can restrict a crawl but never break one.
func (c *Coordinator) fetchRobots(ctx context.Context, norm string, limiter *hostLimiter) *robotsPolicy {
	u, err := url.Parse(norm)
	if err != nil {
		return nil
	}
	u.Path = "/robots.txt"
	u.RawQuery = ""
	u.Fragment = ""
	host := frontier.Host(norm)

	if err := limiter.acquire(ctx, host); err != nil {
		return nil
	}
	res := c.fetcher.Fetch(ctx, u.String())
	limiter.release(host)

	if !res.OK() {
		c.logger.Debug("no robots.txt", slog.String("host", host))
		return nil
	}

	rules := robots.Parse(string(res.Body), robotsAgent)
	c.logger.Info("robots.txt loaded",
		slog.String("host", host),
		slog.Int("rules", rules.RuleCount()),
	)
	if d := rules.CrawlDelay(); d > c.hostDelay {
		limiter.raiseDelay(host, d)
		c.logger.Info("robots.txt crawl-delay raises host spacing",
			slog.String("host", host),
			slog.Duration("delay", d),
		)
	}
	if sitemaps := rules.Sitemaps(); len(sitemaps) > 0 {
		c.logger.Info("robots.txt lists sitemaps",
			slog.String("host", host),
			slog.Any("sitemaps", sitemaps),
		)
	}
	if sensitive := rules.SensitivePaths(); len(sensitive) > 0 {
		c.logger.Info("robots.txt hides internal paths",
			slog.String("host", host),
			slog.Any("paths", sensitive),
		)
	}
	return &robotsPolicy{host: host, rules: rules}
}

// aggregator guards the shared run result across workers.
type aggregator struct {
	mu     sync.Mutex
	result *model.CrawlRunResult
}

func (a *aggregator) recordSuccess(record *model.ExtractionRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.PagesVisited++
	a.result.Extraction.Merge(record)
}

func (a *aggregator) recordFailure(pageURL, reason string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.PagesFailed++
	failure := model.PageFailure{URL: pageURL, Reason: reason}
	if err != nil {
		failure.Detail = err.Error()
	}
	a.result.Failures = append(a.result.Failures, failure)
}

// snapshot builds a progress event from the current counters.
func (a *aggregator) snapshot(pageURL string, pending int) ProgressEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ProgressEvent{
		URL:          pageURL,
		PagesVisited: a.result.PagesVisited,
		PagesFailed:  a.result.PagesFailed,
		Pending:      pending,
		Emails:       len(a.result.Extraction.Emails),
		Phones:       len(a.result.Extraction.Phones),
		SocialLinks:  len(a.result.Extraction.SocialLinks),
		Technologies: len(a.result.Extraction.Technologies),
	}
}

// processTask handles one frontier task: politeness gate, fetch, extract,
// feed links back. Failures are recorded, never returned.
func (c *Coordinator) processTask(ctx context.Context, task model.CrawlTask, fr *frontier.Frontier, limiter *hostLimiter, agg *aggregator) {
	host := frontier.Host(task.URL)
	if err := limiter.acquire(ctx, host); err != nil {
		// Cancelled while waiting for the politeness gate; not a page failure.
		return
	}
	res := c.fetcher.Fetch(ctx, task.URL)
	limiter.release(host)

	if !res.OK() {
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) && ctx.Err() != nil {
			return
		}
		reason := failureReason(res.Err)
		agg.recordFailure(task.URL, reason, res.Err)
		c.logger.Warn("page failed",
			slog.String("url", task.URL),
			slog.String("reason", reason),
			slog.String("detail", res.Err.Error()),
		)
		c.emitProgress(agg, task.URL, fr.PendingLen())
		return
	}

	// Non-HTML responses count as visited but carry nothing to extract. The
	// frontier's extension filter catches most of these before fetch.
	if res.ContentType != "" && !strings.Contains(res.ContentType, "text/html") {
		agg.recordSuccess(model.NewExtractionRecord(res.URL))
		c.emitProgress(agg, task.URL, fr.PendingLen())
		return
	}

	record, links, err := c.extractor.Extract(res.Body, res.URL)
	if err != nil {
		agg.recordFailure(task.URL, "parse_error", err)
		c.logger.Warn("page failed",
			slog.String("url", task.URL),
			slog.String("reason", "parse_error"),
			slog.String("detail", err.Error()),
		)
		c.emitProgress(agg, task.URL, fr.PendingLen())
		return
	}

	for _, link := range links {
		fr.Enqueue(link, task.Depth+1)
	}

	agg.recordSuccess(record)
	c.logger.Debug("page processed",
		slog.String("url", res.URL),
		slog.Int("status", res.StatusCode),
		slog.Bool("truncated", res.Truncated),
		slog.Int("links", len(links)),
		slog.Duration("elapsed", res.Elapsed),
	)
	c.emitProgress(agg, task.URL, fr.PendingLen())
}

func (c *Coordinator) emitProgress(agg *aggregator, pageURL string, pending int) {
	if c.progress == nil {
		return
	}
	c.progress(agg.snapshot(pageURL, pending))
}

// failureReason maps a fetch error to its short cause label.
func failureReason(err error) string {
	var statusErr *fetcher.HTTPStatusError
	var netErr *fetcher.NetworkError

	switch {
	case errors.Is(err, fetcher.ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "timeout"
		}
		return "network"
	default:
		return "fetch_error"
	}
}

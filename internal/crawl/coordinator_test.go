package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gianlucabassani/browsint/internal/extract"
	"github.com/gianlucabassani/browsint/internal/fetcher"
	"github.com/gianlucabassani/browsint/internal/frontier"
	"github.com/gianlucabassani/browsint/internal/model"
)

// hitRecorder captures which paths a test server served and when.
type hitRecorder struct {
	mu    sync.Mutex
	paths []string
	times []time.Time
}

func (h *hitRecorder) record(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
	h.times = append(h.times, time.Now())
}

func (h *hitRecorder) sortedPaths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]string(nil), h.paths...)
	sort.Strings(out)
	return out
}

// newSite serves the given path->HTML map and records every hit.
func newSite(t *testing.T, pages map[string]string) (*httptest.Server, *hitRecorder) {
	t.Helper()

	rec := &hitRecorder{}
	mux := http.NewServeMux()
	for p, body := range pages {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != p {
				http.NotFound(w, r)
				return
			}
			rec.record(r.URL.Path)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(srv *httptest.Server, opts ...Option) *Coordinator {
	f := fetcher.New(srv.Client(), fetcher.WithTimeout(5*time.Second))
	base := []Option{
		WithLogger(quietLogger()),
		WithHostDelay(0),
		WithWorkers(4),
	}
	return New(f, extract.New(), append(base, opts...)...)
}

func TestCoordinatorSeedOnlyAtDepthZero(t *testing.T) {
	t.Parallel()

	srv, rec := newSite(t, map[string]string{
		"/":  `<a href="/a">a</a><a href="/b">b</a>`,
		"/a": `<p>a</p>`,
		"/b": `<p>b</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(0))
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.PagesVisited != 1 {
		t.Errorf("PagesVisited = %d, want 1", result.PagesVisited)
	}
	if got := rec.sortedPaths(); !reflect.DeepEqual(got, []string{"/"}) {
		t.Errorf("fetched paths = %v, want only /", got)
	}
	if result.TerminationReason != model.TerminationCompleted {
		t.Errorf("termination = %q, want %q", result.TerminationReason, model.TerminationCompleted)
	}
	if c.State() != StateCompleted {
		t.Errorf("state = %q, want %q", c.State(), StateCompleted)
	}
}

func TestCoordinatorFollowsLinksAndAggregates(t *testing.T) {
	t.Parallel()

	srv, rec := newSite(t, map[string]string{
		"/":        `<a href="/team">team</a><a href="/contact">contact</a>`,
		"/team":    `<p>Lead: <a href="mailto:lead@corp.io">mail</a></p><a href="/deep">deep</a>`,
		"/contact": `<p>Write lead@corp.io or sales@corp.io</p>`,
		"/deep":    `<p>support@corp.io</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(2))
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.PagesVisited != 4 {
		t.Errorf("PagesVisited = %d, want 4", result.PagesVisited)
	}
	wantPaths := []string{"/", "/contact", "/deep", "/team"}
	if got := rec.sortedPaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("fetched paths = %v, want %v", got, wantPaths)
	}

	wantEmails := []string{"lead@corp.io", "sales@corp.io", "support@corp.io"}
	if got := result.Extraction.EmailList(); !reflect.DeepEqual(got, wantEmails) {
		t.Errorf("aggregated emails = %v, want %v", got, wantEmails)
	}
}

func TestCoordinatorContinuesAfterPageFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<a href="/broken">broken</a><a href="/good">good</a>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/good", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<p>ok@corp.io</p>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestCoordinator(srv, WithMaxDepth(1))
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", result.PagesVisited)
	}
	if result.PagesFailed != 1 {
		t.Fatalf("PagesFailed = %d, want 1", result.PagesFailed)
	}
	failure := result.Failures[0]
	if failure.Reason != "http_status" {
		t.Errorf("failure reason = %q, want http_status", failure.Reason)
	}
	if !strings.HasSuffix(failure.URL, "/broken") {
		t.Errorf("failure URL = %q, want .../broken", failure.URL)
	}
	if result.TerminationReason != model.TerminationCompleted {
		t.Errorf("termination = %q, want completed despite the failure", result.TerminationReason)
	}
	if got := result.Extraction.EmailList(); !reflect.DeepEqual(got, []string{"ok@corp.io"}) {
		t.Errorf("emails = %v, want [ok@corp.io]", got)
	}
}

func TestCoordinatorMaxPagesCeiling(t *testing.T) {
	t.Parallel()

	srv, _ := newSite(t, map[string]string{
		"/":   `<a href="/p1">1</a><a href="/p2">2</a><a href="/p3">3</a><a href="/p4">4</a>`,
		"/p1": `<p>1</p>`,
		"/p2": `<p>2</p>`,
		"/p3": `<p>3</p>`,
		"/p4": `<p>4</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(1), WithMaxPages(2))
	result, err := c.Run(t.Context(), srv.URL)
	if !errors.Is(err, ErrRunAborted) {
		t.Fatalf("Run() error = %v, want ErrRunAborted", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil partial result")
	}
	if result.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", result.PagesVisited)
	}
	if result.TerminationReason != model.TerminationMaxPages {
		t.Errorf("termination = %q, want %q", result.TerminationReason, model.TerminationMaxPages)
	}
	if c.State() != StateAborted {
		t.Errorf("state = %q, want %q", c.State(), StateAborted)
	}
}

func TestCoordinatorCancellation(t *testing.T) {
	t.Parallel()

	// An endless chain of pages, each taking a little while to serve.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/page"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<a href="/page%d">next</a>`, n+1)
	}))
	t.Cleanup(srv.Close)

	c := newTestCoordinator(srv,
		WithMaxDepth(10000),
		WithMaxPages(10000),
		WithWorkers(1),
	)

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(150*time.Millisecond, cancel)

	result, err := c.Run(ctx, srv.URL)
	if !errors.Is(err, ErrRunAborted) {
		t.Fatalf("Run() error = %v, want ErrRunAborted", err)
	}
	if result.TerminationReason != model.TerminationCancelled {
		t.Errorf("termination = %q, want %q", result.TerminationReason, model.TerminationCancelled)
	}
	if result.PagesVisited == 0 {
		t.Error("PagesVisited = 0, want at least the seed before cancellation")
	}
	if c.State() != StateAborted {
		t.Errorf("state = %q, want %q", c.State(), StateAborted)
	}
}

func TestCoordinatorPerHostDelay(t *testing.T) {
	t.Parallel()

	const delay = 120 * time.Millisecond

	srv, rec := newSite(t, map[string]string{
		"/":   `<a href="/p1">1</a><a href="/p2">2</a>`,
		"/p1": `<p>1</p>`,
		"/p2": `<p>2</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(1), WithHostDelay(delay))
	if _, err := c.Run(t.Context(), srv.URL); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec.mu.Lock()
	times := append([]time.Time(nil), rec.times...)
	rec.mu.Unlock()

	if len(times) != 3 {
		t.Fatalf("requests = %d, want 3", len(times))
	}
	// Requests arrive in dispatch order on a single host. Allow a little
	// scheduler slack below the configured delay.
	minGap := delay - 20*time.Millisecond
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < minGap {
			t.Errorf("gap %d = %v, want >= %v", i, gap, minGap)
		}
	}
}

func TestCoordinatorProgressEvents(t *testing.T) {
	t.Parallel()

	srv, _ := newSite(t, map[string]string{
		"/":      `<a href="/about">about</a>`,
		"/about": `<p>hello@corp.io</p>`,
	})

	var mu sync.Mutex
	var events []ProgressEvent
	c := newTestCoordinator(srv,
		WithMaxDepth(1),
		WithProgress(func(ev ProgressEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}),
	)
	if _, err := c.Run(t.Context(), srv.URL); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	last := events[len(events)-1]
	if last.PagesVisited != 2 {
		t.Errorf("last event PagesVisited = %d, want 2", last.PagesVisited)
	}
	if last.Emails != 1 {
		t.Errorf("last event Emails = %d, want 1", last.Emails)
	}
}

func TestCoordinatorHonorsRobotsDisallow(t *testing.T) {
	t.Parallel()

	srv, rec := newSite(t, map[string]string{
		"/robots.txt":   "User-agent: *\nDisallow: /private/\n",
		"/":             `<a href="/private/area">hidden</a><a href="/open">open</a>`,
		"/private/area": `<p>secret@corp.io</p>`,
		"/open":         `<p>ok@corp.io</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(1))
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPaths := []string{"/", "/open", "/robots.txt"}
	if got := rec.sortedPaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("fetched paths = %v, want %v", got, wantPaths)
	}
	// The robots.txt fetch itself is bookkeeping, not a visited page, and a
	// skipped task is not a failure.
	if result.PagesVisited != 2 {
		t.Errorf("PagesVisited = %d, want 2", result.PagesVisited)
	}
	if result.PagesFailed != 0 {
		t.Errorf("PagesFailed = %d, want 0", result.PagesFailed)
	}
	if got := result.Extraction.EmailList(); !reflect.DeepEqual(got, []string{"ok@corp.io"}) {
		t.Errorf("emails = %v, want only the allowed page's", got)
	}
}

func TestCoordinatorIgnoresRobotsWhenDisabled(t *testing.T) {
	t.Parallel()

	srv, rec := newSite(t, map[string]string{
		"/robots.txt":   "User-agent: *\nDisallow: /private/\n",
		"/":             `<a href="/private/area">hidden</a>`,
		"/private/area": `<p>secret@corp.io</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(1), WithRespectRobots(false))
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPaths := []string{"/", "/private/area"}
	if got := rec.sortedPaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("fetched paths = %v, want %v (no robots.txt fetch)", got, wantPaths)
	}
	if got := result.Extraction.EmailList(); !reflect.DeepEqual(got, []string{"secret@corp.io"}) {
		t.Errorf("emails = %v", got)
	}
}

func TestCoordinatorRobotsCrawlDelayRaisesSpacing(t *testing.T) {
	t.Parallel()

	const delay = 120 * time.Millisecond

	srv, rec := newSite(t, map[string]string{
		"/robots.txt": "User-agent: *\nCrawl-delay: 0.12\n",
		"/":           `<a href="/p1">1</a><a href="/p2">2</a>`,
		"/p1":         `<p>1</p>`,
		"/p2":         `<p>2</p>`,
	})

	c := newTestCoordinator(srv, WithMaxDepth(1))
	if _, err := c.Run(t.Context(), srv.URL); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec.mu.Lock()
	times := append([]time.Time(nil), rec.times...)
	rec.mu.Unlock()

	// robots.txt, seed, then two pages.
	if len(times) != 4 {
		t.Fatalf("requests = %d, want 4", len(times))
	}
	// The crawl-delay takes effect after the seed fetch, so the page fetches
	// must be spaced even though the configured host delay is zero.
	minGap := delay - 20*time.Millisecond
	for i := 2; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < minGap {
			t.Errorf("gap %d = %v, want >= %v", i, gap, minGap)
		}
	}
}

func TestCoordinatorAppliesIgnorePatterns(t *testing.T) {
	t.Parallel()

	srv, rec := newSite(t, map[string]string{
		"/":            `<a href="/admin/panel">admin</a><a href="/about">about</a>`,
		"/admin/panel": `<p>root@corp.io</p>`,
		"/about":       `<p>info@corp.io</p>`,
	})

	c := newTestCoordinator(srv,
		WithMaxDepth(1),
		WithIgnorePatterns([]string{"/admin/*"}),
	)
	result, err := c.Run(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPaths := []string{"/", "/about"}
	if got := rec.sortedPaths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("fetched paths = %v, want %v", got, wantPaths)
	}
	if got := result.Extraction.EmailList(); !reflect.DeepEqual(got, []string{"info@corp.io"}) {
		t.Errorf("emails = %v", got)
	}
}

func TestCoordinatorRejectsInvalidSeed(t *testing.T) {
	t.Parallel()

	c := New(fetcher.New(nil), extract.New(), WithLogger(quietLogger()))
	if _, err := c.Run(t.Context(), "ftp://example.com/file"); !errors.Is(err, frontier.ErrInvalidURL) {
		t.Errorf("Run() error = %v, want ErrInvalidURL", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %q, want idle after rejected seed", c.State())
	}
}

func TestCoordinatorIsSingleUse(t *testing.T) {
	t.Parallel()

	srv, _ := newSite(t, map[string]string{"/": `<p>once</p>`})

	c := newTestCoordinator(srv, WithMaxDepth(0))
	if _, err := c.Run(t.Context(), srv.URL); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := c.Run(t.Context(), srv.URL); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() error = %v, want ErrAlreadyStarted", err)
	}
}

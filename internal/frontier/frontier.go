package frontier

import (
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gianlucabassani/browsint/internal/model"
)

// excludedExtensions are path extensions that are heuristically non-HTML.
// URLs ending in one of these never enter the queue; fetching them would
// waste the page budget on content the extractor cannot use.
var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".svg": true, ".ico": true, ".css": true, ".js": true, ".json": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".webm": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// Frontier is a bounded, deduplicated work queue of (URL, depth) pairs for
// one crawl run. It owns the run's visited set and pending queue exclusively;
// runs never share frontiers.
type Frontier struct {
	mu sync.Mutex

	// visited holds every normalized URL ever accepted. It only grows.
	// A URL is marked visited at enqueue time, not at dispatch time, so the
	// check-and-insert stays atomic under the single mutex.
	visited map[string]struct{}

	// pending is the queue in discovery order.
	pending []model.CrawlTask

	originHost     string
	maxDepth       int
	sameDomainOnly bool
	ignorePatterns []string
	followPatterns []string
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithMaxDepth sets the maximum accepted depth. Tasks deeper than this are
// rejected. 0 means only the seed is accepted.
func WithMaxDepth(depth int) Option {
	return func(f *Frontier) {
		f.maxDepth = depth
	}
}

// WithSameDomainOnly restricts the frontier to URLs on the origin host.
func WithSameDomainOnly(on bool) Option {
	return func(f *Frontier) {
		f.sameDomainOnly = on
	}
}

// WithIgnorePatterns sets URL path patterns to skip. Patterns use glob
// syntax matched against the normalized path (e.g. "/admin/*", "*.pdf").
func WithIgnorePatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow. When non-empty, only
// paths matching at least one pattern are accepted; the seed is exempt.
func WithFollowPatterns(patterns []string) Option {
	return func(f *Frontier) {
		f.followPatterns = patterns
	}
}

// New creates a frontier for a run anchored at originHost.
func New(originHost string, opts ...Option) *Frontier {
	f := &Frontier{
		visited:        make(map[string]struct{}),
		originHost:     strings.ToLower(originHost),
		maxDepth:       0,
		sameDomainOnly: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enqueue offers a URL at the given depth. It returns true when the task was
// accepted and appended to the pending queue, false when it was filtered out.
// Rejection is not an error: visited URLs, cross-host URLs (when the
// same-domain filter is on), over-depth URLs, and non-HTML extensions are
// all silently dropped.
func (f *Frontier) Enqueue(rawURL string, depth int) bool {
	if depth > f.maxDepth {
		return false
	}

	norm, err := Normalize(rawURL)
	if err != nil {
		return false
	}

	if f.sameDomainOnly && Host(norm) != f.originHost {
		return false
	}

	if ext := strings.ToLower(path.Ext(pathOf(norm))); ext != "" && excludedExtensions[ext] {
		return false
	}

	// Pattern filters apply to discovered links only: the seed is the
	// operator's explicit choice.
	if depth > 0 && !f.pathAllowed(pathOf(norm)) {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, seen := f.visited[norm]; seen {
		return false
	}
	f.visited[norm] = struct{}{}
	f.pending = append(f.pending, model.CrawlTask{
		URL:        rawURL,
		Depth:      depth,
		OriginHost: f.originHost,
	})
	return true
}

// Next removes and returns the head of the pending queue. The second return
// is false when the queue is empty.
func (f *Frontier) Next() (model.CrawlTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return model.CrawlTask{}, false
	}
	task := f.pending[0]
	f.pending = f.pending[1:]
	return task, true
}

// NextBatch removes up to n tasks from the head of the queue.
func (f *Frontier) NextBatch(n int) []model.CrawlTask {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n > len(f.pending) {
		n = len(f.pending)
	}
	if n <= 0 {
		return nil
	}
	batch := make([]model.CrawlTask, n)
	copy(batch, f.pending[:n])
	f.pending = f.pending[n:]
	return batch
}

// PendingLen returns the number of queued tasks.
func (f *Frontier) PendingLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// VisitedCount returns the number of unique normalized URLs ever accepted.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// pathAllowed applies the ignore/follow pattern filters to a path.
//
// Logic:
//  1. A path matching any ignore pattern is rejected
//  2. When follow patterns are set, a path must match at least one
//  3. Otherwise the path is accepted
func (f *Frontier) pathAllowed(p string) bool {
	for _, pattern := range f.ignorePatterns {
		if matchPattern(pattern, p) {
			return false
		}
	}
	if len(f.followPatterns) > 0 {
		for _, pattern := range f.followPatterns {
			if matchPattern(pattern, p) {
				return true
			}
		}
		return false
	}
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, p string) bool {
	// "/admin/*" style prefixes match the directory and everything under it.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}

	// "*.pdf" style extension patterns match anywhere in the tree.
	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(p, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, p)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// A slash-free wildcard pattern also tries the final path element, so
	// "*.pdf" and "draft-*" work on nested paths.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(p)); err == nil && matched {
			return true
		}
	}
	return false
}

// pathOf returns the path component of a normalized URL.
func pathOf(norm string) string {
	i := strings.Index(norm, "://")
	if i < 0 {
		return norm
	}
	rest := norm[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return rest[j:]
	}
	return "/"
}

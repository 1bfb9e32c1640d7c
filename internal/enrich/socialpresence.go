package enrich

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gianlucabassani/browsint/internal/model"
)

// socialProbeConcurrency bounds how many platforms are probed at once.
const socialProbeConcurrency = 4

// defaultPlatforms maps platform name to its profile URL template. A probe
// returning 200 means the username exists there; 404 means it does not.
var defaultPlatforms = map[string]string{
	"github":    "https://github.com/%s",
	"gitlab":    "https://gitlab.com/%s",
	"reddit":    "https://www.reddit.com/user/%s",
	"twitter":   "https://x.com/%s",
	"instagram": "https://www.instagram.com/%s/",
	"tiktok":    "https://www.tiktok.com/@%s",
	"telegram":  "https://t.me/%s",
	"medium":    "https://medium.com/@%s",
	"keybase":   "https://keybase.io/%s",
}

// PlatformHit is one platform where the username resolved to a profile.
type PlatformHit struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SocialPresenceResult lists where a username exists. Checked counts the
// platforms that answered conclusively (200 or 404); ambiguous answers are
// excluded from both sides.
type SocialPresenceResult struct {
	Found   []PlatformHit `json:"found"`
	Checked int           `json:"checked"`
}

// SocialPresenceAdapter probes per-platform profile URLs for a username.
// Keyless; a probe is a plain GET with no authentication.
type SocialPresenceAdapter struct {
	client    *http.Client
	platforms map[string]string
}

// SocialPresenceOption configures a SocialPresenceAdapter.
type SocialPresenceOption func(*SocialPresenceAdapter)

// WithPlatforms replaces the platform template table. Each value must
// contain one %s for the username.
func WithPlatforms(platforms map[string]string) SocialPresenceOption {
	return func(a *SocialPresenceAdapter) {
		a.platforms = platforms
	}
}

// NewSocialPresenceAdapter creates the adapter.
func NewSocialPresenceAdapter(client *http.Client, opts ...SocialPresenceOption) *SocialPresenceAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	a := &SocialPresenceAdapter{
		client:    client,
		platforms: defaultPlatforms,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *SocialPresenceAdapter) Name() string { return "socialpresence" }

// Accepts implements Adapter.
func (a *SocialPresenceAdapter) Accepts(t model.TargetType) bool {
	return t == model.TargetUsername
}

// Enabled implements Adapter.
func (a *SocialPresenceAdapter) Enabled() bool { return true }

// Query probes every platform concurrently. Individual probe failures are
// skipped, not fatal: one unreachable platform must not hide the others.
func (a *SocialPresenceAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	var mu sync.Mutex
	result := &SocialPresenceResult{Found: []PlatformHit{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(socialProbeConcurrency)
	for platform, template := range a.platforms {
		profileURL := fmt.Sprintf(template, q.Value)
		g.Go(func() error {
			status, err := a.probe(gctx, profileURL)
			if err != nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case status == http.StatusOK:
				result.Checked++
				result.Found = append(result.Found, PlatformHit{Platform: platform, URL: profileURL})
			case status == http.StatusNotFound:
				result.Checked++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sort.Slice(result.Found, func(i, j int) bool {
		return result.Found[i].Platform < result.Found[j].Platform
	})
	return result, nil
}

// probe fetches a profile URL and returns its status code. The body is
// discarded; only existence matters.
func (a *SocialPresenceAdapter) probe(ctx context.Context, profileURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Browsint/1.0 (+https://github.com/gianlucabassani/browsint)")

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

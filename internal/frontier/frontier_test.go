package frontier

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "lowercases host", in: "https://Example.COM/About", want: "https://example.com/About"},
		{name: "strips fragment", in: "https://example.com/page#section", want: "https://example.com/page"},
		{name: "strips query", in: "https://example.com/page?id=1", want: "https://example.com/page"},
		{name: "strips default http port", in: "http://example.com:80/x", want: "http://example.com/x"},
		{name: "strips default https port", in: "https://example.com:443/x", want: "https://example.com/x"},
		{name: "keeps non-default port", in: "http://example.com:8080/x", want: "http://example.com:8080/x"},
		{name: "collapses trailing slash", in: "https://example.com/about/", want: "https://example.com/about"},
		{name: "keeps root slash", in: "https://example.com/", want: "https://example.com/"},
		{name: "adds root slash", in: "https://example.com", want: "https://example.com/"},
		{name: "rejects relative", in: "/about", wantErr: true},
		{name: "rejects non-http scheme", in: "ftp://example.com/file", wantErr: true},
		{name: "rejects empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFrontierDeduplicates(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(3))

	if !f.Enqueue("https://example.com/page", 0) {
		t.Fatal("first enqueue should be accepted")
	}
	// Same page under different spellings must all be rejected.
	for _, dup := range []string{
		"https://example.com/page",
		"https://EXAMPLE.com/page",
		"https://example.com/page/",
		"https://example.com/page#top",
		"https://example.com/page?utm=1",
		"https://example.com:443/page",
	} {
		if f.Enqueue(dup, 1) {
			t.Errorf("duplicate %q was accepted", dup)
		}
	}

	if got := f.PendingLen(); got != 1 {
		t.Fatalf("pending length = %d, want 1", got)
	}

	// Next never returns the same normalized URL twice within one run.
	seen := make(map[string]bool)
	for {
		task, ok := f.Next()
		if !ok {
			break
		}
		norm, err := Normalize(task.URL)
		if err != nil {
			t.Fatalf("queued URL failed to normalize: %v", err)
		}
		if seen[norm] {
			t.Fatalf("Next returned %q twice", norm)
		}
		seen[norm] = true
	}
}

func TestFrontierDepthLimit(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(1))

	if !f.Enqueue("https://example.com/", 0) {
		t.Fatal("seed should be accepted")
	}
	if !f.Enqueue("https://example.com/a", 1) {
		t.Fatal("depth 1 should be accepted")
	}
	if f.Enqueue("https://example.com/b", 2) {
		t.Error("depth 2 should be rejected with maxDepth=1")
	}
}

func TestFrontierSameDomainFilter(t *testing.T) {
	t.Parallel()

	t.Run("enabled rejects other hosts", func(t *testing.T) {
		t.Parallel()

		f := New("example.com", WithMaxDepth(2), WithSameDomainOnly(true))
		if f.Enqueue("https://external.com/page", 1) {
			t.Error("cross-host URL accepted with same-domain filter on")
		}
		if !f.Enqueue("https://example.com/page", 1) {
			t.Error("same-host URL rejected")
		}
	})

	t.Run("disabled accepts other hosts", func(t *testing.T) {
		t.Parallel()

		f := New("example.com", WithMaxDepth(2), WithSameDomainOnly(false))
		if !f.Enqueue("https://external.com/page", 1) {
			t.Error("cross-host URL rejected with same-domain filter off")
		}
	})
}

func TestFrontierRejectsNonHTMLExtensions(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(2))

	for _, u := range []string{
		"https://example.com/logo.png",
		"https://example.com/doc.pdf",
		"https://example.com/app.js",
		"https://example.com/style.css",
	} {
		if f.Enqueue(u, 1) {
			t.Errorf("non-HTML URL %q was accepted", u)
		}
	}
	if !f.Enqueue("https://example.com/about.html", 1) {
		t.Error(".html URL was rejected")
	}
	if !f.Enqueue("https://example.com/about", 1) {
		t.Error("extensionless URL was rejected")
	}
}

func TestFrontierDiscoveryOrder(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(2))
	urls := []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}
	for i, u := range urls {
		depth := 0
		if i > 0 {
			depth = 1
		}
		if !f.Enqueue(u, depth) {
			t.Fatalf("enqueue %q rejected", u)
		}
	}

	for _, want := range urls {
		task, ok := f.Next()
		if !ok {
			t.Fatal("queue drained early")
		}
		if task.URL != want {
			t.Errorf("Next returned %q, want %q (breadth-first order)", task.URL, want)
		}
	}
}

// TestFrontierSeedScenario covers the end-to-end filtering case:
// processing the seed of a same-domain depth-1 crawl whose page links to
// /about (same host) and an external host leaves exactly one pending task.
func TestFrontierSeedScenario(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(1), WithSameDomainOnly(true))

	if !f.Enqueue("https://example.com", 0) {
		t.Fatal("seed rejected")
	}
	seed, ok := f.Next()
	if !ok {
		t.Fatal("seed not dequeued")
	}
	if seed.Depth != 0 {
		t.Fatalf("seed depth = %d, want 0", seed.Depth)
	}

	// Links discovered on the seed page.
	f.Enqueue("https://example.com/about", seed.Depth+1)
	f.Enqueue("https://external.com", seed.Depth+1)

	if got := f.PendingLen(); got != 1 {
		t.Fatalf("pending = %d, want exactly 1 (/about)", got)
	}
	task, _ := f.Next()
	if task.URL != "https://example.com/about" {
		t.Errorf("pending task = %q, want /about", task.URL)
	}
}

func TestFrontierIgnorePatterns(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(2),
		WithIgnorePatterns([]string{"/admin/*", "*.xml"}),
	)

	if f.Enqueue("https://example.com/admin/users", 1) {
		t.Error("/admin/users accepted despite ignore pattern /admin/*")
	}
	if f.Enqueue("https://example.com/feeds/atom.xml", 1) {
		t.Error("atom.xml accepted despite ignore pattern *.xml")
	}
	if !f.Enqueue("https://example.com/administrator", 1) {
		t.Error("/administrator rejected: /admin/* must not match it")
	}
	if !f.Enqueue("https://example.com/about", 1) {
		t.Error("/about rejected with no matching ignore pattern")
	}
}

func TestFrontierFollowPatterns(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(2),
		WithFollowPatterns([]string{"/blog/*", "/docs/*"}),
	)

	if !f.Enqueue("https://example.com/blog/post-1", 1) {
		t.Error("/blog/post-1 rejected despite matching a follow pattern")
	}
	if !f.Enqueue("https://example.com/docs", 1) {
		t.Error("/docs rejected: a /docs/* pattern also matches the directory itself")
	}
	if f.Enqueue("https://example.com/shop/item", 1) {
		t.Error("/shop/item accepted without matching any follow pattern")
	}
}

func TestFrontierIgnoreWinsOverFollow(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(2),
		WithIgnorePatterns([]string{"/blog/drafts/*"}),
		WithFollowPatterns([]string{"/blog/*"}),
	)

	if !f.Enqueue("https://example.com/blog/post", 1) {
		t.Error("/blog/post rejected despite matching the follow pattern")
	}
	if f.Enqueue("https://example.com/blog/drafts/wip", 1) {
		t.Error("/blog/drafts/wip accepted: ignore patterns are checked first")
	}
}

func TestFrontierSeedExemptFromPatterns(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(1),
		WithIgnorePatterns([]string{"/admin/*"}),
		WithFollowPatterns([]string{"/blog/*"}),
	)

	// The seed is the operator's explicit choice: it enters the queue even
	// when it matches no follow pattern or an ignore pattern.
	if !f.Enqueue("https://example.com/admin/panel", 0) {
		t.Error("seed rejected by pattern filters")
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/admin/*", "/admin/dashboard", true},
		{"/admin/*", "/admin", true},
		{"/admin/*", "/administrator", false},
		{"*.pdf", "/docs/manual.pdf", true},
		{"*.pdf", "/docs/manual.pdfx", false},
		{"/api/v?", "/api/v1", true},
		{"/api/v?", "/api/v10", false},
		{"draft-*", "/posts/draft-2024", true},
		{"draft-*", "/posts/final-2024", false},
		{"/exact", "/exact", true},
		{"/exact", "/exact/sub", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestFrontierNextBatch(t *testing.T) {
	t.Parallel()

	f := New("example.com", WithMaxDepth(1))
	f.Enqueue("https://example.com/", 0)
	f.Enqueue("https://example.com/a", 1)
	f.Enqueue("https://example.com/b", 1)

	batch := f.NextBatch(2)
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	if batch[0].URL != "https://example.com/" {
		t.Errorf("batch head = %q, want seed", batch[0].URL)
	}
	if got := f.PendingLen(); got != 1 {
		t.Errorf("pending after batch = %d, want 1", got)
	}

	rest := f.NextBatch(10)
	if len(rest) != 1 {
		t.Errorf("second batch size = %d, want 1", len(rest))
	}
	if f.NextBatch(1) != nil {
		t.Error("batch from empty queue should be nil")
	}
}

package robots

import (
	"reflect"
	"testing"
	"time"
)

func TestParseKeepsGroupsForAgentAndWildcard(t *testing.T) {
	t.Parallel()

	content := `
# crawler policy
User-agent: googlebot
Disallow: /google-only/

User-agent: *
Disallow: /private/
Allow: /private/docs/

User-agent: browsint
Disallow: /no-osint/
`
	rules := Parse(content, "browsint")

	if got := rules.RuleCount(); got != 3 {
		t.Fatalf("RuleCount() = %d, want 3", got)
	}
	if rules.IsAllowed("/google-only/page") != true {
		t.Error("IsAllowed(/google-only/page) = false, want true: that group is for another agent")
	}
	if rules.IsAllowed("/private/page") != false {
		t.Error("IsAllowed(/private/page) = true, want false")
	}
	if rules.IsAllowed("/no-osint/page") != false {
		t.Error("IsAllowed(/no-osint/page) = true, want false: the browsint group applies")
	}
}

func TestIsAllowedLongestPrefixWins(t *testing.T) {
	t.Parallel()

	rules := Parse(`
User-agent: *
Disallow: /private/
Allow: /private/docs/
`, "browsint")

	tests := []struct {
		path string
		want bool
	}{
		{"/private/secret", false},
		{"/private/docs/readme", true},
		{"/public/page", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := rules.IsAllowed(tt.path); got != tt.want {
			t.Errorf("IsAllowed(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseCrawlDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    time.Duration
	}{
		{
			name:    "whole seconds",
			content: "User-agent: *\nCrawl-delay: 2",
			want:    2 * time.Second,
		},
		{
			name:    "fractional seconds",
			content: "User-agent: *\nCrawl-delay: 0.5",
			want:    500 * time.Millisecond,
		},
		{
			name:    "other agent's delay ignored",
			content: "User-agent: googlebot\nCrawl-delay: 10",
			want:    0,
		},
		{
			name:    "non-numeric ignored",
			content: "User-agent: *\nCrawl-delay: fast",
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Parse(tt.content, "browsint").CrawlDelay(); got != tt.want {
				t.Errorf("CrawlDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSitemapsKeepFullURL(t *testing.T) {
	t.Parallel()

	rules := Parse(`
User-agent: googlebot
Disallow: /x/
Sitemap: https://corp.io/sitemap.xml
Sitemap: https://corp.io/news/sitemap.xml
`, "browsint")

	want := []string{"https://corp.io/sitemap.xml", "https://corp.io/news/sitemap.xml"}
	if got := rules.Sitemaps(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sitemaps() = %v, want %v", got, want)
	}
}

func TestSensitivePathsFlagsInternalSurfaces(t *testing.T) {
	t.Parallel()

	rules := Parse(`
User-agent: *
Disallow: /admin/
Disallow: /backup.zip
Disallow: /blog/
Disallow: /.git/
Allow: /admin/help
`, "browsint")

	want := []string{"/.git/", "/admin/", "/backup.zip"}
	if got := rules.SensitivePaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("SensitivePaths() = %v, want %v", got, want)
	}
}

func TestParseSkipsMalformedAndEmptyLines(t *testing.T) {
	t.Parallel()

	rules := Parse(`
just some text without a directive
User-agent: *
Disallow:
Disallow: /kept/   # trailing comment
nonsense line
`, "browsint")

	if got := rules.RuleCount(); got != 1 {
		t.Fatalf("RuleCount() = %d, want 1", got)
	}
	if rules.IsAllowed("/kept/page") {
		t.Error("IsAllowed(/kept/page) = true, want false")
	}
	if !rules.IsAllowed("/anything-else") {
		t.Error("IsAllowed(/anything-else) = false, want true: an empty disallow adds no rule")
	}
}

func TestParseAgentMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	rules := Parse("User-Agent: Browsint\ndisallow: /hidden/", "browsint")
	if rules.IsAllowed("/hidden/page") {
		t.Error("IsAllowed(/hidden/page) = true, want false")
	}
}

package robots

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Rule is one allow or disallow directive from a robots.txt file.
type Rule struct {
	// Path is the path prefix the rule applies to.
	Path string

	// Allow is true for allow directives, false for disallow.
	Allow bool

	// Sensitive is true when the path matches an internal-surface name.
	Sensitive bool
}

// Rules holds the directives of one robots.txt file that apply to this
// crawler, plus the file's sitemap listing and crawl-delay.
type Rules struct {
	// rules is kept sorted by path length, longest first, so IsAllowed
	// answers with the most specific matching rule.
	rules []Rule

	sitemaps   []string
	crawlDelay time.Duration
}

// sensitivePatterns name internal surfaces operators commonly hide behind a
// disallow: admin consoles, backups, staging copies, VCS and config files.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)admin`),
	regexp.MustCompile(`(?i)backup`),
	regexp.MustCompile(`(?i)staging`),
	regexp.MustCompile(`(?i)\bdev\b`),
	regexp.MustCompile(`(?i)\btest\b`),
	regexp.MustCompile(`(?i)\bbeta\b`),
	regexp.MustCompile(`(?i)login`),
	regexp.MustCompile(`(?i)console`),
	regexp.MustCompile(`(?i)dashboard`),
	regexp.MustCompile(`(?i)private`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)internal`),
	regexp.MustCompile(`(?i)config`),
	regexp.MustCompile(`(?i)setup`),
	regexp.MustCompile(`(?i)install`),
	regexp.MustCompile(`(?i)phpmy`),
	regexp.MustCompile(`(?i)\bsql\b`),
	regexp.MustCompile(`(?i)database`),
	regexp.MustCompile(`(?i)\bdb\b`),
	regexp.MustCompile(`(?i)\btemp\b`),
	regexp.MustCompile(`(?i)\btmp\b`),
	regexp.MustCompile(`(?i)\bold\b`),
	regexp.MustCompile(`(?i)\bbak\b`),
	regexp.MustCompile(`(?i)\.git`),
	regexp.MustCompile(`(?i)\.svn`),
	regexp.MustCompile(`(?i)\.env`),
	regexp.MustCompile(`(?i)api/v\d+/admin`),
}

// isSensitivePath reports whether a rule path names a known internal surface.
func isSensitivePath(path string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// Parse reads robots.txt content, keeping the rule groups addressed to the
// given agent or to the wildcard agent. Directive keys are matched
// case-insensitively; rule paths keep their case (robots paths are
// case-sensitive). Malformed lines are skipped, never an error: a broken
// robots.txt must not break the crawl.
func Parse(content, agent string) *Rules {
	r := &Rules{}
	agent = strings.ToLower(agent)

	// applies tracks whether the current user-agent group addresses us.
	// A user-agent line after at least one rule starts a new group.
	applies := false
	sawRule := false

	for _, line := range strings.Split(content, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if sawRule {
				applies = false
				sawRule = false
			}
			name := strings.ToLower(value)
			if name == "*" || name == agent {
				applies = true
			}

		case "allow", "disallow":
			sawRule = true
			// An empty disallow value means "allow everything"; it adds
			// no rule either way.
			if !applies || value == "" {
				continue
			}
			r.rules = append(r.rules, Rule{
				Path:      value,
				Allow:     key == "allow",
				Sensitive: key == "disallow" && isSensitivePath(value),
			})

		case "crawl-delay":
			sawRule = true
			if !applies {
				continue
			}
			if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
				r.crawlDelay = time.Duration(secs * float64(time.Second))
			}

		case "sitemap":
			// Sitemap directives are group-independent.
			r.sitemaps = append(r.sitemaps, value)
		}
	}

	// Most specific rule first, so IsAllowed is one prefix scan.
	sort.SliceStable(r.rules, func(i, j int) bool {
		return len(r.rules[i].Path) > len(r.rules[j].Path)
	})
	return r
}

// IsAllowed reports whether the crawler may fetch the given path. The most
// specific (longest) matching rule wins; a path matching no rule is allowed.
func (r *Rules) IsAllowed(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, rule := range r.rules {
		if strings.HasPrefix(path, rule.Path) {
			return rule.Allow
		}
	}
	return true
}

// CrawlDelay returns the crawl-delay directive, zero when absent.
func (r *Rules) CrawlDelay() time.Duration { return r.crawlDelay }

// Sitemaps returns the sitemap URLs listed in the file.
func (r *Rules) Sitemaps() []string { return r.sitemaps }

// RuleCount returns the number of rules addressed to this crawler.
func (r *Rules) RuleCount() int { return len(r.rules) }

// SensitivePaths returns the disallowed paths flagged as internal surfaces,
// sorted.
func (r *Rules) SensitivePaths() []string {
	var out []string
	for _, rule := range r.rules {
		if rule.Sensitive {
			out = append(out, rule.Path)
		}
	}
	sort.Strings(out)
	return out
}

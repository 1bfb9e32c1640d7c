package config

// SiteConfig holds per-host overrides for crawling a specific site.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers added to every request to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this site.
	// If zero, the global depth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page ceiling for this site.
	// If zero, the global ceiling is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .browsint configuration file.
type File struct {
	// Sites maps hostnames to their overrides (e.g. "corp.io").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to every site unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	// The headers map is always copied: writing a site's headers into the
	// defaults map would leak them into every later lookup.
	result.Headers = make(map[string]string, len(cf.Defaults.Headers))
	for k, v := range cf.Defaults.Headers {
		result.Headers[k] = v
	}

	if site, ok := cf.Sites[host]; ok {
		if site.Cookie != "" {
			result.Cookie = site.Cookie
		}
		if site.Depth != 0 {
			result.Depth = site.Depth
		}
		if site.MaxPages != 0 {
			result.MaxPages = site.MaxPages
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
		if len(site.IgnorePatterns) > 0 {
			result.IgnorePatterns = site.IgnorePatterns
		}
		if len(site.FollowPatterns) > 0 {
			result.FollowPatterns = site.FollowPatterns
		}
	}

	return result
}

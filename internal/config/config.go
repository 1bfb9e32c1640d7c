package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/gianlucabassani/browsint/internal/frontier"
	"github.com/gianlucabassani/browsint/internal/model"
)

// Default configuration values. These mirror the tool's conservative
// politeness posture: crawling someone's site is a guest activity.
const (
	// DefaultTimeout bounds each HTTP request, redirects included. 30
	// seconds is generous for a clearnet page while keeping a stuck host
	// from stalling a worker for long.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth is the link distance from the seed. Two levels
	// reach contact and about pages on most sites without wandering into
	// archives.
	DefaultCrawlDepth = 2

	// DefaultMaxPages is the page ceiling per run. It prevents runaway
	// crawling on large or infinitely-generating sites.
	DefaultMaxPages = 100

	// DefaultWorkers is the number of concurrent fetches. Four keeps a run
	// quick without looking like a flood in the target's logs.
	DefaultWorkers = 4

	// DefaultCrawlDelay is the minimum spacing between requests to one
	// host, measured from the completion of the previous request.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultMaxBodySize limits the response body size to read. 5MB is
	// ample for HTML while preventing memory exhaustion from unexpected
	// payloads.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultProfileDeadline bounds one enrichment profile across all
	// adapters.
	DefaultProfileDeadline = 60 * time.Second

	// DefaultUserAgent identifies browsint in HTTP requests. A descriptive
	// User-Agent lets site operators identify the traffic in their logs.
	DefaultUserAgent = "Browsint/1.0 (+https://github.com/gianlucabassani/browsint)"

	// AppName is the application name used for XDG directory paths.
	AppName = "browsint"
)

// Config holds the runtime options for browsint. It is populated from CLI
// flags and passed through the application by dependency injection, never
// global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, EnrichConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// SeedURL is the URL a crawl run starts from.
	SeedURL string

	// CrawlDepth is the maximum link distance from the seed.
	// Depth 0 means only the seed page.
	CrawlDepth int

	// MaxPages is the page ceiling per run.
	MaxPages int

	// Workers is the number of concurrent fetches.
	Workers int

	// CrawlDelay is the per-host politeness delay.
	CrawlDelay time.Duration

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxBodySize is the response body byte cap. Larger bodies are
	// truncated, not failed.
	MaxBodySize int64

	// SameDomainOnly restricts the crawl to the seed's host.
	SameDomainOnly bool

	// RespectRobots fetches the seed host's robots.txt and honors its
	// disallow rules and crawl-delay.
	RespectRobots bool

	// Kinds are the enabled extraction kinds. Empty means all.
	Kinds []string

	// ProfileDeadline bounds one enrichment profile across all adapters.
	ProfileDeadline time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// DBPath is the SQLite database file. When set, run results and
	// profiles are persisted there. When empty, nothing is saved.
	DBPath string

	// EnvFile is the dotenv file holding API keys. Empty means the
	// process environment only.
	EnvFile string

	// ConfigFilePath is the per-site override file. If empty, the tool
	// searches for .browsint in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// Verbose enables slog.LevelDebug output.
	Verbose bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. It also documents what the defaults
// are in one place.
func NewConfig() *Config {
	return &Config{
		CrawlDepth:      DefaultCrawlDepth,
		MaxPages:        DefaultMaxPages,
		Workers:         DefaultWorkers,
		CrawlDelay:      DefaultCrawlDelay,
		Timeout:         DefaultTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		SameDomainOnly:  true,
		RespectRobots:   true,
		ProfileDeadline: DefaultProfileDeadline,
		UserAgent:       DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for browsint.
// On Linux: ~/.local/share/browsint
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for browsint.
// On Linux: ~/.config/browsint
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDBPath returns the default SQLite database location inside the
// XDG data directory.
func DefaultDBPath() string {
	return filepath.Join(XDGDataDir(), "browsint.db")
}

// ValidateCrawl checks the configuration for a crawl run. It returns the
// first error found: fixing one error often makes the others irrelevant.
// Called once after flag parsing, before any work starts.
func (c *Config) ValidateCrawl() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}
	if _, err := frontier.Normalize(c.SeedURL); err != nil {
		return ErrInvalidSeed
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	for _, k := range c.Kinds {
		if !validKind(k) {
			return ErrUnknownKind
		}
	}
	return nil
}

// ExtractionKinds maps the configured kind names onto model kinds. Empty
// config means every kind.
func (c *Config) ExtractionKinds() []model.ExtractionKind {
	if len(c.Kinds) == 0 {
		return model.AllKinds()
	}
	kinds := make([]model.ExtractionKind, 0, len(c.Kinds))
	for _, k := range c.Kinds {
		kinds = append(kinds, model.ExtractionKind(k))
	}
	return kinds
}

func validKind(name string) bool {
	for _, k := range model.AllKinds() {
		if string(k) == name {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gianlucabassani/browsint/internal/config"
	"github.com/gianlucabassani/browsint/internal/crawl"
	"github.com/gianlucabassani/browsint/internal/database"
	"github.com/gianlucabassani/browsint/internal/extract"
	"github.com/gianlucabassani/browsint/internal/fetcher"
	"github.com/gianlucabassani/browsint/internal/frontier"
	"github.com/gianlucabassani/browsint/internal/log"
	"github.com/gianlucabassani/browsint/internal/model"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [flags] <seed-url>",
		Short: "Crawl a website and extract OSINT artifacts",
		Long: `Crawl a website starting from the seed URL, following links up to the
configured depth, and extract emails, phone numbers, social links, page
metadata, forms, and technology fingerprints from every page visited.

The crawl stays on the seed's host unless --same-domain=false, spaces
requests to each host by --delay, and stops at --max-pages. The seed
host's robots.txt is honored unless --ignore-robots is set. Interrupting
with Ctrl-C stops the crawl cleanly and reports the partial result.`,
		Example: `  browsint crawl https://example.com
  browsint crawl -d 1 -p 20 --kinds emails,social https://example.com
  browsint crawl --db ./results.db --json https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth, "Maximum link distance from the seed (0 = seed only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum number of pages to fetch")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers, "Number of concurrent fetches")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Minimum spacing between requests to one host")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout per HTTP request")
	cmd.Flags().Int64("max-body", config.DefaultMaxBodySize, "Maximum response body size in bytes")
	cmd.Flags().Bool("same-domain", true, "Restrict the crawl to the seed's host")
	cmd.Flags().Bool("ignore-robots", false, "Skip the seed host's robots.txt instead of honoring it")
	cmd.Flags().StringSlice("kinds", nil, "Extraction kinds to enable (emails,phones,social,metadata,forms,technologies); empty enables all")
	cmd.Flags().String("db", "", "SQLite database file to persist the run result (empty = no persistence)")
	cmd.Flags().StringP("config", "c", "", "Per-site configuration file (default: .browsint in cwd or home)")
	cmd.Flags().BoolP("json", "j", false, "Print the full run result as JSON instead of a summary")

	return cmd
}

// runCrawlCmd is the entry point for the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCrawl(); err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	return runCrawl(cmd.Context(), cfg, logger, cmd.OutOrStdout(), jsonOut)
}

// buildCrawlConfig creates a Config from command line flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]

	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, fmt.Errorf("failed to get depth flag: %w", err)
	}
	cfg.CrawlDepth = depth

	maxPages, err := cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-pages flag: %w", err)
	}
	cfg.MaxPages = maxPages

	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, fmt.Errorf("failed to get workers flag: %w", err)
	}
	cfg.Workers = workers

	delay, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, fmt.Errorf("failed to get delay flag: %w", err)
	}
	cfg.CrawlDelay = delay

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	cfg.Timeout = timeout

	maxBody, err := cmd.Flags().GetInt64("max-body")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-body flag: %w", err)
	}
	cfg.MaxBodySize = maxBody

	sameDomain, err := cmd.Flags().GetBool("same-domain")
	if err != nil {
		return nil, fmt.Errorf("failed to get same-domain flag: %w", err)
	}
	cfg.SameDomainOnly = sameDomain

	ignoreRobots, err := cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, fmt.Errorf("failed to get ignore-robots flag: %w", err)
	}
	cfg.RespectRobots = !ignoreRobots

	kinds, err := cmd.Flags().GetStringSlice("kinds")
	if err != nil {
		return nil, fmt.Errorf("failed to get kinds flag: %w", err)
	}
	cfg.Kinds = kinds

	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, fmt.Errorf("failed to get db flag: %w", err)
	}
	cfg.DBPath = dbPath

	explicitConfigPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// A config file found by search is optional; one named explicitly must
	// exist.
	configPath := config.FindConfigFile(explicitConfigPath)
	if configPath != "" {
		siteConfigs, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = siteConfigs
		cfg.ConfigFilePath = configPath
	} else if explicitConfigPath != "" {
		return nil, fmt.Errorf("config file not found: %s", explicitConfigPath)
	}

	return cfg, nil
}

// runCrawl wires the fetcher, extractor, and coordinator together and
// executes one run.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, w io.Writer, jsonOut bool) error {
	// Per-site overrides apply before anything is built from the config.
	headers := make(map[string]string)
	var ignorePatterns, followPatterns []string
	if cfg.SiteConfigs != nil {
		norm, err := frontier.Normalize(cfg.SeedURL)
		if err != nil {
			return err
		}
		site := cfg.SiteConfigs.GetSiteConfig(frontier.Host(norm))
		if site.Depth != 0 {
			cfg.CrawlDepth = site.Depth
		}
		if site.MaxPages != 0 {
			cfg.MaxPages = site.MaxPages
		}
		for k, v := range site.Headers {
			headers[k] = v
		}
		if site.Cookie != "" {
			headers["Cookie"] = site.Cookie
		}
		ignorePatterns = site.IgnorePatterns
		followPatterns = site.FollowPatterns
	}

	f := fetcher.New(&http.Client{},
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBytes(cfg.MaxBodySize),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithExtraHeaders(headers),
	)
	ex := extract.New(cfg.ExtractionKinds()...)

	coordinator := crawl.New(f, ex,
		crawl.WithWorkers(cfg.Workers),
		crawl.WithMaxPages(cfg.MaxPages),
		crawl.WithMaxDepth(cfg.CrawlDepth),
		crawl.WithSameDomainOnly(cfg.SameDomainOnly),
		crawl.WithRespectRobots(cfg.RespectRobots),
		crawl.WithHostDelay(cfg.CrawlDelay),
		crawl.WithIgnorePatterns(ignorePatterns),
		crawl.WithFollowPatterns(followPatterns),
		crawl.WithLogger(logger),
		crawl.WithProgress(func(ev crawl.ProgressEvent) {
			logger.Info("progress",
				slog.Int("visited", ev.PagesVisited),
				slog.Int("failed", ev.PagesFailed),
				slog.Int("pending", ev.Pending),
				slog.Int("emails", ev.Emails),
				slog.Int("social", ev.SocialLinks),
			)
		}),
	)

	runner := crawl.NewRunner()
	runID := runner.Start(ctx, coordinator, cfg.SeedURL)
	logger.Debug("crawl run registered", slog.String("run_id", runID))

	// Stop the crawl cleanly on Ctrl-C; the partial result is still
	// reported and persisted.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, stopping crawl", slog.String("signal", sig.String()))
			_ = runner.Cancel(runID)
		case <-finished:
		}
	}()

	result, err := runner.Wait(runID)
	if err != nil && !errors.Is(err, crawl.ErrRunAborted) {
		return err
	}
	if err != nil {
		// An aborted run (cancelled, page ceiling) still carries a usable
		// partial result.
		logger.Warn("crawl ended early", slog.String("detail", err.Error()))
	}

	if cfg.DBPath != "" {
		// Persist with a fresh context: the run context may already be
		// cancelled after Ctrl-C.
		if err := saveRunResult(context.Background(), cfg.DBPath, result, logger); err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(w, result)
	}
	printRunSummary(w, result)
	return nil
}

// saveRunResult persists the run result to the SQLite store.
func saveRunResult(ctx context.Context, dbPath string, result *model.CrawlRunResult, logger *slog.Logger) error {
	store, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close() //nolint:errcheck // Best-effort close on a read-through store

	id, err := store.SaveRunResult(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	logger.Info("run result saved", slog.String("db", dbPath), slog.Int64("run_id", id))
	return nil
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRunSummary writes a human-readable run summary.
func printRunSummary(w io.Writer, result *model.CrawlRunResult) {
	duration := result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(w, "Crawl of %s finished: %s\n", result.SeedURL, result.TerminationReason)
	fmt.Fprintf(w, "  pages visited: %d, failed: %d, duration: %s\n",
		result.PagesVisited, result.PagesFailed, duration)

	printList(w, "Emails", result.Extraction.EmailList())
	printList(w, "Phones", result.Extraction.PhoneList())
	printList(w, "Social links", result.Extraction.SocialList())
	printList(w, "Technologies", result.Extraction.TechnologyList())

	if len(result.Extraction.Forms) > 0 {
		fmt.Fprintf(w, "Forms (%d):\n", len(result.Extraction.Forms))
		for _, form := range result.Extraction.Forms {
			fmt.Fprintf(w, "  %s %s (%d fields)\n", form.Method, form.Action, len(form.Fields))
		}
	}
	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "Failures (%d):\n", len(result.Failures))
		for _, failure := range result.Failures {
			fmt.Fprintf(w, "  %s: %s\n", failure.URL, failure.Reason)
		}
	}
}

// printList writes one labeled extraction list, skipping empty ones.
func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", label, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

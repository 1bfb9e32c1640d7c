package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gianlucabassani/browsint/internal/config"
	"github.com/gianlucabassani/browsint/internal/database"
	"github.com/gianlucabassani/browsint/internal/enrich"
	"github.com/gianlucabassani/browsint/internal/log"
	"github.com/gianlucabassani/browsint/internal/model"
)

// Minimum spacing per enrichment service. The breach API enforces roughly
// ten requests a minute on the basic tier; the others get nominal
// politeness spacing.
const (
	whoisInterval   = 1 * time.Second
	dnsInterval     = 200 * time.Millisecond
	hunterInterval  = 600 * time.Millisecond
	hibpInterval    = 1600 * time.Millisecond
	shodanInterval  = 1 * time.Second
	waybackInterval = 1 * time.Second
	socialInterval  = 1 * time.Second
)

// profileHTTPTimeout bounds each enrichment HTTP request. The aggregator
// deadline caps the whole profile separately.
const profileHTTPTimeout = 15 * time.Second

// NewProfileCmd creates the profile command.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [flags] <value>",
		Short: "Build an intelligence profile of a domain, email, or username",
		Long: `Build an intelligence profile of a target by querying every enrichment
source that accepts its type:

  domain    WHOIS, DNS records, exposed hosts, archive snapshots
  email     verification status, breach appearances
  username  presence across social platforms

Keyed services (email verification, breaches, host intelligence) read
their API keys from BROWSINT_HUNTERIO_API_KEY, BROWSINT_HIBP_API_KEY,
and BROWSINT_SHODAN_API_KEY, optionally loaded from a dotenv file.
A missing key marks that field disabled; the rest of the profile is
still built.`,
		Example: `  browsint profile --type domain example.com
  browsint profile --type email alice@example.com --json
  browsint profile --type username octocat --env ./.env`,
		Args: cobra.ExactArgs(1),
		RunE: runProfileCmd,
	}

	cmd.Flags().String("type", string(model.TargetDomain), "Target type: domain, email, or username")
	cmd.Flags().Duration("deadline", config.DefaultProfileDeadline, "Deadline for the whole profile across all sources")
	cmd.Flags().String("db", "", "SQLite database file to persist the profile (empty = no persistence)")
	cmd.Flags().String("env", "", "Dotenv file holding API keys (default: .env if present)")
	cmd.Flags().BoolP("json", "j", false, "Print the full profile as JSON instead of a summary")

	return cmd
}

// runProfileCmd is the entry point for the profile command.
func runProfileCmd(cmd *cobra.Command, args []string) error {
	typeName, err := cmd.Flags().GetString("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	targetType := model.TargetType(typeName)
	if !targetType.Valid() {
		return fmt.Errorf("unknown target type %q (want domain, email, or username)", typeName)
	}

	deadline, err := cmd.Flags().GetDuration("deadline")
	if err != nil {
		return fmt.Errorf("failed to get deadline flag: %w", err)
	}

	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to get db flag: %w", err)
	}

	envFile, err := cmd.Flags().GetString("env")
	if err != nil {
		return fmt.Errorf("failed to get env flag: %w", err)
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, stopping profile", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	keys := config.NewEnvKeyProvider(envFile)
	client := &http.Client{Timeout: profileHTTPTimeout}
	aggregator := enrich.NewAggregator(newAdapterRegistry(client, keys),
		enrich.WithDeadline(deadline),
		enrich.WithAggregatorLogger(logger),
	)

	profile, err := aggregator.Profile(ctx, model.EnrichmentQuery{Type: targetType, Value: args[0]})
	if err != nil {
		return err
	}

	if dbPath != "" {
		// Persist with a fresh context: the profile context may already be
		// cancelled after Ctrl-C.
		if err := saveProfile(context.Background(), dbPath, profile, logger); err != nil {
			return err
		}
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), profile)
	}
	printProfileSummary(cmd.OutOrStdout(), profile)
	return nil
}

// newAdapterRegistry wires every enrichment adapter, each behind its own
// throttle. Keyed adapters report themselves disabled when their key is
// empty; the registry keeps them so the profile can say so.
func newAdapterRegistry(client *http.Client, keys config.KeyProvider) *enrich.Registry {
	return enrich.NewRegistry(
		enrich.Throttle(enrich.NewWhoisAdapter(), whoisInterval),
		enrich.Throttle(enrich.NewDNSAdapter(nil), dnsInterval),
		enrich.Throttle(enrich.NewEmailVerifyAdapter(client, keys.Key(config.ServiceHunterIO)), hunterInterval),
		enrich.Throttle(enrich.NewBreachAdapter(client, keys.Key(config.ServiceHIBP)), hibpInterval),
		enrich.Throttle(enrich.NewReputationAdapter(client, keys.Key(config.ServiceShodan)), shodanInterval),
		enrich.Throttle(enrich.NewWaybackAdapter(client), waybackInterval),
		enrich.Throttle(enrich.NewSocialPresenceAdapter(client), socialInterval),
	)
}

// saveProfile persists the profile to the SQLite store.
func saveProfile(ctx context.Context, dbPath string, profile *model.TargetProfile, logger *slog.Logger) error {
	store, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close() //nolint:errcheck // Best-effort close on a read-through store

	id, err := store.SaveProfile(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	logger.Info("profile saved", slog.String("db", dbPath), slog.Int64("profile_id", id))
	return nil
}

// printProfileSummary writes a human-readable field-per-line summary.
func printProfileSummary(w io.Writer, profile *model.TargetProfile) {
	fmt.Fprintf(w, "Profile of %s (%s)\n", profile.Target, profile.Type)

	names := make([]string, 0, len(profile.Fields))
	for name := range profile.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := profile.Fields[name]
		switch field.Status {
		case model.FieldOK:
			fmt.Fprintf(w, "  %-15s ok (%s)\n", name, field.Elapsed.Round(time.Millisecond))
		case model.FieldDisabled:
			fmt.Fprintf(w, "  %-15s disabled (no API key)\n", name)
		default:
			fmt.Fprintf(w, "  %-15s error: %s\n", name, field.Error)
		}
	}
	fmt.Fprintln(w, "Use --json for the full field data.")
}

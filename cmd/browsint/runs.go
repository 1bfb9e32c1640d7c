package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gianlucabassani/browsint/internal/config"
	"github.com/gianlucabassani/browsint/internal/database"
)

// NewRunsCmd creates the runs command, which lists persisted crawl runs.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved crawl runs",
		Long:  `List the crawl runs saved in the SQLite database, newest first.`,
		Example: `  browsint runs
  browsint runs --db ./results.db -n 5`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().String("db", config.DefaultDBPath(), "SQLite database file")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

// runRunsCmd is the entry point for the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return fmt.Errorf("failed to get db flag: %w", err)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get limit flag: %w", err)
	}

	// Listing never creates a database; a missing file means nothing was
	// ever saved.
	store, err := database.Open(dbPath, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close() //nolint:errcheck // Read-only listing

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "no saved runs")
		return nil
	}

	fmt.Fprintf(w, "%-5s %-40s %-20s %-10s %8s %7s\n",
		"ID", "SEED", "FINISHED", "END", "VISITED", "FAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d %-40s %-20s %-10s %8d %7d\n",
			r.ID,
			r.SeedURL,
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			r.Termination,
			r.PagesVisited,
			r.PagesFailed,
		)
	}
	return nil
}

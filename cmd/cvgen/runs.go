package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mwalther/cvgen/internal/config"
	"github.com/mwalther/cvgen/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent recorded pipeline runs",
	Long: `Lists recent pipeline runs recorded in the PostgreSQL run history,
newest first. Requires a configured database.`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var (
	runsDatabaseURL string
	runsLimit       int
	runsJSON        bool
)

func init() {
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print the runs as JSON instead of text")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return &config.Error{Message: "DATABASE_URL environment variable or --db-url flag is required"}
	}

	st, err := store.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs to JSON: %w", err)
		}
		_, _ = fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(os.Stdout, "No runs recorded")
		return nil
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %-17s  %s", r.CreatedAt.Format(time.RFC3339), r.ID, r.Status, r.Source)
		if r.Anonymous {
			line += "  [anon]"
		}
		if r.ErrorCount > 0 || r.WarningCount > 0 {
			line += fmt.Sprintf("  (%d error(s), %d warning(s))", r.ErrorCount, r.WarningCount)
		}
		if r.PDFPath != "" {
			line += "  -> " + r.PDFPath
		}
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
	return nil
}

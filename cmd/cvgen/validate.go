package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwalther/cvgen/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate <cv.yml> [more.yml...]",
	Short: "Validate CV documents without generating output",
	Long: `Validates each YAML CV document against the schema and prints the report.
No LaTeX or PDF files are produced. Exit code 1 signals validation errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var (
	validateSchema      string
	validateJSON        bool
	validateDatabaseURL string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a YAML schema overriding the built-in one")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the validation report as JSON instead of text")
	validateCmd.Flags().StringVar(&validateDatabaseURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	schemaPath := validateSchema
	if schemaPath == "" {
		schemaPath = os.Getenv("CVGEN_SCHEMA")
	}

	databaseURL := validateDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	opts := pipeline.Options{
		SchemaPath:  schemaPath,
		DryRun:      true,
		JSONReport:  validateJSON,
		DatabaseURL: databaseURL,
	}

	if len(args) == 1 {
		opts.DataPath = args[0]
		_, err := pipeline.Run(ctx, opts)
		return err
	}

	_, err := pipeline.RunBatch(ctx, args, opts)
	return err
}

// Package main implements the cvgen CLI for schema-validated CV generation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwalther/cvgen/internal/config"
	"github.com/mwalther/cvgen/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate <cv.yml> [more.yml...]",
	Short: "Validate a CV document and generate a PDF",
	Long: `Validates each YAML CV document against the schema, renders it through the
LaTeX template, and compiles the result to a PDF. Multiple documents are
processed concurrently, each into its own output files.

Configuration can be loaded from a JSON file using --config. Command-line
flags override config file values. Paths left unset fall back to the
CVGEN_SCHEMA, CVGEN_TEMPLATE and CVGEN_OUT_DIR environment variables.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

var (
	generateConfigPath  string
	generateSchema      string
	generateTemplate    string
	generateOutDir      string
	generateAnonymous   bool
	generateForce       bool
	generateDryRun      bool
	generateTexOnly     bool
	generateKeepAux     bool
	generateJSON        bool
	generateDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	generateCmd.Flags().StringVar(&generateConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	generateCmd.Flags().StringVarP(&generateSchema, "schema", "s", "", "Path to a YAML schema overriding the built-in one")
	generateCmd.Flags().StringVarP(&generateTemplate, "template", "t", "", "Path to a LaTeX template overriding the built-in one")
	generateCmd.Flags().StringVarP(&generateOutDir, "out-dir", "o", "", "Output directory for .tex and .pdf files (default \"build\")")
	generateCmd.Flags().BoolVar(&generateAnonymous, "anon", false, "Hide personal identifying information in the output")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "Render even when validation reports errors")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Validate only; produce no output files")
	generateCmd.Flags().BoolVar(&generateTexOnly, "tex-only", false, "Write the .tex file but skip PDF compilation")
	generateCmd.Flags().BoolVar(&generateKeepAux, "keep-aux", false, "Keep LaTeX auxiliary files after compilation")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the validation report as JSON instead of text")

	// Database URL for run history persistence
	generateCmd.Flags().StringVar(&generateDatabaseURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if generateConfigPath != "" {
		loadedCfg, err := config.LoadConfig(generateConfigPath)
		if err != nil {
			return err
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if rootVerbose {
			_, _ = fmt.Fprintf(os.Stderr, "Loaded config from: %s\n", generateConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("schema") {
		cfg.Schema = generateSchema
	}
	if cmd.Flags().Changed("template") {
		cfg.Template = generateTemplate
	}
	if cmd.Flags().Changed("out-dir") {
		cfg.OutDir = generateOutDir
	}
	if cmd.Flags().Changed("keep-aux") {
		cfg.KeepAux = generateKeepAux
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = generateDatabaseURL
	}

	// Step 3: Fall back to CVGEN_* environment variables for unset paths
	if cfg.Schema == "" {
		cfg.Schema = os.Getenv("CVGEN_SCHEMA")
	}
	if cfg.Template == "" {
		cfg.Template = os.Getenv("CVGEN_TEMPLATE")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = os.Getenv("CVGEN_OUT_DIR")
	}

	// Step 4: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Config{})

	// Step 5: Database URL falls back to the environment
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	opts := pipeline.Options{
		SchemaPath:   cfg.Schema,
		TemplatePath: cfg.Template,
		OutputDir:    cfg.OutDir,
		Anonymous:    generateAnonymous,
		Force:        generateForce,
		DryRun:       generateDryRun,
		TexOnly:      generateTexOnly,
		KeepAux:      cfg.KeepAux,
		JSONReport:   generateJSON,
		DatabaseURL:  cfg.DatabaseURL,
	}

	if len(args) == 1 {
		opts.DataPath = args[0]
		_, err := pipeline.Run(ctx, opts)
		return err
	}

	_, err := pipeline.RunBatch(ctx, args, opts)
	return err
}

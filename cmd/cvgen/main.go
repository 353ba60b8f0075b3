// Package main provides the entry point for the cvgen CV generator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mwalther/cvgen/internal/observability"
	"github.com/mwalther/cvgen/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "cvgen",
	Short: "Schema-validated CV generator",
	Long:  "cvgen validates a YAML CV document against a schema, renders it through a LaTeX template, and compiles the result to a PDF.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		observability.SetupLogger(rootVerbose)
	},
}

var rootVerbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates configuration problems (missing schema, template, or
// config file) from document failures such as validation errors or a failed
// compile. Scripts depend on the distinction.
func exitCode(err error) int {
	if pipeline.IsConfigError(err) {
		return 2
	}
	return 1
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mwalther/cvgen/internal/anonymize"
	"github.com/mwalther/cvgen/internal/document"
)

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize <cv.yml>",
	Short: "Strip personal identifying information from a CV document",
	Long: `Reads a YAML CV document, removes the personal name and contact details
(address, phone, mobile, email, homepage), and writes the anonymized YAML to
the output file or to stdout. Demographic fields such as date of birth,
nationality, and gender are kept, as are all professional sections.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnonymize,
}

var anonymizeOutput string

func init() {
	anonymizeCmd.Flags().StringVarP(&anonymizeOutput, "out", "o", "", "Path to output YAML file (defaults to stdout)")

	rootCmd.AddCommand(anonymizeCmd)
}

func runAnonymize(_ *cobra.Command, args []string) error {
	doc, err := document.LoadFile(args[0])
	if err != nil {
		return err
	}

	data, err := anonymize.Anonymize(doc).YAML()
	if err != nil {
		return fmt.Errorf("failed to serialize anonymized document: %w", err)
	}

	if anonymizeOutput == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	outputDir := filepath.Dir(anonymizeOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(anonymizeOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Anonymized CV written to: %s\n", anonymizeOutput)
	return nil
}

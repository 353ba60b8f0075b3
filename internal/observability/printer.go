// Package observability provides the human-readable CLI output and the
// structured logger configuration. Validation reports and pipeline status
// always go through the Printer; the logger carries diagnostics only.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwalther/cvgen/internal/validation"
)

const (
	iconError      = "❌"
	iconWarning    = "⚠️"
	iconSuggestion = "💡"
	iconSuccess    = "✅"
	iconAnonymous  = "🔒"
)

// Printer handles user-facing output for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// FormatFinding renders one finding as the CLI shows it: severity icon,
// message, field path, and an indented suggestion line when present.
func FormatFinding(f validation.Finding) string {
	icon := iconError
	if f.Severity == validation.SeverityWarning {
		icon = iconWarning
	}
	line := fmt.Sprintf("%s %s: %s", icon, strings.ToUpper(f.Severity), f.Message)
	if f.Path != "" {
		line = fmt.Sprintf("%s (at %s)", line, f.Path)
	}
	if f.Suggestion != "" {
		line = fmt.Sprintf("%s\n   %s Suggestion: Did you mean '%s'?", line, iconSuggestion, f.Suggestion)
	}
	return line
}

// FormatSummary renders the one-line verdict of a validation pass.
func FormatSummary(r *validation.Report) string {
	if !r.HasErrors() && !r.HasWarnings() {
		return iconSuccess + " CV validation passed successfully!"
	}
	parts := make([]string, 0, 2)
	if n := len(r.Errors()); n > 0 {
		parts = append(parts, fmt.Sprintf("%s %d %s", iconError, n, pluralize("error", n)))
	}
	if n := len(r.Warnings()); n > 0 {
		parts = append(parts, fmt.Sprintf("%s %d %s", iconWarning, n, pluralize("warning", n)))
	}
	return strings.Join(parts, " | ")
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

// PrintReport outputs the summary line followed by ERRORS and WARNINGS
// sections. A clean report prints the summary line only.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReport(r *validation.Report) {
	fmt.Fprintln(p.out, FormatSummary(r))

	if errs := r.Errors(); len(errs) > 0 {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, "ERRORS:")
		for _, f := range errs {
			fmt.Fprintf(p.out, "  %s\n", FormatFinding(f))
		}
	}
	if warns := r.Warnings(); len(warns) > 0 {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, "WARNINGS:")
		for _, f := range warns {
			fmt.Fprintf(p.out, "  %s\n", FormatFinding(f))
		}
	}
}

// PrintReportJSON outputs the machine-readable form of the report.
func (p *Printer) PrintReportJSON(r *validation.Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.out, "%s\n", data)
	return err
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnonymousNotice() {
	fmt.Fprintf(p.out, "%s Generating anonymous CV (personal identifying information will be hidden)\n", iconAnonymous)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDryRun() {
	fmt.Fprintln(p.out, "Dry run: validation only, no output produced")
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWritingTex(path string) {
	fmt.Fprintf(p.out, "Writing LaTeX file: %s\n", path)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCompiling() {
	fmt.Fprintln(p.out, "Compiling to PDF...")
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPDFGenerated(path string) {
	fmt.Fprintf(p.out, "%s Success! PDF generated: %s\n", iconSuccess, path)
}

// PrintCompileFailure reports a failed compiler run together with the
// compiler's diagnostic output, verbatim.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCompileFailure(logOutput string) {
	fmt.Fprintf(p.out, "%s Error: Failed to compile LaTeX to PDF\n", iconError)
	if logOutput != "" {
		fmt.Fprintln(p.out)
		fmt.Fprintln(p.out, logOutput)
	}
}

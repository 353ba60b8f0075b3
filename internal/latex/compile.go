// Package latex invokes the external LaTeX toolchain that turns rendered
// markup into a PDF. Compilation is a black box: the compiler's diagnostic
// output is captured verbatim and never parsed.
package latex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the maximum time to wait for one document to compile.
	DefaultTimeout = 60 * time.Second

	pdflatexBinary = "pdflatex"
	latexmkBinary  = "latexmk"
)

// auxExtensions are the compiler byproducts removed after a successful run.
var auxExtensions = []string{".aux", ".log", ".out", ".fls", ".fdb_latexmk", ".synctex.gz"}

// Compile turns texPath into a PDF in outDir. It tries pdflatex first and
// falls back to latexmk when pdflatex fails or is not installed. The
// returned log is the combined stdout and stderr of every attempt.
//
// A PDF on disk together with a non-nil error means the compiler exited
// non-zero but still produced output; the PDF may be incomplete.
func Compile(ctx context.Context, texPath string, outDir string) (pdfPath string, logOutput string, err error) {
	texPath, err = filepath.Abs(texPath)
	if err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to resolve LaTeX file path: %s", texPath),
			Cause:   err,
		}
	}
	if outDir == "" {
		outDir = filepath.Dir(texPath)
	}
	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to resolve output directory: %s", outDir),
			Cause:   err,
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to create output directory: %s", outDir),
			Cause:   err,
		}
	}

	pdflatexPath, pdflatexErr := exec.LookPath(pdflatexBinary)
	latexmkPath, latexmkErr := exec.LookPath(latexmkBinary)
	if pdflatexErr != nil && latexmkErr != nil {
		return "", "", &CompilationError{
			Message: "neither pdflatex nor latexmk found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   pdflatexErr,
		}
	}

	var log strings.Builder
	var runErr error
	if pdflatexErr == nil {
		runErr = run(ctx, &log, outDir, pdflatexPath,
			"-interaction=nonstopmode", "-output-directory", outDir, texPath)
		if runErr == nil {
			return locatePDF(texPath, outDir, log.String(), nil)
		}
	}
	if latexmkErr == nil {
		if pdflatexErr == nil {
			fmt.Fprintf(&log, "\n--- pdflatex failed (%v), retrying with latexmk ---\n", runErr)
		}
		runErr = run(ctx, &log, outDir, latexmkPath,
			"-pdf", "-interaction=nonstopmode", "-output-directory="+outDir, texPath)
	}
	return locatePDF(texPath, outDir, log.String(), runErr)
}

// run executes one compiler attempt, appending its output to log.
func run(ctx context.Context, log *strings.Builder, workDir string, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir
	cmd.Stdout = log
	cmd.Stderr = log
	return cmd.Run()
}

// locatePDF resolves the expected PDF path and decides the final verdict of
// a compile run.
func locatePDF(texPath string, outDir string, logOutput string, runErr error) (string, string, error) {
	base := strings.TrimSuffix(filepath.Base(texPath), ".tex")
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	if runErr != nil {
		return pdfPath, logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}
	return pdfPath, logOutput, nil
}

// CleanAux removes the auxiliary files pdflatex and latexmk leave next to
// the PDF. base is the output file name without extension. Missing files
// are not an error; the removed paths are returned for logging.
func CleanAux(dir string, base string) []string {
	removed := make([]string, 0, len(auxExtensions))
	for _, ext := range auxExtensions {
		path := filepath.Join(dir, base+ext)
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		}
	}
	return removed
}

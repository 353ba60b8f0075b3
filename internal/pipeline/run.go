// Package pipeline provides the high-level orchestration for CV generation:
// load, validate, report, anonymize, render, compile, record.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mwalther/cvgen/internal/anonymize"
	"github.com/mwalther/cvgen/internal/assets"
	"github.com/mwalther/cvgen/internal/config"
	"github.com/mwalther/cvgen/internal/latex"
	"github.com/mwalther/cvgen/internal/observability"
	"github.com/mwalther/cvgen/internal/render"
	"github.com/mwalther/cvgen/internal/schema"
	"github.com/mwalther/cvgen/internal/store"
	"github.com/mwalther/cvgen/internal/validation"
)

// Options holds configuration for one pipeline run.
type Options struct {
	DataPath     string
	SchemaPath   string // empty: built-in schema
	TemplatePath string // empty: built-in template
	OutputDir    string // empty: config.DefaultOutDir

	Anonymous bool // strip identity fields before rendering
	Force     bool // render despite blocking validation errors
	DryRun    bool // validate and report only
	TexOnly   bool // stop after writing the .tex file
	KeepAux   bool // keep LaTeX auxiliary files after compilation

	JSONReport  bool   // machine-readable report instead of the human one
	DatabaseURL string // optional run-history store
	Out         io.Writer
}

// Result is what one pipeline run produced. Report is always set once
// validation ran; TexPath and PDFPath stay empty for the stages a run never
// reached.
type Result struct {
	RunID    uuid.UUID
	Report   *validation.Report
	Rendered string
	TexPath  string
	PDFPath  string
}

// Run executes the pipeline for a single document.
//
// Configuration failures (schema or template missing/broken) surface as
// *schema.LoadError or *render.TemplateError before the document is touched.
// Blocking findings surface as *ValidationFailedError unless force mode is
// on. Store failures never fail the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)
	// Status lines stay off stdout in JSON mode so the report remains the
	// only machine-readable output.
	status := printer
	if opts.JSONReport {
		status = observability.NewPrinter(io.Discard)
	}
	logger := observability.WithComponent("pipeline")

	// Resolve configuration first: a broken schema or template aborts before
	// any document is processed.
	s, err := loadSchema(opts.SchemaPath)
	if err != nil {
		return nil, err
	}
	templateText, err := loadTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = config.DefaultOutDir
	}

	runID := uuid.New()
	logger.Debug().Str("run_id", runID.String()).Str("data", opts.DataPath).Msg("starting run")

	st := openStore(ctx, logger, opts.DatabaseURL)
	defer st.Close()
	if err := st.CreateRun(ctx, runID, opts.DataPath, opts.Anonymous); err != nil {
		logger.Warn().Err(err).Msg("failed to record run start")
	}

	doc, report, err := validation.ValidateFile(opts.DataPath, s)
	if err != nil {
		return nil, err
	}
	result := &Result{RunID: runID, Report: report}

	if opts.JSONReport {
		if err := printer.PrintReportJSON(report); err != nil {
			return result, err
		}
	} else {
		printer.PrintReport(report)
	}
	if err := st.SaveReport(ctx, runID, report); err != nil {
		logger.Warn().Err(err).Msg("failed to save report")
	}

	// doc stays nil when the file could not be read or parsed; force mode
	// cannot render what never parsed.
	if report.HasErrors() && (!opts.Force || doc == nil) {
		finishRun(ctx, logger, st, runID, store.StatusValidationFailed, report, "")
		return result, &ValidationFailedError{Report: report}
	}

	if opts.DryRun {
		status.PrintDryRun()
		finishRun(ctx, logger, st, runID, store.StatusSucceeded, report, "")
		return result, nil
	}

	renderDoc := doc
	suffix := ""
	if opts.Anonymous {
		status.PrintAnonymousNotice()
		renderDoc = anonymize.Anonymize(doc)
		suffix = "_anon"
	}

	rendered, err := render.Render(render.Context{Doc: renderDoc, Anonymous: opts.Anonymous}, templateText)
	if err != nil {
		finishRun(ctx, logger, st, runID, store.StatusFailed, report, "")
		return result, err
	}
	result.Rendered = rendered

	base := outputBase(opts.DataPath) + suffix
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		finishRun(ctx, logger, st, runID, store.StatusFailed, report, "")
		return result, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	texPath := filepath.Join(outDir, base+".tex")
	status.PrintWritingTex(texPath)
	if err := os.WriteFile(texPath, []byte(rendered), 0o644); err != nil {
		finishRun(ctx, logger, st, runID, store.StatusFailed, report, "")
		return result, fmt.Errorf("failed to write LaTeX file %s: %w", texPath, err)
	}
	result.TexPath = texPath

	if opts.TexOnly {
		finishRun(ctx, logger, st, runID, store.StatusSucceeded, report, "")
		return result, nil
	}

	status.PrintCompiling()
	compileCtx, cancel := context.WithTimeout(ctx, latex.DefaultTimeout)
	defer cancel()
	pdfPath, logOutput, err := latex.Compile(compileCtx, texPath, outDir)
	if err != nil {
		status.PrintCompileFailure(logOutput)
		finishRun(ctx, logger, st, runID, store.StatusFailed, report, "")
		return result, err
	}
	result.PDFPath = pdfPath
	status.PrintPDFGenerated(pdfPath)

	if !opts.KeepAux {
		for _, path := range latex.CleanAux(outDir, base) {
			logger.Debug().Str("path", path).Msg("cleaned up auxiliary file")
		}
	}

	finishRun(ctx, logger, st, runID, store.StatusSucceeded, report, pdfPath)
	return result, nil
}

// loadSchema resolves the schema source: the built-in schema unless a path
// overrides it.
func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}

// loadTemplate resolves the template source: the built-in template unless a
// path overrides it. A missing or unreadable file is a configuration error.
func loadTemplate(path string) ([]byte, error) {
	if path == "" {
		return assets.DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &render.TemplateError{
			Message: fmt.Sprintf("failed to read template file %s", path),
			Cause:   err,
		}
	}
	return data, nil
}

// openStore connects to the run-history store. Connection failures are
// warnings: generation continues without persistence.
func openStore(ctx context.Context, logger zerolog.Logger, databaseURL string) *store.Store {
	if databaseURL == "" {
		return nil
	}
	st, err := store.Open(ctx, databaseURL)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to run-history store, continuing without persistence")
		return nil
	}
	return st
}

func finishRun(ctx context.Context, logger zerolog.Logger, st *store.Store, id uuid.UUID, status string, report *validation.Report, pdfPath string) {
	errorCount, warningCount := 0, 0
	if report != nil {
		errorCount = len(report.Errors())
		warningCount = len(report.Warnings())
	}
	if err := st.CompleteRun(ctx, id, status, errorCount, warningCount, pdfPath); err != nil {
		logger.Warn().Err(err).Msg("failed to record run completion")
	}
}

// outputBase derives the output file stem from the data file name, the way
// cv.yml becomes cv.tex and cv.pdf.
func outputBase(dataPath string) string {
	name := filepath.Base(dataPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

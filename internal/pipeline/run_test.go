package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/cvgen/internal/latex"
	"github.com/mwalther/cvgen/internal/render"
	"github.com/mwalther/cvgen/internal/schema"
)

const validCV = `
name: Erika Mustermann
personal_info:
  email: erika@example.de
  nationality: German
work_experience:
  - position: Software Engineer
    employer: ACME GmbH
    start_date: 2019-04-01
education:
  - title: MSc Computer Science
    organisation: University of Cologne
languages:
  mother_tongue: German
`

const incompleteCV = `name: A. Test` + "\n"

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_TexOnly(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		TexOnly:   true,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.True(t, result.Report.Passed())
	assert.Equal(t, filepath.Join(outDir, "cv.tex"), result.TexPath)
	assert.Empty(t, result.PDFPath)
	assert.NotEqual(t, [16]byte{}, [16]byte(result.RunID))

	tex, readErr := os.ReadFile(result.TexPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(tex), "Erika Mustermann")
	assert.Equal(t, result.Rendered, string(tex))

	assert.Contains(t, out.String(), "✅ CV validation passed successfully!")
	assert.Contains(t, out.String(), "Writing LaTeX file:")
}

func TestRun_ValidationFailureBlocksRendering(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, incompleteCV),
		OutputDir: outDir,
		TexOnly:   true,
		Out:       &out,
	})

	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Report.Errors(), 4)
	assert.Empty(t, result.TexPath)

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "nothing may be rendered for a failing document")

	assert.Contains(t, out.String(), "❌ 4 errors")
}

func TestRun_ForceRendersDespiteErrors(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, incompleteCV),
		OutputDir: outDir,
		TexOnly:   true,
		Force:     true,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.False(t, result.Report.Passed())
	assert.FileExists(t, result.TexPath)

	// The report still lists every error even though the run continued
	assert.Contains(t, out.String(), "❌ 4 errors")
	assert.Contains(t, out.String(), "Required field 'personal_info' is missing")
}

func TestRun_DryRunNeverRenders(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		DryRun:    true,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.Empty(t, result.TexPath)
	assert.Empty(t, result.Rendered)

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)

	assert.Contains(t, out.String(), "Dry run")
}

func TestRun_DryRunStillFailsOnErrors(t *testing.T) {
	var out bytes.Buffer

	_, err := Run(context.Background(), Options{
		DataPath: writeDataFile(t, incompleteCV),
		DryRun:   true,
		Out:      &out,
	})

	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
}

func TestRun_AnonymousOutputNaming(t *testing.T) {
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		Anonymous: true,
		TexOnly:   true,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "cv_anon.tex"), result.TexPath)

	tex, readErr := os.ReadFile(result.TexPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(tex), render.WithheldName)
	assert.NotContains(t, string(tex), "Erika Mustermann")
	assert.NotContains(t, string(tex), "erika@example.de")

	assert.Contains(t, out.String(), "🔒 Generating anonymous CV")
}

func TestRun_MissingSchemaIsConfigError(t *testing.T) {
	result, err := Run(context.Background(), Options{
		DataPath:   writeDataFile(t, validCV),
		SchemaPath: filepath.Join(t.TempDir(), "missing.yml"),
		Out:        &bytes.Buffer{},
	})

	var loadErr *schema.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, IsConfigError(err))
	assert.Nil(t, result)
}

func TestRun_MissingTemplateIsConfigError(t *testing.T) {
	result, err := Run(context.Background(), Options{
		DataPath:     writeDataFile(t, validCV),
		TemplatePath: filepath.Join(t.TempDir(), "missing.tex"),
		Out:          &bytes.Buffer{},
	})

	var tmplErr *render.TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.True(t, IsConfigError(err))
	assert.Nil(t, result)
}

func TestRun_UnreadableDataBecomesFinding(t *testing.T) {
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath: filepath.Join(t.TempDir(), "missing.yml"),
		Force:    true, // force cannot render a document that never parsed
		Out:      &out,
	})

	var vErr *ValidationFailedError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, result.Report.Findings, 1)
	assert.Contains(t, result.Report.Findings[0].Message, "failed to read data file")
	assert.False(t, IsConfigError(err))
}

func TestRun_JSONReportKeepsStdoutClean(t *testing.T) {
	var out bytes.Buffer

	_, err := Run(context.Background(), Options{
		DataPath:   writeDataFile(t, validCV),
		DryRun:     true,
		JSONReport: true,
		Out:        &out,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"findings"`)
	assert.NotContains(t, out.String(), "Dry run")
	assert.NotContains(t, out.String(), "✅")
}

// stubCompiler puts a fake pdflatex on PATH so compile runs work without
// a TeX installation. The scripts use shell builtins only because PATH is
// replaced entirely.
func stubCompiler(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pdflatex"), []byte(script), 0o755))
	t.Setenv("PATH", dir)
}

const stubPdflatexOK = `#!/bin/sh
echo "This is stub pdflatex"
tex="$4"
name="${tex##*/}"
base="${name%.tex}"
printf 'PDF' > "$3/$base.pdf"
printf 'aux' > "$3/$base.aux"
printf 'log' > "$3/$base.log"
`

const stubPdflatexFail = `#!/bin/sh
echo "! LaTeX Error: something broke."
exit 1
`

func TestRun_CompileAndCleanAux(t *testing.T) {
	stubCompiler(t, stubPdflatexOK)
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "cv.pdf"), result.PDFPath)
	assert.FileExists(t, result.PDFPath)
	assert.NoFileExists(t, filepath.Join(outDir, "cv.aux"))
	assert.NoFileExists(t, filepath.Join(outDir, "cv.log"))

	assert.Contains(t, out.String(), "Compiling to PDF...")
	assert.Contains(t, out.String(), "✅ Success! PDF generated: "+result.PDFPath)
}

func TestRun_KeepAuxLeavesArtifacts(t *testing.T) {
	stubCompiler(t, stubPdflatexOK)
	outDir := t.TempDir()

	_, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		KeepAux:   true,
		Out:       &bytes.Buffer{},
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "cv.aux"))
	assert.FileExists(t, filepath.Join(outDir, "cv.log"))
}

func TestRun_CompileFailureReportsLog(t *testing.T) {
	stubCompiler(t, stubPdflatexFail)
	outDir := t.TempDir()
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		DataPath:  writeDataFile(t, validCV),
		OutputDir: outDir,
		Out:       &out,
	})

	var compErr *latex.CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Empty(t, result.PDFPath)
	assert.FileExists(t, result.TexPath, "the tex file survives a failed compile")

	assert.Contains(t, out.String(), "❌ Error: Failed to compile LaTeX to PDF")
	assert.Contains(t, out.String(), "! LaTeX Error: something broke.")
}

func TestRunBatch_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(good, []byte(validCV), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(incompleteCV), 0o644))

	results, err := RunBatch(context.Background(), []string{good, bad}, Options{
		OutputDir: t.TempDir(),
		TexOnly:   true,
		Out:       &bytes.Buffer{},
	})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)

	var vErr *ValidationFailedError
	assert.ErrorAs(t, batchErr.Failures[bad], &vErr)

	require.Contains(t, results, good)
	assert.FileExists(t, results[good].TexPath, "one failing document must not stop the others")
}

func TestRunBatch_ConfigErrorAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte(validCV), 0o644))

	_, err := RunBatch(context.Background(), []string{good}, Options{
		SchemaPath: filepath.Join(dir, "missing-schema.yml"),
		TexOnly:    true,
		Out:        &bytes.Buffer{},
	})

	var loadErr *schema.LoadError
	require.ErrorAs(t, err, &loadErr)
	var batchErr *BatchError
	assert.False(t, errors.As(err, &batchErr))
}

func TestRunBatch_NoPaths(t *testing.T) {
	results, err := RunBatch(context.Background(), nil, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestOutputBase(t *testing.T) {
	assert.Equal(t, "cv", outputBase("data/cv.yml"))
	assert.Equal(t, "cv", outputBase("/abs/path/cv.yaml"))
	assert.Equal(t, "max-mustermann", outputBase("max-mustermann.yml"))
	assert.Equal(t, "plain", outputBase("plain"))
}

package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalther/cvgen/internal/validation"
)

func TestFormatFinding_Error(t *testing.T) {
	f := validation.Finding{
		Severity: validation.SeverityError,
		Path:     "personal_info",
		Message:  "Required field 'personal_info' is missing",
	}

	assert.Equal(t, "❌ ERROR: Required field 'personal_info' is missing (at personal_info)", FormatFinding(f))
}

func TestFormatFinding_WarningWithSuggestion(t *testing.T) {
	f := validation.Finding{
		Severity:   validation.SeverityWarning,
		Path:       "personal_info.telephon",
		Message:    "Unknown field 'personal_info.telephon'",
		Suggestion: "phone",
	}

	got := FormatFinding(f)
	assert.Contains(t, got, "⚠️ WARNING: Unknown field 'personal_info.telephon' (at personal_info.telephon)")
	assert.Contains(t, got, "\n   💡 Suggestion: Did you mean 'phone'?")
}

func TestFormatFinding_RootPathOmitted(t *testing.T) {
	f := validation.Finding{
		Severity: validation.SeverityError,
		Message:  "Expected object, got null",
	}

	got := FormatFinding(f)
	assert.Equal(t, "❌ ERROR: Expected object, got null", got)
	assert.NotContains(t, got, "(at")
}

func TestFormatSummary_Clean(t *testing.T) {
	assert.Equal(t, "✅ CV validation passed successfully!", FormatSummary(&validation.Report{}))
}

func TestFormatSummary_Counts(t *testing.T) {
	r := &validation.Report{Findings: []validation.Finding{
		{Severity: validation.SeverityError, Message: "a"},
		{Severity: validation.SeverityError, Message: "b"},
		{Severity: validation.SeverityWarning, Message: "c"},
	}}

	assert.Equal(t, "❌ 2 errors | ⚠️ 1 warning", FormatSummary(r))
}

func TestFormatSummary_WarningsOnly(t *testing.T) {
	r := &validation.Report{Findings: []validation.Finding{
		{Severity: validation.SeverityWarning, Message: "c"},
	}}

	assert.Equal(t, "⚠️ 1 warning", FormatSummary(r))
}

func TestPrintReport_Sections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&validation.Report{Findings: []validation.Finding{
		{Severity: validation.SeverityError, Path: "name", Message: "Required field 'name' is missing"},
		{Severity: validation.SeverityWarning, Path: "personal_info.telephon", Message: "Unknown field 'personal_info.telephon'", Suggestion: "phone"},
	}})
	output := buf.String()

	assert.Contains(t, output, "❌ 1 error | ⚠️ 1 warning")
	assert.Contains(t, output, "ERRORS:")
	assert.Contains(t, output, "  ❌ ERROR: Required field 'name' is missing (at name)")
	assert.Contains(t, output, "WARNINGS:")
	assert.Contains(t, output, "💡 Suggestion: Did you mean 'phone'?")
}

func TestPrintReport_CleanHasNoSections(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&validation.Report{})
	output := buf.String()

	assert.Contains(t, output, "✅ CV validation passed successfully!")
	assert.NotContains(t, output, "ERRORS:")
	assert.NotContains(t, output, "WARNINGS:")
}

func TestPrintReportJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.PrintReportJSON(&validation.Report{Findings: []validation.Finding{
		{Severity: validation.SeverityError, Path: "name", Message: "Required field 'name' is missing"},
	}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"severity": "error"`)
	assert.Contains(t, buf.String(), `"path": "name"`)
}

func TestPrintStatusLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnonymousNotice()
	p.PrintWritingTex("build/cv.tex")
	p.PrintCompiling()
	p.PrintPDFGenerated("build/cv.pdf")
	output := buf.String()

	assert.Contains(t, output, "🔒 Generating anonymous CV")
	assert.Contains(t, output, "Writing LaTeX file: build/cv.tex")
	assert.Contains(t, output, "Compiling to PDF...")
	assert.Contains(t, output, "✅ Success! PDF generated: build/cv.pdf")
}

func TestPrintCompileFailure_IncludesLog(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCompileFailure("! Undefined control sequence.\nl.12 \\unknowncmd")
	output := buf.String()

	assert.Contains(t, output, "❌ Error: Failed to compile LaTeX to PDF")
	assert.Contains(t, output, "! Undefined control sequence.")
}

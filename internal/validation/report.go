// Package validation checks a parsed CV document against the schema and
// produces an ordered report of typed findings.
package validation

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Severity levels for findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding is one validation result tied to a field path in the document.
// Suggestion, when set, names the schema field the author probably meant.
type Finding struct {
	Severity   string `json:"severity"`
	Path       string `json:"path,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Report is the complete result of one validation pass. Findings appear in
// report order: schema-constraint errors in schema declaration order, then
// unknown-field warnings in document order.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Errors returns the error-severity findings.
func (r *Report) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity findings.
func (r *Report) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(severity string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// HasErrors reports whether any blocking finding exists.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any warning finding exists.
func (r *Report) HasWarnings() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Passed is the verdict: a report passes when it carries no errors.
// Warnings never block.
func (r *Report) Passed() bool {
	return !r.HasErrors()
}

// JSON renders the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

package pipeline

import (
	"fmt"

	"github.com/mwalther/cvgen/internal/validation"
)

// ValidationFailedError aborts a run whose report carries blocking errors
// and force mode is off. The full report travels with the error so callers
// can inspect the findings.
type ValidationFailedError struct {
	Report *validation.Report
}

func (e *ValidationFailedError) Error() string {
	n := len(e.Report.Errors())
	if n == 1 {
		return "validation failed with 1 error"
	}
	return fmt.Sprintf("validation failed with %d errors", n)
}

// BatchError collects the per-document failures of a batch run. Documents
// are independent: one failure never stops the others.
type BatchError struct {
	Failures map[string]error
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 1 {
		for path, err := range e.Failures {
			return fmt.Sprintf("1 document failed: %s: %v", path, err)
		}
	}
	return fmt.Sprintf("%d documents failed", len(e.Failures))
}

package latex

import "fmt"

// CompilationError represents a failed or degraded run of the external
// LaTeX toolchain. LogOutput carries the compiler's combined stdout and
// stderr verbatim; the pipeline reports it without interpretation.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

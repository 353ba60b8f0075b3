package schema

import "fmt"

// LoadError reports a malformed or unreadable schema source. It is a
// configuration error: the pipeline aborts before touching any document
// and the CLI maps it to its own exit code.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "(inline)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

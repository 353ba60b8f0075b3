package render

import "fmt"

// TemplateError reports a template that could not be parsed or executed.
// A broken template is a configuration problem, not a document problem.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Error reports a document that cannot be mapped onto the template data
// model, carrying the path of the offending section. It is fatal for the
// affected document only.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("render error: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

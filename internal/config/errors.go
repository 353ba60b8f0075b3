package config

import "fmt"

// Error represents a configuration problem: an unreadable or malformed
// config file, or a configured path that does not exist.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

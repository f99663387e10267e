package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrUnknownCommand indicates no command is registered under the name.
	ErrUnknownCommand = errors.New("session: unknown command")

	// ErrUsage indicates a command was called with the wrong arguments.
	ErrUsage = errors.New("session: usage")

	// ErrUnknownState indicates a state id that is not in the history.
	ErrUnknownState = errors.New("session: unknown state")
)

// UsageError reports a malformed command line.
type UsageError struct {
	Command string
	Usage   string
	Reason  string
}

// Error implements error.
func (e *UsageError) Error() string {
	msg := fmt.Sprintf("usage: %s", e.Command)
	if e.Usage != "" {
		msg += " " + e.Usage
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Unwrap returns ErrUsage.
func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// LineError attaches a script line number to an error.
type LineError struct {
	Line int
	Err  error
}

// Error implements error.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

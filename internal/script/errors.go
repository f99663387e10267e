package script

import "errors"

// Errors for script execution.
var (
	// ErrEngineClosed is returned when running code on a closed engine.
	ErrEngineClosed = errors.New("script engine is closed")

	// ErrTimeout is returned when a script runs past its timeout.
	ErrTimeout = errors.New("script execution timeout")
)

package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnsupportedFormat indicates a config file extension with no loader.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrValidationFailed indicates a setting holds an unusable value.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError represents an error while parsing a configuration source.
type ParseError struct {
	// Path is the file path or variable name that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

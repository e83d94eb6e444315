package analysis

import (
	"errors"
	"fmt"
)

// ErrConfiguration means a required backend credential or endpoint is
// missing. Fatal for the call; never retried.
var ErrConfiguration = errors.New("backend is not configured")

// ErrConnectivity means the backend could not be reached or answered
// with a transport-level failure. Surfaced as-is; never retried.
var ErrConnectivity = errors.New("backend is unreachable")

// ParseError means the backend response was not valid JSON after
// fence-stripping.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("backend response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError means the response parsed but a required field was
// missing or malformed. Field names the first offender.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("backend response missing or malformed field: %s", e.Field)
}

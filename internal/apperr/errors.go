// Package apperr holds the sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("unavailable")
	ErrUpstream    = errors.New("upstream failure")
)

// ValidationError carries a user-facing message for a rejected input.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with msg.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

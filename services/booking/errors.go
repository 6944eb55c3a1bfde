package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound  = errors.New("booking session not found")
	ErrSessionForbidden = errors.New("booking session belongs to another user")
	ErrNoDraft          = errors.New("no resumable draft")
)

// FieldError names the first required booking field that is missing.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s is missing", e.Field)
}

// ValidationError is a user-correctable problem with a wizard update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

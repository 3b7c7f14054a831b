package ccr

import (
	"errors"
	"fmt"
)

// ValidationError indicates that an input was rejected before any cryptographic
// work: malformed identifiers, mismatched groups, wrong vector lengths, etc.
// Validation errors are never retried.
type ValidationError struct {
	err error
}

func NewValidationErrorf(msg string, args ...interface{}) error {
	return ValidationError{err: fmt.Errorf(msg, args...)}
}

func (e ValidationError) Unwrap() error {
	return e.err
}

func (e ValidationError) Error() string {
	return e.err.Error()
}

// IsValidationError returns whether the given error is a ValidationError.
func IsValidationError(err error) bool {
	var validationErr ValidationError
	return errors.As(err, &validationErr)
}

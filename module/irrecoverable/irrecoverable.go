// Package irrecoverable marks storage and encoding failures that callers must
// not treat as an outcome of the request being processed.
package irrecoverable

import (
	"errors"
	"fmt"
)

var errException = errors.New("exception")

// exception represents an unexpected error. An unexpected error is any error returned
// by a function, other than the errors specifically documented as expected in that
// function's interface.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

func (e exception) Is(other error) bool {
	return other == errException
}

// NewException wraps the input error as an exception.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is NewException with fmt.Errorf semantics.
func NewExceptionf(msg string, args ...interface{}) error {
	return exception{err: fmt.Errorf(msg, args...)}
}

// IsException reports whether err, or any error it wraps, is an exception.
func IsException(err error) bool {
	return errors.Is(err, errException)
}

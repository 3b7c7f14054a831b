package returncodes

import (
	"errors"
	"fmt"
)

// ProtocolViolationError indicates an input that is well-formed but violates
// the protocol: a failed proof, a hashed code missing from the allow-list,
// duplicate codes or a contribution differing from a stored one. It is
// irrecoverable for the request and must never be retried.
type ProtocolViolationError struct {
	err error
}

func NewProtocolViolationErrorf(msg string, args ...interface{}) error {
	return ProtocolViolationError{err: fmt.Errorf(msg, args...)}
}

func (e ProtocolViolationError) Unwrap() error {
	return e.err
}

func (e ProtocolViolationError) Error() string {
	return e.err.Error()
}

// IsProtocolViolationError returns whether the given error is a ProtocolViolationError.
func IsProtocolViolationError(err error) bool {
	var e ProtocolViolationError
	return errors.As(err, &e)
}

package exactlyonce

import (
	"errors"
	"fmt"

	"github.com/evote-ccr/control-component/model/ccr"
)

// ConflictError is returned when a request reuses the key of a recorded
// command with a different request payload. It signals tampering or a bug and
// must not be retried.
type ConflictError struct {
	Key ccr.CommandKey
}

func NewConflictError(key ccr.CommandKey) error {
	return ConflictError{Key: key}
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("command %s was already recorded with a different request payload", e.Key)
}

// IsConflictError returns whether err is a ConflictError.
func IsConflictError(err error) bool {
	var e ConflictError
	return errors.As(err, &e)
}

package storage

import (
	"errors"
	"fmt"

	"github.com/evote-ccr/control-component/model/ccr"
)

var (
	// Note: there is another not found error: badger.ErrKeyNotFound. The difference between
	// badger.ErrKeyNotFound and storage.ErrNotFound is that:
	// badger.ErrKeyNotFound is the error returned by the badger API.
	// Modules in storage/badger and storage/badger/operation package both
	// return storage.ErrNotFound for not found error
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
	ErrDataMismatch  = errors.New("data for key is different")

	// ErrVersionMismatch is returned by compare-and-set updates when the stored
	// record version differs from the expected version.
	ErrVersionMismatch = errors.New("stored version differs from expected version")
)

// InvalidStateTransitionError is returned when a verification card state update
// would reset a flag, or when a step's precondition flag is already set.
type InvalidStateTransitionError struct {
	VerificationCardID string
	From               ccr.VerificationCardState
	To                 ccr.VerificationCardState
	msg                string
}

func NewInvalidStateTransitionErrorf(verificationCardID string, from, to ccr.VerificationCardState, msg string, args ...interface{}) error {
	return InvalidStateTransitionError{
		VerificationCardID: verificationCardID,
		From:               from,
		To:                 to,
		msg:                fmt.Sprintf(msg, args...),
	}
}

func (e InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition for verification card %s (partially decrypted: %t -> %t, lcc share created: %t -> %t): %s",
		e.VerificationCardID,
		e.From.PartiallyDecrypted, e.To.PartiallyDecrypted,
		e.From.LCCShareCreated, e.To.LCCShareCreated,
		e.msg,
	)
}

// IsInvalidStateTransitionError checks if the input error is of an InvalidStateTransitionError type.
func IsInvalidStateTransitionError(err error) bool {
	var e InvalidStateTransitionError
	return errors.As(err, &e)
}

package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/operation"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// VerificationCardStates stores the one-way flags of the verification cards.
// States are read and written inside the caller's unit of work, so that a
// flag is committed together with the result of the step it guards.
type VerificationCardStates struct {
	db *badger.DB
}

var _ storage.VerificationCardStates = (*VerificationCardStates)(nil)

func NewVerificationCardStates(db *badger.DB) *VerificationCardStates {
	return &VerificationCardStates{db: db}
}

func (v *VerificationCardStates) ByVerificationCardID(verificationCardID string) (ccr.VerificationCardState, error) {
	var state ccr.VerificationCardState
	err := v.db.View(operation.RetrieveVerificationCardState(verificationCardID, &state))
	if err != nil {
		return ccr.VerificationCardState{}, fmt.Errorf("could not retrieve state of verification card %s: %w", verificationCardID, err)
	}
	return state, nil
}

func (v *VerificationCardStates) RetrieveTx(verificationCardID string, state *ccr.VerificationCardState) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		err := operation.RetrieveVerificationCardState(verificationCardID, state)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve state of verification card %s: %w", verificationCardID, err)
		}
		return nil
	}
}

func (v *VerificationCardStates) UpdateIfVersionTx(verificationCardID string, expectedVersion uint64, next ccr.VerificationCardState) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		var current ccr.VerificationCardState
		err := operation.RetrieveVerificationCardState(verificationCardID, &current)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve state of verification card %s: %w", verificationCardID, err)
		}
		if current.Version != expectedVersion {
			return fmt.Errorf("state of verification card %s has version %d, expected %d: %w",
				verificationCardID, current.Version, expectedVersion, storage.ErrVersionMismatch)
		}
		if !current.IsValidTransition(next) {
			return storage.NewInvalidStateTransitionErrorf(verificationCardID, current, next, "flags can only be set once")
		}

		next.Version = current.Version + 1
		err = operation.UpdateVerificationCardState(verificationCardID, &next)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not update state of verification card %s: %w", verificationCardID, err)
		}
		return nil
	}
}

package storage

import (
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// Commands is the exactly-once ledger.
type Commands interface {

	// ByKey returns the command stored under the key.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no command exists for the key
	ByKey(key ccr.CommandKey) (*ccr.Command, error)

	// InsertRequest records a new command with its request payload and no
	// response. The write is committed in its own transaction, independent of
	// any unit of work the caller is in, so that it survives a later rollback.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if a command exists for the key
	InsertRequest(key ccr.CommandKey, request []byte) error

	// CompleteTx returns a functor which records the response of a command
	// within the given unit of work. The stored request must be identical to
	// request and no response must have been recorded before.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no command exists for the key
	//   - storage.ErrDataMismatch if the stored request differs
	//   - storage.ErrAlreadyExists if a response was already recorded
	CompleteTx(key ccr.CommandKey, request []byte, response []byte) func(*transaction.Tx) error
}

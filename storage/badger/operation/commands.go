package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
)

func commandKey(key ccr.CommandKey) []byte {
	return makePrefix(codeCommand,
		lengthPrefixed(key.ContextID),
		lengthPrefixed(key.Context),
		lengthPrefixed(key.CorrelationID),
		key.NodeID,
	)
}

// InsertCommand records a new ledger entry. Returns storage.ErrAlreadyExists
// if an entry with the same key exists.
func InsertCommand(command *ccr.Command) func(*badger.Txn) error {
	return insert(commandKey(command.Key), command)
}

// UpdateCommand overwrites an existing ledger entry. Returns storage.ErrNotFound
// if there is no entry for the key.
func UpdateCommand(command *ccr.Command) func(*badger.Txn) error {
	return update(commandKey(command.Key), command)
}

// RetrieveCommand returns storage.ErrNotFound if there is no entry for the key.
func RetrieveCommand(key ccr.CommandKey, command *ccr.Command) func(*badger.Txn) error {
	return retrieve(commandKey(key), command)
}

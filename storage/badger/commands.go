package badger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/operation"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// Commands implements the exactly-once ledger on badger. Ledger entries are
// not cached: a concurrent writer may complete an entry at any time.
type Commands struct {
	db *badger.DB
}

var _ storage.Commands = (*Commands)(nil)

func NewCommands(db *badger.DB) *Commands {
	return &Commands{db: db}
}

func (c *Commands) ByKey(key ccr.CommandKey) (*ccr.Command, error) {
	var command ccr.Command
	err := c.db.View(operation.RetrieveCommand(key, &command))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve command %s: %w", key, err)
	}
	return &command, nil
}

func (c *Commands) InsertRequest(key ccr.CommandKey, request []byte) error {
	command := ccr.Command{
		Key:            key,
		RequestPayload: request,
		CreatedAt:      time.Now().UTC(),
	}
	err := operation.RetryOnConflict(c.db.Update, operation.InsertCommand(&command))
	if err != nil {
		return fmt.Errorf("could not insert command %s: %w", key, transaction.TerminateOnFullDisk(err))
	}
	return nil
}

func (c *Commands) CompleteTx(key ccr.CommandKey, request []byte, response []byte) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		var command ccr.Command
		err := operation.RetrieveCommand(key, &command)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve command %s: %w", key, err)
		}
		if !bytes.Equal(command.RequestPayload, request) {
			return fmt.Errorf("request of command %s changed: %w", key, storage.ErrDataMismatch)
		}
		if command.IsCompleted() {
			return fmt.Errorf("command %s already completed: %w", key, storage.ErrAlreadyExists)
		}
		command.ResponsePayload = response
		command.Completed = true
		command.CompletedAt = time.Now().UTC()
		err = operation.UpdateCommand(&command)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not complete command %s: %w", key, err)
		}
		return nil
	}
}

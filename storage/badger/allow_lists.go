package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/operation"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// maxEntriesPerTx bounds the size of a single badger transaction when appending.
const maxEntriesPerTx = 1000

type AllowLists struct {
	db *badger.DB
}

var _ storage.AllowLists = (*AllowLists)(nil)

func NewAllowLists(db *badger.DB) *AllowLists {
	return &AllowLists{db: db}
}

func (a *AllowLists) Append(verificationCardSetID string, entries []string) error {
	for start := 0; start < len(entries); start += maxEntriesPerTx {
		end := start + maxEntriesPerTx
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]
		err := operation.RetryOnConflict(a.db.Update, func(tx *badger.Txn) error {
			for _, entry := range batch {
				err := operation.SkipDuplicates(operation.InsertAllowListEntry(verificationCardSetID, entry))(tx)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("could not append to allow-list of verification card set %s: %w", verificationCardSetID, err)
		}
	}
	return nil
}

func (a *AllowLists) Contains(verificationCardSetID string, entry string) (bool, error) {
	var contains bool
	err := a.db.View(operation.AllowListContains(verificationCardSetID, entry, &contains))
	if err != nil {
		return false, fmt.Errorf("could not look up allow-list of verification card set %s: %w", verificationCardSetID, err)
	}
	return contains, nil
}

func (a *AllowLists) ContainsTx(verificationCardSetID string, entry string, contains *bool) func(*transaction.Tx) error {
	return transaction.WithTx(operation.AllowListContains(verificationCardSetID, entry, contains))
}

func (a *AllowLists) Count(verificationCardSetID string) (uint64, error) {
	var count uint64
	err := a.db.View(operation.CountAllowListEntries(verificationCardSetID, &count))
	if err != nil {
		return 0, fmt.Errorf("could not count allow-list of verification card set %s: %w", verificationCardSetID, err)
	}
	return count, nil
}

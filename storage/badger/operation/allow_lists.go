package operation

import (
	"github.com/dgraph-io/badger/v2"
)

// InsertAllowListEntry adds an entry to the allow-list of a card set. Returns
// storage.ErrAlreadyExists if the entry is already present.
func InsertAllowListEntry(verificationCardSetID string, entry string) func(*badger.Txn) error {
	return insert(makePrefix(codeAllowListEntry, verificationCardSetID, entry), true)
}

func AllowListContains(verificationCardSetID string, entry string, contains *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeAllowListEntry, verificationCardSetID, entry), contains)
}

func CountAllowListEntries(verificationCardSetID string, count *uint64) func(*badger.Txn) error {
	return countKeys(makePrefix(codeAllowListEntry, verificationCardSetID), count)
}

package storage

import (
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// VerificationCards stores provisioned verification cards.
type VerificationCards interface {

	// Store persists the card and creates its state with both flags unset.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if the card was already provisioned
	Store(card ccr.VerificationCard) error

	// ByID returns the card, decoding its public key as an element of grp.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the card is unknown
	ByID(grp *group.GqGroup, verificationCardID string) (ccr.VerificationCard, error)
}

// VerificationCardStates stores the at-most-once guards of the verification cards.
type VerificationCardStates interface {

	// ByVerificationCardID returns the current state of the card.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the card is unknown
	ByVerificationCardID(verificationCardID string) (ccr.VerificationCardState, error)

	// RetrieveTx reads the state of the card within the unit of work.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the card is unknown
	RetrieveTx(verificationCardID string, state *ccr.VerificationCardState) func(*transaction.Tx) error

	// UpdateIfVersionTx replaces the state of the card with next, provided the
	// stored version equals expectedVersion and the flags only move from unset
	// to set. The stored version is incremented.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the card is unknown
	//   - storage.ErrVersionMismatch if the stored version differs from expectedVersion
	//   - storage.InvalidStateTransitionError if next would reset a flag or changes nothing
	UpdateIfVersionTx(verificationCardID string, expectedVersion uint64, next ccr.VerificationCardState) func(*transaction.Tx) error
}

// VerificationCardSets stores the combined correctness information of the card sets.
type VerificationCardSets interface {

	// Store persists the card set. Storing an identical set again is a no-op.
	// Expected errors during normal operations:
	//   - storage.ErrDataMismatch if a different set is stored under the same id
	Store(set ccr.VerificationCardSet) error

	// ByID returns the card set.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the card set is unknown
	ByID(verificationCardSetID string) (ccr.VerificationCardSet, error)
}

// AllowLists stores the allow-lists of the card sets. Allow-lists only grow.
type AllowLists interface {

	// Append adds the entries to the allow-list of the card set. Entries that
	// are already present are skipped. Callers serialize appends per card set.
	Append(verificationCardSetID string, entries []string) error

	// Contains reports whether the entry is part of the allow-list of the card set.
	Contains(verificationCardSetID string, entry string) (bool, error)

	// ContainsTx is Contains within a unit of work.
	ContainsTx(verificationCardSetID string, entry string, contains *bool) func(*transaction.Tx) error

	// Count returns the number of entries in the allow-list of the card set.
	Count(verificationCardSetID string) (uint64, error)
}

package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
)

// InsertOrMatchVerificationCardSet stores a card set. The combined correctness
// information is immutable: storing a different set under the same id returns
// storage.ErrDataMismatch.
func InsertOrMatchVerificationCardSet(set *encodable.VerificationCardSet) func(*badger.Txn) error {
	var stored encodable.VerificationCardSet
	return insertOrMatch(makePrefix(codeVerificationCardSet, set.VerificationCardSetID), set, &stored)
}

func RetrieveVerificationCardSet(verificationCardSetID string, set *encodable.VerificationCardSet) func(*badger.Txn) error {
	return retrieve(makePrefix(codeVerificationCardSet, verificationCardSetID), set)
}

func InsertVerificationCard(card *encodable.VerificationCard) func(*badger.Txn) error {
	return insert(makePrefix(codeVerificationCard, card.VerificationCardID), card)
}

func RetrieveVerificationCard(verificationCardID string, card *encodable.VerificationCard) func(*badger.Txn) error {
	return retrieve(makePrefix(codeVerificationCard, verificationCardID), card)
}

func InsertVerificationCardState(verificationCardID string, state *ccr.VerificationCardState) func(*badger.Txn) error {
	return insert(makePrefix(codeVerificationCardState, verificationCardID), state)
}

func UpdateVerificationCardState(verificationCardID string, state *ccr.VerificationCardState) func(*badger.Txn) error {
	return update(makePrefix(codeVerificationCardState, verificationCardID), state)
}

func RetrieveVerificationCardState(verificationCardID string, state *ccr.VerificationCardState) func(*badger.Txn) error {
	return retrieve(makePrefix(codeVerificationCardState, verificationCardID), state)
}

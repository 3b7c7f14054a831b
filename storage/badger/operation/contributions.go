package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
)

// InsertOrMatchContribution stores the partial decryption contribution of a
// node for a card, or checks that the stored contribution is identical.
// Returns storage.ErrDataMismatch if a different contribution was stored before.
func InsertOrMatchContribution(verificationCardID string, contribution *encodable.Contribution) func(*badger.Txn) error {
	var stored encodable.Contribution
	return insertOrMatch(makePrefix(codeContribution, verificationCardID, contribution.NodeID), contribution, &stored)
}

func RetrieveContribution(verificationCardID string, nodeID ccr.NodeID, contribution *encodable.Contribution) func(*badger.Txn) error {
	return retrieve(makePrefix(codeContribution, verificationCardID, nodeID), contribution)
}

// LookupContributions returns all stored contributions of a card, in ascending node id order.
func LookupContributions(verificationCardID string, contributions *[]encodable.Contribution) func(*badger.Txn) error {
	*contributions = (*contributions)[:0]
	return traverse(makePrefix(codeContribution, verificationCardID), func() (createFunc, handleFunc) {
		var c encodable.Contribution
		create := func() interface{} {
			return &c
		}
		handle := func(key []byte) error {
			*contributions = append(*contributions, c)
			return nil
		}
		return create, handle
	})
}

package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
)

// InsertOrMatchElectionEvent stores the election event context, or checks that
// the stored context is identical. Returns storage.ErrDataMismatch otherwise.
func InsertOrMatchElectionEvent(event *encodable.ElectionEvent) func(*badger.Txn) error {
	var stored encodable.ElectionEvent
	return insertOrMatch(makePrefix(codeElectionEvent, event.ElectionEventID), event, &stored)
}

func RetrieveElectionEvent(electionEventID string, event *encodable.ElectionEvent) func(*badger.Txn) error {
	return retrieve(makePrefix(codeElectionEvent, electionEventID), event)
}

// InsertNodeKeys stores the key shares of a node. Keys are never overwritten;
// returns storage.ErrAlreadyExists if keys are already present.
func InsertNodeKeys(keys *encodable.NodeKeys) func(*badger.Txn) error {
	return insert(makePrefix(codeNodeKeys, keys.ElectionEventID, keys.NodeID), keys)
}

func RetrieveNodeKeys(electionEventID string, nodeID ccr.NodeID, keys *encodable.NodeKeys) func(*badger.Txn) error {
	return retrieve(makePrefix(codeNodeKeys, electionEventID, nodeID), keys)
}

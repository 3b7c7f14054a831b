package storage

import (
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
)

// ElectionEvents stores the public context of the election events.
type ElectionEvents interface {

	// Store persists the context. Storing an identical context again is a no-op.
	// Expected errors during normal operations:
	//   - storage.ErrDataMismatch if a different context is stored under the same id
	Store(event ccr.ElectionEventContext) error

	// ByID returns the context of the election event.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the election event is unknown
	ByID(electionEventID string) (ccr.ElectionEventContext, error)
}

// NodeKeys stores the secret key shares of this node.
type NodeKeys interface {

	// Store persists the keys. Keys are never replaced.
	// Expected errors during normal operations:
	//   - storage.ErrAlreadyExists if keys for the election event and node exist
	Store(keys ccr.NodeKeys) error

	// ByElectionEventID returns the keys of the node, decoded in grp.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no keys exist
	ByElectionEventID(grp *group.GqGroup, electionEventID string, nodeID ccr.NodeID) (ccr.NodeKeys, error)
}

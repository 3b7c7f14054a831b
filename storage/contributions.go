package storage

import (
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

// Contributions stores the partial decryption contributions of all nodes per card.
type Contributions interface {

	// StoreTx persists the contribution within the unit of work, or checks that
	// an identical contribution of the same node is already stored.
	// Expected errors during normal operations:
	//   - storage.ErrDataMismatch if a different contribution of the node is stored
	StoreTx(verificationCardID string, contribution ccr.PartialDecryptionContribution) func(*transaction.Tx) error

	// ByNode returns the stored contribution of a node, decoded in grp.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the node has no stored contribution for the card
	ByNode(grp *group.GqGroup, verificationCardID string, nodeID ccr.NodeID) (ccr.PartialDecryptionContribution, error)

	// ByNodeTx is ByNode within the unit of work, so that the read takes part
	// in its conflict detection.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if the node has no stored contribution for the card
	ByNodeTx(grp *group.GqGroup, verificationCardID string, nodeID ccr.NodeID, contribution *ccr.PartialDecryptionContribution) func(*transaction.Tx) error

	// ByVerificationCardID returns all stored contributions of a card in
	// ascending node id order.
	ByVerificationCardID(grp *group.GqGroup, verificationCardID string) ([]ccr.PartialDecryptionContribution, error)
}

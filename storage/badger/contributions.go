package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/operation"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

type Contributions struct {
	db *badger.DB
}

var _ storage.Contributions = (*Contributions)(nil)

func NewContributions(db *badger.DB) *Contributions {
	return &Contributions{db: db}
}

func (c *Contributions) StoreTx(verificationCardID string, contribution ccr.PartialDecryptionContribution) func(*transaction.Tx) error {
	record := encodable.FromContribution(contribution)
	return func(tx *transaction.Tx) error {
		err := operation.InsertOrMatchContribution(verificationCardID, &record)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not store contribution of node %s for verification card %s: %w", contribution.NodeID, verificationCardID, err)
		}
		return nil
	}
}

func (c *Contributions) ByNode(grp *group.GqGroup, verificationCardID string, nodeID ccr.NodeID) (ccr.PartialDecryptionContribution, error) {
	var contribution ccr.PartialDecryptionContribution
	err := transaction.View(c.db, c.ByNodeTx(grp, verificationCardID, nodeID, &contribution))
	if err != nil {
		return ccr.PartialDecryptionContribution{}, err
	}
	return contribution, nil
}

func (c *Contributions) ByNodeTx(grp *group.GqGroup, verificationCardID string, nodeID ccr.NodeID, contribution *ccr.PartialDecryptionContribution) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		var record encodable.Contribution
		err := operation.RetrieveContribution(verificationCardID, nodeID, &record)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve contribution of node %s for verification card %s: %w", nodeID, verificationCardID, err)
		}
		decoded, err := record.ToContribution(grp)
		if err != nil {
			return fmt.Errorf("could not decode contribution of node %s for verification card %s: %w", nodeID, verificationCardID, err)
		}
		*contribution = decoded
		return nil
	}
}

func (c *Contributions) ByVerificationCardID(grp *group.GqGroup, verificationCardID string) ([]ccr.PartialDecryptionContribution, error) {
	var records []encodable.Contribution
	err := c.db.View(operation.LookupContributions(verificationCardID, &records))
	if err != nil {
		return nil, fmt.Errorf("could not look up contributions for verification card %s: %w", verificationCardID, err)
	}
	contributions := make([]ccr.PartialDecryptionContribution, 0, len(records))
	for _, record := range records {
		contribution, err := record.ToContribution(grp)
		if err != nil {
			return nil, fmt.Errorf("could not decode contribution of node %s for verification card %s: %w", record.NodeID, verificationCardID, err)
		}
		contributions = append(contributions, contribution)
	}
	return contributions, nil
}

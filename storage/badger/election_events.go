package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/operation"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
)

type ElectionEvents struct {
	db    *badger.DB
	cache *Cache[string, ccr.ElectionEventContext]
}

var _ storage.ElectionEvents = (*ElectionEvents)(nil)

func NewElectionEvents(collector module.CacheMetrics, db *badger.DB) *ElectionEvents {
	retrieve := func(electionEventID string) (ccr.ElectionEventContext, error) {
		var record encodable.ElectionEvent
		err := db.View(operation.RetrieveElectionEvent(electionEventID, &record))
		if err != nil {
			return ccr.ElectionEventContext{}, err
		}
		return record.ToElectionEvent()
	}

	return &ElectionEvents{
		db: db,
		cache: newCache[string, ccr.ElectionEventContext](collector, metrics.ResourceElectionEvent,
			withLimit[string, ccr.ElectionEventContext](100),
			withRetrieve(retrieve)),
	}
}

func (e *ElectionEvents) Store(event ccr.ElectionEventContext) error {
	record := encodable.FromElectionEvent(event)
	err := operation.RetryOnConflictTx(e.db, transaction.Update, func(tx *transaction.Tx) error {
		err := operation.InsertOrMatchElectionEvent(&record)(tx.DBTxn)
		if err != nil {
			return err
		}
		tx.OnSucceed(func() {
			e.cache.Insert(event.ElectionEventID, event)
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not store election event %s: %w", event.ElectionEventID, err)
	}
	return nil
}

func (e *ElectionEvents) ByID(electionEventID string) (ccr.ElectionEventContext, error) {
	event, err := e.cache.Get(electionEventID)
	if err != nil {
		return ccr.ElectionEventContext{}, fmt.Errorf("could not retrieve election event %s: %w", electionEventID, err)
	}
	return event, nil
}

type NodeKeys struct {
	db *badger.DB
}

var _ storage.NodeKeys = (*NodeKeys)(nil)

func NewNodeKeys(db *badger.DB) *NodeKeys {
	return &NodeKeys{db: db}
}

func (n *NodeKeys) Store(keys ccr.NodeKeys) error {
	record := encodable.FromNodeKeys(keys)
	err := operation.RetryOnConflict(n.db.Update, operation.InsertNodeKeys(&record))
	if err != nil {
		return fmt.Errorf("could not store keys of node %s for election event %s: %w", keys.NodeID, keys.ElectionEventID, err)
	}
	return nil
}

func (n *NodeKeys) ByElectionEventID(grp *group.GqGroup, electionEventID string, nodeID ccr.NodeID) (ccr.NodeKeys, error) {
	var record encodable.NodeKeys
	err := n.db.View(operation.RetrieveNodeKeys(electionEventID, nodeID, &record))
	if err != nil {
		return ccr.NodeKeys{}, fmt.Errorf("could not retrieve keys of node %s for election event %s: %w", nodeID, electionEventID, err)
	}
	keys, err := record.ToNodeKeys(grp)
	if err != nil {
		return ccr.NodeKeys{}, fmt.Errorf("could not decode keys of node %s: %w", nodeID, err)
	}
	return keys, nil
}

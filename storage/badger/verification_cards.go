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
)

type VerificationCards struct {
	db *badger.DB
}

var _ storage.VerificationCards = (*VerificationCards)(nil)

func NewVerificationCards(db *badger.DB) *VerificationCards {
	return &VerificationCards{db: db}
}

// Store persists the card together with its initial state, in one transaction.
func (v *VerificationCards) Store(card ccr.VerificationCard) error {
	record := encodable.FromVerificationCard(card)
	state := ccr.VerificationCardState{}
	err := operation.RetryOnConflict(v.db.Update, func(tx *badger.Txn) error {
		err := operation.InsertVerificationCard(&record)(tx)
		if err != nil {
			return fmt.Errorf("could not insert card: %w", err)
		}
		err = operation.InsertVerificationCardState(card.VerificationCardID, &state)(tx)
		if err != nil {
			return fmt.Errorf("could not insert card state: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not store verification card %s: %w", card.VerificationCardID, err)
	}
	return nil
}

func (v *VerificationCards) ByID(grp *group.GqGroup, verificationCardID string) (ccr.VerificationCard, error) {
	var record encodable.VerificationCard
	err := v.db.View(operation.RetrieveVerificationCard(verificationCardID, &record))
	if err != nil {
		return ccr.VerificationCard{}, fmt.Errorf("could not retrieve verification card %s: %w", verificationCardID, err)
	}
	card, err := record.ToVerificationCard(grp)
	if err != nil {
		return ccr.VerificationCard{}, fmt.Errorf("could not decode verification card %s: %w", verificationCardID, err)
	}
	return card, nil
}

type VerificationCardSets struct {
	db    *badger.DB
	cache *Cache[string, ccr.VerificationCardSet]
}

var _ storage.VerificationCardSets = (*VerificationCardSets)(nil)

func NewVerificationCardSets(collector module.CacheMetrics, db *badger.DB) *VerificationCardSets {
	retrieve := func(verificationCardSetID string) (ccr.VerificationCardSet, error) {
		var record encodable.VerificationCardSet
		err := db.View(operation.RetrieveVerificationCardSet(verificationCardSetID, &record))
		if err != nil {
			return ccr.VerificationCardSet{}, err
		}
		return record.ToVerificationCardSet()
	}

	return &VerificationCardSets{
		db: db,
		cache: newCache[string, ccr.VerificationCardSet](collector, metrics.ResourceVerificationCardSet,
			withRetrieve(retrieve)),
	}
}

func (v *VerificationCardSets) Store(set ccr.VerificationCardSet) error {
	record := encodable.FromVerificationCardSet(set)
	err := operation.RetryOnConflict(v.db.Update, operation.InsertOrMatchVerificationCardSet(&record))
	if err != nil {
		return fmt.Errorf("could not store verification card set %s: %w", set.VerificationCardSetID, err)
	}
	v.cache.Insert(set.VerificationCardSetID, set)
	return nil
}

func (v *VerificationCardSets) ByID(verificationCardSetID string) (ccr.VerificationCardSet, error) {
	set, err := v.cache.Get(verificationCardSetID)
	if err != nil {
		return ccr.VerificationCardSet{}, fmt.Errorf("could not retrieve verification card set %s: %w", verificationCardSetID, err)
	}
	return set, nil
}

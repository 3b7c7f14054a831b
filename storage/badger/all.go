package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/storage"
)

func InitAll(metrics module.CacheMetrics, db *badger.DB) *storage.All {
	return &storage.All{
		Commands:               NewCommands(db),
		ElectionEvents:         NewElectionEvents(metrics, db),
		NodeKeys:               NewNodeKeys(db),
		VerificationCardSets:   NewVerificationCardSets(metrics, db),
		VerificationCards:      NewVerificationCards(db),
		VerificationCardStates: NewVerificationCardStates(db),
		AllowLists:             NewAllowLists(db),
		Contributions:          NewContributions(db),
	}
}

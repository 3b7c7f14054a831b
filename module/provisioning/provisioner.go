// Package provisioning registers the election material a node needs before
// votes arrive: the election event, this node's keys, the verification card
// sets with their allow-lists and the verification cards.
package provisioning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/storage"
)

// AllowListLockName returns the name of the lock serializing appends to the
// allow-list of a card set.
func AllowListLockName(verificationCardSetID string) string {
	return "allow-list-" + verificationCardSetID
}

type Provisioner struct {
	log        zerolog.Logger
	nodeID     ccr.NodeID
	maxOptions int
	storage    *storage.All
	lock       lock.DistributedLock
	lockConfig lock.RetryConfig
	metrics    module.LockMetrics
}

func New(
	log zerolog.Logger,
	nodeID ccr.NodeID,
	maxOptions int,
	all *storage.All,
	distributedLock lock.DistributedLock,
	lockConfig lock.RetryConfig,
	metrics module.LockMetrics,
) *Provisioner {
	return &Provisioner{
		log:        log.With().Str("component", "provisioning").Str("node_id", nodeID.String()).Logger(),
		nodeID:     nodeID,
		maxOptions: maxOptions,
		storage:    all,
		lock:       distributedLock,
		lockConfig: lockConfig,
		metrics:    metrics,
	}
}

// RegisterElectionEvent stores the public context of an election event.
// Expected errors during normal operations:
//   - ccr.ValidationError if the number of options differs from the configured maximum
//   - storage.ErrDataMismatch if a different context was registered before
func (p *Provisioner) RegisterElectionEvent(event ccr.ElectionEventContext) error {
	if event.MaxOptions() != p.maxOptions {
		return ccr.NewValidationErrorf("election event %s allows %d options, configured maximum is %d", event.ElectionEventID, event.MaxOptions(), p.maxOptions)
	}
	err := p.storage.ElectionEvents.Store(event)
	if err != nil {
		return err
	}
	p.log.Info().Str("election_event_id", event.ElectionEventID).Int("max_options", event.MaxOptions()).Msg("election event registered")
	return nil
}

// RegisterNodeKeys stores this node's secret keys of a registered election event.
// Expected errors during normal operations:
//   - ccr.ValidationError if the keys belong to another node or do not fit the event
//   - storage.ErrNotFound if the election event is not registered
//   - storage.ErrAlreadyExists if keys were registered before
func (p *Provisioner) RegisterNodeKeys(keys ccr.NodeKeys) error {
	if keys.NodeID != p.nodeID {
		return ccr.NewValidationErrorf("keys of node %d cannot be registered at node %d", keys.NodeID, p.nodeID)
	}
	event, err := p.storage.ElectionEvents.ByID(keys.ElectionEventID)
	if err != nil {
		return err
	}
	keyPair := keys.ChoiceReturnCodesEncryptionKeyPair
	if !keyPair.PublicKey.Group().Equals(event.Group) {
		return ccr.NewValidationErrorf("keys do not belong to the group of election event %s", event.ElectionEventID)
	}
	if keyPair.PublicKey.Size() != event.MaxOptions() {
		return ccr.NewValidationErrorf("choice return codes encryption key has size %d, election event %s allows %d options", keyPair.PublicKey.Size(), event.ElectionEventID, event.MaxOptions())
	}
	err = p.storage.NodeKeys.Store(keys)
	if err != nil {
		return err
	}
	p.log.Info().Str("election_event_id", keys.ElectionEventID).Msg("node keys registered")
	return nil
}

// RegisterVerificationCardSet stores the correctness information of a card set.
// Expected errors during normal operations:
//   - ccr.ValidationError if the ids are malformed or psi exceeds the options of the event
//   - storage.ErrNotFound if the election event is not registered
//   - storage.ErrDataMismatch if a different card set was registered before
func (p *Provisioner) RegisterVerificationCardSet(set ccr.VerificationCardSet) error {
	err := ccr.ValidateIdentifiers(
		"election event id", set.ElectionEventID,
		"verification card set id", set.VerificationCardSetID,
	)
	if err != nil {
		return err
	}
	event, err := p.storage.ElectionEvents.ByID(set.ElectionEventID)
	if err != nil {
		return err
	}
	psi := set.CombinedCorrectnessInformation.Psi()
	if psi == 0 || psi > event.MaxOptions() {
		return ccr.NewValidationErrorf("verification card set %s has %d selections, election event allows %d", set.VerificationCardSetID, psi, event.MaxOptions())
	}
	err = p.storage.VerificationCardSets.Store(set)
	if err != nil {
		return err
	}
	p.log.Info().
		Str("election_event_id", set.ElectionEventID).
		Str("verification_card_set_id", set.VerificationCardSetID).
		Int("psi", psi).
		Msg("verification card set registered")
	return nil
}

// RegisterVerificationCards stores the cards of a registered card set and
// creates their states. Registering an identical card again is a no-op.
// Expected errors during normal operations:
//   - ccr.ValidationError if a card belongs to another set or group
//   - storage.ErrNotFound if the election event or card set is not registered
//   - storage.ErrDataMismatch if a card was registered before with another key
func (p *Provisioner) RegisterVerificationCards(electionEventID, verificationCardSetID string, cards []ccr.VerificationCard) error {
	event, err := p.storage.ElectionEvents.ByID(electionEventID)
	if err != nil {
		return err
	}
	set, err := p.storage.VerificationCardSets.ByID(verificationCardSetID)
	if err != nil {
		return err
	}
	if set.ElectionEventID != electionEventID {
		return ccr.NewValidationErrorf("verification card set %s belongs to election event %s", verificationCardSetID, set.ElectionEventID)
	}
	for _, card := range cards {
		if card.ElectionEventID != electionEventID || card.VerificationCardSetID != verificationCardSetID {
			return ccr.NewValidationErrorf("verification card %s does not belong to verification card set %s", card.VerificationCardID, verificationCardSetID)
		}
		if !card.PublicKey.IsValid() || !card.PublicKey.Group().Equals(event.Group) {
			return ccr.NewValidationErrorf("public key of verification card %s does not belong to the encryption group", card.VerificationCardID)
		}
	}

	registered := 0
	for _, card := range cards {
		err := p.storage.VerificationCards.Store(card)
		if errors.Is(err, storage.ErrAlreadyExists) {
			stored, err := p.storage.VerificationCards.ByID(event.Group, card.VerificationCardID)
			if err != nil {
				return err
			}
			if !stored.PublicKey.Equals(card.PublicKey) || stored.VerificationCardSetID != card.VerificationCardSetID {
				return fmt.Errorf("verification card %s was registered with different content: %w", card.VerificationCardID, storage.ErrDataMismatch)
			}
			continue
		}
		if err != nil {
			return err
		}
		registered++
	}
	p.log.Info().
		Str("verification_card_set_id", verificationCardSetID).
		Int("registered", registered).
		Int("total", len(cards)).
		Msg("verification cards registered")
	return nil
}

// AppendAllowList appends a chunk of base64 encoded entries to the allow-list
// of a registered card set. Appends to one card set are serialized by a named
// lock acquired with bounded retries.
// Expected errors during normal operations:
//   - ccr.ValidationError if an entry is not base64 encoded
//   - storage.ErrNotFound if the card set is not registered
//   - lock.ErrLockTimeout if the lock could not be acquired
func (p *Provisioner) AppendAllowList(ctx context.Context, verificationCardSetID string, entries []string) error {
	if _, err := p.storage.VerificationCardSets.ByID(verificationCardSetID); err != nil {
		return err
	}
	for i, entry := range entries {
		if _, err := base64.StdEncoding.DecodeString(entry); err != nil || entry == "" {
			return ccr.NewValidationErrorf("allow-list entry %d is not base64 encoded", i)
		}
	}

	name := AllowListLockName(verificationCardSetID)
	guard, err := lock.AcquireWithRetry(ctx, p.lock, name, p.lockConfig, p.metrics)
	if err != nil {
		return err
	}
	defer guard.Release()

	err = p.storage.AllowLists.Append(verificationCardSetID, entries)
	if err != nil {
		return err
	}
	p.log.Debug().
		Str("verification_card_set_id", verificationCardSetID).
		Int("entries", len(entries)).
		Msg("allow-list chunk appended")
	return nil
}

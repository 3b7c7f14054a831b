package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/module/provisioning"
	"github.com/evote-ccr/control-component/storage"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
)

var flagProvisioningFile string

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Import the provisioning file of an election event",
	RunE:  provision,
}

func init() {
	provisionCmd.Flags().StringVar(&flagProvisioningFile, "file", "", "JSON provisioning file")
	_ = provisionCmd.MarkFlagRequired("file")
}

// ProvisioningFile is the setup of an election event for one node.
type ProvisioningFile struct {
	ElectionEvent encodable.ElectionEvent `json:"electionEvent"`
	NodeKeys      *encodable.NodeKeys     `json:"nodeKeys,omitempty"`
	CardSets      []CardSetFile           `json:"cardSets"`
}

type CardSetFile struct {
	CardSet encodable.VerificationCardSet `json:"cardSet"`
	Cards   []encodable.VerificationCard  `json:"cards"`
	// AllowList is appended in chunks of the given size.
	AllowList []string `json:"allowList"`
}

const allowListChunkSize = 10000

func provision(_ *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	nodeID, err := config.nodeID()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(flagProvisioningFile)
	if err != nil {
		return fmt.Errorf("could not read provisioning file: %w", err)
	}
	var file ProvisioningFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		return fmt.Errorf("could not decode provisioning file: %w", err)
	}

	db, err := config.openDB(false)
	if err != nil {
		return err
	}
	defer db.Close()

	collector := metrics.NewNoopCollector()
	provisioner := provisioning.New(log, nodeID, config.MaxOptions, bstorage.InitAll(collector, db), lock.NewRegistry(), config.lockConfig(), collector)
	return importFile(context.Background(), provisioner, file)
}

// importFile registers the content of the file. An interrupted import can be
// repeated; node keys that are already registered are never replaced.
func importFile(ctx context.Context, provisioner *provisioning.Provisioner, file ProvisioningFile) error {
	event, err := file.ElectionEvent.ToElectionEvent()
	if err != nil {
		return fmt.Errorf("invalid election event: %w", err)
	}
	err = provisioner.RegisterElectionEvent(event)
	if err != nil {
		return fmt.Errorf("could not register election event: %w", err)
	}

	if file.NodeKeys != nil {
		keys, err := file.NodeKeys.ToNodeKeys(event.Group)
		if err != nil {
			return fmt.Errorf("invalid node keys: %w", err)
		}
		err = provisioner.RegisterNodeKeys(keys)
		if errors.Is(err, storage.ErrAlreadyExists) {
			log.Warn().Str("election_event_id", event.ElectionEventID).Msg("node keys already registered, keeping the stored keys")
		} else if err != nil {
			return fmt.Errorf("could not register node keys: %w", err)
		}
	}

	for _, setFile := range file.CardSets {
		set, err := setFile.CardSet.ToVerificationCardSet()
		if err != nil {
			return fmt.Errorf("invalid verification card set: %w", err)
		}
		err = provisioner.RegisterVerificationCardSet(set)
		if err != nil {
			return fmt.Errorf("could not register verification card set %s: %w", set.VerificationCardSetID, err)
		}

		cards := make([]ccr.VerificationCard, 0, len(setFile.Cards))
		for _, c := range setFile.Cards {
			card, err := c.ToVerificationCard(event.Group)
			if err != nil {
				return fmt.Errorf("invalid verification card %s: %w", c.VerificationCardID, err)
			}
			cards = append(cards, card)
		}
		err = provisioner.RegisterVerificationCards(event.ElectionEventID, set.VerificationCardSetID, cards)
		if err != nil {
			return fmt.Errorf("could not register verification cards of set %s: %w", set.VerificationCardSetID, err)
		}

		for start := 0; start < len(setFile.AllowList); start += allowListChunkSize {
			end := start + allowListChunkSize
			if end > len(setFile.AllowList) {
				end = len(setFile.AllowList)
			}
			err = provisioner.AppendAllowList(ctx, set.VerificationCardSetID, setFile.AllowList[start:end])
			if err != nil {
				return fmt.Errorf("could not append allow-list of set %s: %w", set.VerificationCardSetID, err)
			}
		}

		log.Info().
			Str("verification_card_set_id", set.VerificationCardSetID).
			Int("cards", len(cards)).
			Int("allow_list", len(setFile.AllowList)).
			Msg("verification card set imported")
	}
	return nil
}

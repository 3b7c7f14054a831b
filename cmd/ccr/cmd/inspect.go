package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evote-ccr/control-component/model/ccr"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
)

var (
	flagContextID     string
	flagContext       string
	flagCorrelationID string
)

var inspectCommandCmd = &cobra.Command{
	Use:   "inspect-command",
	Short: "Print an entry of the command ledger",
	RunE:  inspectCommand,
}

func init() {
	inspectCommandCmd.Flags().StringVar(&flagContextID, "context-id", "", "context id of the command, usually ee-vcs-vc")
	inspectCommandCmd.Flags().StringVar(&flagContext, "context", ccr.ContextPartialDecryptPCC, "protocol phase of the command")
	inspectCommandCmd.Flags().StringVar(&flagCorrelationID, "correlation-id", "", "correlation id of the request")
	_ = inspectCommandCmd.MarkFlagRequired("context-id")
	_ = inspectCommandCmd.MarkFlagRequired("correlation-id")
}

type commandView struct {
	Key             string     `json:"key"`
	Completed       bool       `json:"completed"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	RequestPayload  string     `json:"requestPayload"`
	ResponsePayload string     `json:"responsePayload,omitempty"`
}

func newCommandView(command *ccr.Command) commandView {
	view := commandView{
		Key:             command.Key.String(),
		Completed:       command.IsCompleted(),
		CreatedAt:       command.CreatedAt,
		RequestPayload:  hex.EncodeToString(command.RequestPayload),
		ResponsePayload: hex.EncodeToString(command.ResponsePayload),
	}
	if command.IsCompleted() {
		completedAt := command.CompletedAt
		view.CompletedAt = &completedAt
	}
	return view
}

func inspectCommand(cmd *cobra.Command, _ []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	nodeID, err := config.nodeID()
	if err != nil {
		return err
	}
	key, err := ccr.NewCommandKey(flagContextID, flagContext, flagCorrelationID, nodeID)
	if err != nil {
		return err
	}

	db, err := config.openDB(true)
	if err != nil {
		return err
	}
	defer db.Close()

	command, err := bstorage.NewCommands(db).ByKey(key)
	if err != nil {
		return fmt.Errorf("could not retrieve command %s: %w", key, err)
	}

	encoded, err := json.MarshalIndent(newCommandView(command), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

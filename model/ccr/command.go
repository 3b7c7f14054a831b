package ccr

import (
	"fmt"
	"time"
)

// Context tags of the exactly-once ledger, one per protocol phase.
const (
	ContextPartialDecryptPCC = "partial-decrypt-pcc"
	ContextCreateLCCShare    = "create-lcc-share"
)

// CommandKey identifies one logical request in the exactly-once ledger.
type CommandKey struct {
	ContextID     string
	Context       string
	CorrelationID string
	NodeID        NodeID
}

// NewCommandKey validates that all key fields are set.
func NewCommandKey(contextID, context, correlationID string, nodeID NodeID) (CommandKey, error) {
	if contextID == "" || context == "" || correlationID == "" {
		return CommandKey{}, NewValidationErrorf("context id, context and correlation id must not be empty")
	}
	if err := nodeID.Validate(); err != nil {
		return CommandKey{}, err
	}
	return CommandKey{
		ContextID:     contextID,
		Context:       context,
		CorrelationID: correlationID,
		NodeID:        nodeID,
	}, nil
}

// CardContextID returns the conventional context id for a verification card:
// electionEventId-verificationCardSetId-verificationCardId.
func CardContextID(electionEventID, verificationCardSetID, verificationCardID string) string {
	return fmt.Sprintf("%s-%s-%s", electionEventID, verificationCardSetID, verificationCardID)
}

// String implements fmt.Stringer.
func (k CommandKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", k.ContextID, k.Context, k.CorrelationID, k.NodeID)
}

// Command is an entry of the exactly-once ledger. RequestPayload is immutable
// after the first write; ResponsePayload is written once, after the task
// succeeded, together with Completed.
type Command struct {
	Key             CommandKey
	RequestPayload  []byte
	ResponsePayload []byte
	Completed       bool
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// IsCompleted reports whether a response has been recorded.
func (c *Command) IsCompleted() bool {
	return c.Completed
}

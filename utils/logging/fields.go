package logging

import (
	"github.com/rs/zerolog"

	"github.com/evote-ccr/control-component/model/ccr"
)

func Card(log zerolog.Logger, ctx ccr.EncryptionContext, verificationCardID string) zerolog.Logger {
	return log.With().
		Str("election_event_id", ctx.ElectionEventID).
		Str("verification_card_set_id", ctx.VerificationCardSetID).
		Str("verification_card_id", verificationCardID).
		Str("node_id", ctx.NodeID.String()).
		Logger()
}

func Command(log zerolog.Logger, key ccr.CommandKey) zerolog.Logger {
	return log.With().
		Str("context_id", key.ContextID).
		Str("context", key.Context).
		Str("correlation_id", key.CorrelationID).
		Str("node_id", key.NodeID.String()).
		Logger()
}

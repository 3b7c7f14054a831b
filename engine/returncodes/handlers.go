package returncodes

import (
	"fmt"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/messages"
	"github.com/evote-ccr/control-component/module/returncodes"
	"github.com/evote-ccr/control-component/network"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/logging"
)

// cardContext is the provisioned data a per-card request refers to.
type cardContext struct {
	ctx   ccr.EncryptionContext
	event ccr.ElectionEventContext
	set   ccr.VerificationCardSet
	card  ccr.VerificationCard
	keys  ccr.NodeKeys
}

// loadCard loads the provisioned data of the card and checks that the card
// belongs to the card set and election event named in the request.
func (e *Engine) loadCard(ids messages.CardIDs) (cardContext, error) {
	event, err := e.storage.ElectionEvents.ByID(ids.ElectionEventID)
	if err != nil {
		return cardContext{}, unknownAsInvalid(err, "election event", ids.ElectionEventID)
	}
	grp := event.Group

	set, err := e.storage.VerificationCardSets.ByID(ids.VerificationCardSetID)
	if err != nil {
		return cardContext{}, unknownAsInvalid(err, "verification card set", ids.VerificationCardSetID)
	}
	if set.ElectionEventID != ids.ElectionEventID {
		return cardContext{}, ccr.NewValidationErrorf("verification card set %s does not belong to election event %s", ids.VerificationCardSetID, ids.ElectionEventID)
	}

	card, err := e.storage.VerificationCards.ByID(grp, ids.VerificationCardID)
	if err != nil {
		return cardContext{}, unknownAsInvalid(err, "verification card", ids.VerificationCardID)
	}
	if card.VerificationCardSetID != ids.VerificationCardSetID || card.ElectionEventID != ids.ElectionEventID {
		return cardContext{}, ccr.NewValidationErrorf("verification card %s does not belong to verification card set %s", ids.VerificationCardID, ids.VerificationCardSetID)
	}

	keys, err := e.storage.NodeKeys.ByElectionEventID(grp, ids.ElectionEventID, e.nodeID)
	if err != nil {
		return cardContext{}, unknownAsInvalid(err, "node keys of election event", ids.ElectionEventID)
	}

	ctx, err := ccr.NewEncryptionContext(e.nodeID, ids.ElectionEventID, ids.VerificationCardSetID, grp)
	if err != nil {
		return cardContext{}, err
	}
	return cardContext{ctx: ctx, event: event, set: set, card: card, keys: keys}, nil
}

func (e *Engine) commandKey(envelope *network.Envelope, ids messages.CardIDs, context string) (ccr.CommandKey, error) {
	contextID := ccr.CardContextID(ids.ElectionEventID, ids.VerificationCardSetID, ids.VerificationCardID)
	return ccr.NewCommandKey(contextID, context, envelope.CorrelationID, e.nodeID)
}

// onPartialDecryptPCC verifies the ballot and partially decrypts its encrypted
// partial choice return codes, exactly once per command.
func (e *Engine) onPartialDecryptPCC(envelope *network.Envelope, req *messages.PartialDecryptPCCRequest) ([]byte, error) {
	err := messages.Validate(req)
	if err != nil {
		return nil, err
	}
	card, err := e.loadCard(req.CardIDs)
	if err != nil {
		return nil, err
	}
	ballot, err := req.ToBallot(card.event.Group)
	if err != nil {
		return nil, err
	}
	key, err := e.commandKey(envelope, req.CardIDs, ccr.ContextPartialDecryptPCC)
	if err != nil {
		return nil, err
	}

	log := logging.Card(e.log, card.ctx, req.VerificationCardID)
	return e.commands.Process(key, envelope.Payload, func(tx *transaction.Tx) ([]byte, error) {
		valid, err := returncodes.VerifyBallotCCR(card.ctx, returncodes.VerifyBallotInput{
			VerificationCardID:                   req.VerificationCardID,
			EncryptedVote:                        ballot.EncryptedVote,
			ExponentiatedEncryptedVote:           ballot.ExponentiatedEncryptedVote,
			EncryptedPartialChoiceReturnCodes:    ballot.EncryptedPartialChoiceReturnCodes,
			VerificationCardPublicKey:            card.card.PublicKey,
			ElectionPublicKey:                    card.event.ElectionPublicKey,
			ChoiceReturnCodesEncryptionPublicKey: card.event.ChoiceReturnCodesEncryptionPublicKey,
			ExponentiationProof:                  ballot.ExponentiationProof,
			PlaintextEqualityProof:               ballot.PlaintextEqualityProof,
		})
		if err != nil {
			return nil, err
		}
		if !valid {
			log.Error().Msg("ballot proofs do not verify")
			return nil, returncodes.NewProtocolViolationErrorf("ballot proofs of verification card %s do not verify", req.VerificationCardID)
		}

		contribution, err := e.protocol.PartialDecryptPCC(tx, card.ctx, returncodes.PartialDecryptPCCInput{
			VerificationCardID:                req.VerificationCardID,
			EncryptedVote:                     ballot.EncryptedVote,
			ExponentiatedEncryptedVote:        ballot.ExponentiatedEncryptedVote,
			EncryptedPartialChoiceReturnCodes: ballot.EncryptedPartialChoiceReturnCodes,
			KeyPair:                           card.keys.ChoiceReturnCodesEncryptionKeyPair,
		})
		if err != nil {
			return nil, err
		}

		response := messages.NewPartialDecryptPCCResponse(req.CardIDs, contribution)
		_, payload, err := e.codec.Encode(&response)
		if err != nil {
			return nil, fmt.Errorf("could not encode response: %w", err)
		}
		return payload, nil
	})
}

// onLCCShare combines the partial decryptions of all nodes and creates this
// node's long choice return code share, exactly once per command.
func (e *Engine) onLCCShare(envelope *network.Envelope, req *messages.LCCShareRequest) ([]byte, error) {
	err := messages.Validate(req)
	if err != nil {
		return nil, err
	}
	card, err := e.loadCard(req.CardIDs)
	if err != nil {
		return nil, err
	}
	e2, contributions, err := req.Decode(card.event.Group)
	if err != nil {
		return nil, err
	}
	key, err := e.commandKey(envelope, req.CardIDs, ccr.ContextCreateLCCShare)
	if err != nil {
		return nil, err
	}

	return e.commands.Process(key, envelope.Payload, func(tx *transaction.Tx) ([]byte, error) {
		share, err := e.service.GenerateLCCShare(tx, card.ctx, returncodes.LCCShareInput{
			VerificationCardID:                req.VerificationCardID,
			EncryptedPartialChoiceReturnCodes: e2,
			Contributions:                     contributions,
			ReturnCodesGenerationSecretKey:    card.keys.ReturnCodesGenerationSecretKey,
			CorrectnessInformation:            card.set.CombinedCorrectnessInformation,
		})
		if err != nil {
			return nil, err
		}

		response := messages.FromLCCShare(share)
		_, payload, err := e.codec.Encode(&response)
		if err != nil {
			return nil, fmt.Errorf("could not encode response: %w", err)
		}
		return payload, nil
	})
}

package returncodes

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/logging"
)

// LCCShareInput is the input of the long choice return code share phase of one
// verification card: E2 and the contributions of all four nodes.
type LCCShareInput struct {
	VerificationCardID                string
	EncryptedPartialChoiceReturnCodes elgamal.Ciphertext
	Contributions                     []ccr.PartialDecryptionContribution
	ReturnCodesGenerationSecretKey    group.ZqElement
	CorrectnessInformation            ccr.CombinedCorrectnessInformation
}

// LCCShareService orchestrates DecryptPCC and CreateLCCShare over the
// contributions of the four nodes.
type LCCShareService struct {
	log           zerolog.Logger
	protocol      *Protocol
	contributions storage.Contributions
	metrics       module.ReturnCodesMetrics
}

func NewLCCShareService(log zerolog.Logger, protocol *Protocol, contributions storage.Contributions, metrics module.ReturnCodesMetrics) *LCCShareService {
	return &LCCShareService{
		log:           log.With().Str("component", "lcc_share_service").Logger(),
		protocol:      protocol,
		contributions: contributions,
		metrics:       metrics,
	}
}

// GenerateLCCShare selects this node's own contribution, checks it against the
// contribution this node produced, records the contributions of the other
// nodes, decrypts the partial choice return codes and creates the share.
// Expected errors during normal operations:
//   - ccr.ValidationError if the contributions are not exactly one per node or are malformed
//   - ProtocolViolationError if a contribution differs from a stored one, codes
//     repeat or a code is not allow-listed
//   - storage.InvalidStateTransitionError if the share was already created
func (s *LCCShareService) GenerateLCCShare(tx *transaction.Tx, ctx ccr.EncryptionContext, in LCCShareInput) (share ccr.LCCShare, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			s.metrics.StepRejected(metrics.StepLCCShareService, Category(err))
			return
		}
		s.metrics.StepDuration(metrics.StepLCCShareService, time.Since(start))
	}()

	if err := ccr.ValidateIdentifier("verification card id", in.VerificationCardID); err != nil {
		return ccr.LCCShare{}, err
	}
	log := logging.Card(s.log, ctx, in.VerificationCardID)

	own, others, err := ccr.SplitContributions(ctx.NodeID, in.Contributions)
	if err != nil {
		return ccr.LCCShare{}, err
	}

	var stored ccr.PartialDecryptionContribution
	err = s.contributions.ByNodeTx(ctx.Group, in.VerificationCardID, ctx.NodeID, &stored)(tx)
	if errors.Is(err, storage.ErrNotFound) {
		log.Error().Msg("received own contribution for a card this node never partially decrypted")
		return ccr.LCCShare{}, NewProtocolViolationErrorf("node %d has not partially decrypted card %s", ctx.NodeID, in.VerificationCardID)
	}
	if err != nil {
		return ccr.LCCShare{}, fmt.Errorf("could not retrieve own contribution: %w", err)
	}
	if !stored.Equals(own) {
		log.Error().Msg("received own contribution differs from the stored one")
		return ccr.LCCShare{}, NewProtocolViolationErrorf("own contribution of node %d for card %s differs from the stored one", ctx.NodeID, in.VerificationCardID)
	}

	othersGammas := make([][]group.GqElement, 0, len(others))
	for _, contribution := range others {
		err = s.contributions.StoreTx(in.VerificationCardID, contribution)(tx)
		if errors.Is(err, storage.ErrDataMismatch) {
			log.Error().Str("contributor", contribution.NodeID.String()).Msg("contribution differs from the stored one")
			return ccr.LCCShare{}, NewProtocolViolationErrorf("contribution of node %d for card %s differs from the stored one", contribution.NodeID, in.VerificationCardID)
		}
		if err != nil {
			return ccr.LCCShare{}, fmt.Errorf("could not store contribution of node %d: %w", contribution.NodeID, err)
		}
		othersGammas = append(othersGammas, contribution.ExponentiatedGammas)
	}

	decryptStart := time.Now()
	pCC, err := DecryptPCC(ctx, own.ExponentiatedGammas, othersGammas, in.EncryptedPartialChoiceReturnCodes)
	if err != nil {
		s.metrics.StepRejected(metrics.StepDecrypt, Category(err))
		return ccr.LCCShare{}, fmt.Errorf("could not decrypt partial choice return codes: %w", err)
	}
	s.metrics.StepDuration(metrics.StepDecrypt, time.Since(decryptStart))

	output, err := s.protocol.CreateLCCShare(tx, ctx, CreateLCCShareInput{
		VerificationCardID:                in.VerificationCardID,
		DecryptedPartialChoiceReturnCodes: pCC,
		ReturnCodesGenerationSecretKey:    in.ReturnCodesGenerationSecretKey,
		CorrectnessInformation:            in.CorrectnessInformation,
	})
	if err != nil {
		return ccr.LCCShare{}, err
	}

	return ccr.LCCShare{
		RequestID:             uuid.New().String(),
		ElectionEventID:       ctx.ElectionEventID,
		VerificationCardSetID: ctx.VerificationCardSetID,
		VerificationCardID:    in.VerificationCardID,
		NodeID:                ctx.NodeID,
		LCCShareOutput:        output,
	}, nil
}

package returncodes

import (
	"fmt"
	"time"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
	"github.com/evote-ccr/control-component/crypto/kdf"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/logging"
)

const (
	createLCCShareTag    = "CreateLCCShare"
	generationKeyInfoTag = "VoterChoiceReturnCodeGeneration"
)

// CreateLCCShareInput is the input of the long choice return code share creation.
type CreateLCCShareInput struct {
	VerificationCardID                string
	DecryptedPartialChoiceReturnCodes []group.GqElement
	// ReturnCodesGenerationSecretKey is this node's return codes generation secret key.
	ReturnCodesGenerationSecretKey group.ZqElement
	CorrectnessInformation         ccr.CombinedCorrectnessInformation
}

// Validate checks identifiers, sizes and groups of the input against ctx.
func (in CreateLCCShareInput) Validate(ctx ccr.EncryptionContext) error {
	if err := ccr.ValidateIdentifier("verification card id", in.VerificationCardID); err != nil {
		return err
	}
	psi := in.CorrectnessInformation.Psi()
	if psi == 0 || len(in.DecryptedPartialChoiceReturnCodes) != psi {
		return ccr.NewValidationErrorf("expected %d decrypted partial choice return codes, got %d", psi, len(in.DecryptedPartialChoiceReturnCodes))
	}
	if err := ctx.CheckElements("decrypted partial choice return codes", in.DecryptedPartialChoiceReturnCodes...); err != nil {
		return err
	}
	return ctx.CheckExponents("return codes generation secret key", in.ReturnCodesGenerationSecretKey)
}

// DeriveGenerationKey derives the per-card return codes generation exponent
// k_j,id = KDFToZq(sk_j, ["VoterChoiceReturnCodeGeneration", ee, vcs, vc], q).
func DeriveGenerationKey(ctx ccr.EncryptionContext, secretKey group.ZqElement, verificationCardID string) (group.ZqElement, error) {
	info := []string{generationKeyInfoTag, ctx.ElectionEventID, ctx.VerificationCardSetID, verificationCardID}
	k, err := kdf.KDFToZq(hash.IntegerToByteArray(secretKey.Value()), info, ctx.Group.Q())
	if err != nil {
		return group.ZqElement{}, fmt.Errorf("could not derive generation key: %w", err)
	}
	return ctx.Group.ZqGroup().Element(k)
}

// CreateLCCShare hashes the decrypted partial choice return codes, checks
// every hashed code against the allow-list of the card set and exponentiates
// them with the per-card generation key. The card is flagged within tx.
// Expected errors during normal operations:
//   - ccr.ValidationError if the input is malformed
//   - ProtocolViolationError if codes repeat or a code is not allow-listed
//   - storage.InvalidStateTransitionError if the share was already created
//   - storage.ErrNotFound if the card is unknown
func (p *Protocol) CreateLCCShare(tx *transaction.Tx, ctx ccr.EncryptionContext, in CreateLCCShareInput) (output ccr.LCCShareOutput, err error) {
	start := time.Now()
	defer func() { p.observe(metrics.StepCreateLCCShare, start, err) }()

	if err := in.Validate(ctx); err != nil {
		return ccr.LCCShareOutput{}, err
	}
	log := logging.Card(p.log, ctx, in.VerificationCardID)
	pCC := in.DecryptedPartialChoiceReturnCodes

	if !group.AllDistinct(pCC) {
		log.Error().Msg("decrypted partial choice return codes are not distinct")
		return ccr.LCCShareOutput{}, NewProtocolViolationErrorf("decrypted partial choice return codes of card %s are not distinct", in.VerificationCardID)
	}

	var state ccr.VerificationCardState
	err = p.states.RetrieveTx(in.VerificationCardID, &state)(tx)
	if err != nil {
		return ccr.LCCShareOutput{}, fmt.Errorf("could not retrieve state of verification card: %w", err)
	}
	next := state
	next.LCCShareCreated = true
	if state.LCCShareCreated {
		log.Error().Msg("long choice return code share was already created")
		return ccr.LCCShareOutput{}, storage.NewInvalidStateTransitionErrorf(in.VerificationCardID, state, next, "long choice return code share was already created")
	}

	k, err := DeriveGenerationKey(ctx, in.ReturnCodesGenerationSecretKey, in.VerificationCardID)
	if err != nil {
		return ccr.LCCShareOutput{}, err
	}
	generator := ctx.Group.Generator()
	publicKey := generator.Exponentiate(k)

	hashed := make([]group.GqElement, 0, len(pCC))
	share := make([]group.GqElement, 0, len(pCC))
	for i, code := range pCC {
		hpCC, err := hash.HashAndSquare(code.Value(), ctx.Group)
		if err != nil {
			return ccr.LCCShareOutput{}, fmt.Errorf("could not hash partial choice return code %d: %w", i, err)
		}
		correctnessID, err := in.CorrectnessInformation.CorrectnessID(i)
		if err != nil {
			return ccr.LCCShareOutput{}, err
		}
		entry, err := ccr.AllowListKey(hpCC, in.VerificationCardID, ctx.ElectionEventID, correctnessID)
		if err != nil {
			return ccr.LCCShareOutput{}, err
		}
		var allowed bool
		err = p.allowLists.ContainsTx(ctx.VerificationCardSetID, entry, &allowed)(tx)
		if err != nil {
			return ccr.LCCShareOutput{}, fmt.Errorf("could not look up allow-list: %w", err)
		}
		if !allowed {
			log.Error().Int("position", i).Msg("hashed partial choice return code is not allow-listed")
			return ccr.LCCShareOutput{}, NewProtocolViolationErrorf("hashed partial choice return code %d of card %s is not in the allow-list", i, in.VerificationCardID)
		}
		hashed = append(hashed, hpCC)
		share = append(share, hpCC.Exponentiate(k))
	}

	aux := []string{ctx.ElectionEventID, in.VerificationCardID, createLCCShareTag, ctx.NodeID.String()}
	proof, err := zkp.GenExponentiationProof(
		append([]group.GqElement{generator}, hashed...),
		k,
		append([]group.GqElement{publicKey}, share...),
		aux,
	)
	if err != nil {
		return ccr.LCCShareOutput{}, fmt.Errorf("could not generate exponentiation proof: %w", err)
	}

	output, err = ccr.NewLCCShareOutput(hashed, share, publicKey, proof)
	if err != nil {
		return ccr.LCCShareOutput{}, fmt.Errorf("inconsistent long choice return code share: %w", err)
	}

	err = p.states.UpdateIfVersionTx(in.VerificationCardID, state.Version, next)(tx)
	if err != nil {
		return ccr.LCCShareOutput{}, fmt.Errorf("could not flag long choice return code share as created: %w", err)
	}

	log.Info().Int("psi", len(pCC)).Msg("long choice return code share created")
	return output, nil
}

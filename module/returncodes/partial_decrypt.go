package returncodes

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/logging"
)

const partialDecryptTag = "PartialDecryptPCC"

// PartialDecryptPCCInput is the input of the partial decryption of the
// encrypted partial choice return codes by this node.
type PartialDecryptPCCInput struct {
	VerificationCardID                string
	EncryptedVote                     elgamal.Ciphertext
	ExponentiatedEncryptedVote        elgamal.Ciphertext
	EncryptedPartialChoiceReturnCodes elgamal.Ciphertext
	// KeyPair is this node's choice return codes encryption key pair, of size maxOptions.
	KeyPair elgamal.KeyPair
}

// Validate checks identifiers, sizes and groups of the input against ctx.
func (in PartialDecryptPCCInput) Validate(ctx ccr.EncryptionContext) error {
	if err := ccr.ValidateIdentifier("verification card id", in.VerificationCardID); err != nil {
		return err
	}
	if in.KeyPair.PublicKey.Size() == 0 || in.KeyPair.PublicKey.Size() != in.KeyPair.PrivateKey.Size() {
		return ccr.NewValidationErrorf("choice return codes encryption key pair must have equal non-zero sizes, got %d and %d", in.KeyPair.PublicKey.Size(), in.KeyPair.PrivateKey.Size())
	}
	if err := ctx.CheckElements("choice return codes encryption public key", in.KeyPair.PublicKey...); err != nil {
		return err
	}
	if err := ctx.CheckExponents("choice return codes encryption secret key", in.KeyPair.PrivateKey...); err != nil {
		return err
	}
	return checkBallot(ctx, in.EncryptedVote, in.ExponentiatedEncryptedVote, in.EncryptedPartialChoiceReturnCodes, in.KeyPair.PublicKey.Size())
}

// partialDecryptAuxiliaryData returns
// [ee, vc, E2 phis..., E1.gamma, E1~.gamma, E1~.phi0, E1.phi0, "PartialDecryptPCC", nodeId].
func partialDecryptAuxiliaryData(ctx ccr.EncryptionContext, in PartialDecryptPCCInput) []string {
	e1 := in.EncryptedVote
	e1Tilde := in.ExponentiatedEncryptedVote
	e2 := in.EncryptedPartialChoiceReturnCodes

	aux := make([]string, 0, 8+e2.Size())
	aux = append(aux, ctx.ElectionEventID, in.VerificationCardID)
	aux = append(aux, group.Strings(e2.Phis)...)
	return append(aux,
		e1.Gamma.String(),
		e1Tilde.Gamma.String(),
		e1Tilde.Phi(0).String(),
		e1.Phi(0).String(),
		partialDecryptTag,
		ctx.NodeID.String(),
	)
}

// PartialDecryptPCC partially decrypts E2 with this node's secret key: for
// every position i it computes d_i = E2.gamma^sk_i with a proof that d_i and
// pk_i share the discrete logarithm. The card is flagged as partially
// decrypted and the contribution is stored, both within tx.
// Expected errors during normal operations:
//   - ccr.ValidationError if the input is malformed
//   - storage.InvalidStateTransitionError if the card was already partially decrypted
//   - storage.ErrNotFound if the card is unknown
func (p *Protocol) PartialDecryptPCC(tx *transaction.Tx, ctx ccr.EncryptionContext, in PartialDecryptPCCInput) (contribution ccr.PartialDecryptionContribution, err error) {
	start := time.Now()
	defer func() { p.observe(metrics.StepPartialDecrypt, start, err) }()

	if err := in.Validate(ctx); err != nil {
		return ccr.PartialDecryptionContribution{}, err
	}
	log := logging.Card(p.log, ctx, in.VerificationCardID)

	var state ccr.VerificationCardState
	err = p.states.RetrieveTx(in.VerificationCardID, &state)(tx)
	if err != nil {
		return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not retrieve state of verification card: %w", err)
	}
	next := state
	next.PartiallyDecrypted = true
	if state.PartiallyDecrypted {
		log.Error().Msg("verification card was already partially decrypted")
		return ccr.PartialDecryptionContribution{}, storage.NewInvalidStateTransitionErrorf(in.VerificationCardID, state, next, "encrypted partial choice return codes were already partially decrypted")
	}

	aux := partialDecryptAuxiliaryData(ctx, in)
	e2 := in.EncryptedPartialChoiceReturnCodes
	psi := e2.Size()
	generator := ctx.Group.Generator()

	gammas := make([]group.GqElement, psi)
	proofs := make([]zkp.ExponentiationProof, psi)
	var eg errgroup.Group
	for i := 0; i < psi; i++ {
		i := i
		eg.Go(func() error {
			sk := in.KeyPair.PrivateKey[i]
			gammas[i] = e2.Gamma.Exponentiate(sk)
			proof, err := zkp.GenExponentiationProof(
				[]group.GqElement{generator, e2.Gamma},
				sk,
				[]group.GqElement{in.KeyPair.PublicKey[i], gammas[i]},
				aux,
			)
			if err != nil {
				return fmt.Errorf("could not generate exponentiation proof for position %d: %w", i, err)
			}
			proofs[i] = proof
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return ccr.PartialDecryptionContribution{}, err
	}

	contribution, err = ccr.NewPartialDecryptionContribution(ctx.NodeID, gammas, proofs)
	if err != nil {
		return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not build contribution: %w", err)
	}

	err = p.states.UpdateIfVersionTx(in.VerificationCardID, state.Version, next)(tx)
	if err != nil {
		return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not flag verification card as partially decrypted: %w", err)
	}
	err = p.contributions.StoreTx(in.VerificationCardID, contribution)(tx)
	if err != nil {
		return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not store own contribution: %w", err)
	}

	log.Info().Int("psi", psi).Msg("encrypted partial choice return codes partially decrypted")
	return contribution, nil
}

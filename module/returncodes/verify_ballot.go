package returncodes

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
)

// createVoteTag closes the auxiliary data of the proofs created by the voting client.
const createVoteTag = "CreateVote"

// VerifyBallotInput is the encrypted ballot of a voter together with the proofs
// binding the encrypted vote to the encrypted partial choice return codes.
type VerifyBallotInput struct {
	VerificationCardID string
	// EncryptedVote is E1, with exactly one phi.
	EncryptedVote elgamal.Ciphertext
	// ExponentiatedEncryptedVote is E1~ = E1^k_id.
	ExponentiatedEncryptedVote elgamal.Ciphertext
	// EncryptedPartialChoiceReturnCodes is E2, with psi phis.
	EncryptedPartialChoiceReturnCodes    elgamal.Ciphertext
	VerificationCardPublicKey            group.GqElement
	ElectionPublicKey                    elgamal.PublicKey
	ChoiceReturnCodesEncryptionPublicKey elgamal.PublicKey
	ExponentiationProof                  zkp.ExponentiationProof
	PlaintextEqualityProof               zkp.PlaintextEqualityProof
}

// Validate checks identifiers, sizes and groups of the input against ctx.
func (in VerifyBallotInput) Validate(ctx ccr.EncryptionContext) error {
	if err := ccr.ValidateIdentifier("verification card id", in.VerificationCardID); err != nil {
		return err
	}
	if err := checkBallot(ctx, in.EncryptedVote, in.ExponentiatedEncryptedVote, in.EncryptedPartialChoiceReturnCodes, in.ChoiceReturnCodesEncryptionPublicKey.Size()); err != nil {
		return err
	}
	if in.ElectionPublicKey.Size() != 1 {
		return ccr.NewValidationErrorf("election public key must have size 1, got %d", in.ElectionPublicKey.Size())
	}
	if err := ctx.CheckElements("verification card public key", in.VerificationCardPublicKey); err != nil {
		return err
	}
	if err := ctx.CheckElements("election public key", in.ElectionPublicKey...); err != nil {
		return err
	}
	if err := ctx.CheckElements("choice return codes encryption public key", in.ChoiceReturnCodesEncryptionPublicKey...); err != nil {
		return err
	}
	if err := ctx.CheckExponents("exponentiation proof", in.ExponentiationProof.E, in.ExponentiationProof.Z); err != nil {
		return err
	}
	p := in.PlaintextEqualityProof
	return ctx.CheckExponents("plaintext equality proof", p.E, p.Z[0], p.Z[1])
}

// checkBallot validates the three ciphertexts of a ballot: E1 and E1~ carry
// exactly one phi, E2 carries psi phis with 0 < psi <= maxOptions.
func checkBallot(ctx ccr.EncryptionContext, e1, e1Tilde, e2 elgamal.Ciphertext, maxOptions int) error {
	if err := ctx.CheckCiphertext("encrypted vote", e1); err != nil {
		return err
	}
	if err := ctx.CheckCiphertext("exponentiated encrypted vote", e1Tilde); err != nil {
		return err
	}
	if err := ctx.CheckCiphertext("encrypted partial choice return codes", e2); err != nil {
		return err
	}
	if e1.Size() != 1 || e1Tilde.Size() != 1 {
		return ccr.NewValidationErrorf("encrypted vote and exponentiated encrypted vote must have exactly one phi, got %d and %d", e1.Size(), e1Tilde.Size())
	}
	if e2.Size() > maxOptions {
		return ccr.NewValidationErrorf("encrypted partial choice return codes have %d phis, exceeding the maximum of %d options", e2.Size(), maxOptions)
	}
	return nil
}

// VerifyBallotCCR verifies the exponentiation proof and the plaintext equality
// proof of a ballot. It returns true only if both proofs verify. The auxiliary
// data order is shared with the voting client:
// [ee, vc, election public key..., "CreateVote"].
// Expected errors during normal operations:
//   - ccr.ValidationError if the input is malformed
func VerifyBallotCCR(ctx ccr.EncryptionContext, in VerifyBallotInput) (bool, error) {
	if err := in.Validate(ctx); err != nil {
		return false, err
	}

	aux := make([]string, 0, 3+in.ElectionPublicKey.Size())
	aux = append(aux, ctx.ElectionEventID, in.VerificationCardID)
	for _, e := range in.ElectionPublicKey {
		aux = append(aux, e.Value().String())
	}
	aux = append(aux, createVoteTag)

	e1 := in.EncryptedVote
	e1Tilde := in.ExponentiatedEncryptedVote
	e2 := in.EncryptedPartialChoiceReturnCodes
	psi := e2.Size()

	var exponentiationValid, equalityValid bool
	var eg errgroup.Group
	eg.Go(func() error {
		bases := []group.GqElement{ctx.Group.Generator(), e1.Gamma, e1.Phi(0)}
		exponentiations := []group.GqElement{in.VerificationCardPublicKey, e1Tilde.Gamma, e1Tilde.Phi(0)}
		var err error
		exponentiationValid, err = zkp.VerifyExponentiationProof(bases, exponentiations, in.ExponentiationProof, aux)
		if err != nil {
			return fmt.Errorf("could not verify exponentiation proof: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		phiProduct, err := group.Product(e2.Phis)
		if err != nil {
			return fmt.Errorf("could not compress encrypted partial choice return codes: %w", err)
		}
		compressed, err := elgamal.NewCiphertext(e2.Gamma, []group.GqElement{phiProduct})
		if err != nil {
			return fmt.Errorf("could not compress encrypted partial choice return codes: %w", err)
		}
		compressedKey, err := in.ChoiceReturnCodesEncryptionPublicKey.CompressedProduct(psi)
		if err != nil {
			return fmt.Errorf("could not compress choice return codes encryption public key: %w", err)
		}
		equalityValid, err = zkp.VerifyPlaintextEqualityProof(e1Tilde, compressed, in.ElectionPublicKey[0], compressedKey, in.PlaintextEqualityProof, aux)
		if err != nil {
			return fmt.Errorf("could not verify plaintext equality proof: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return false, err
	}

	return exponentiationValid && equalityValid, nil
}

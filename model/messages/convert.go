package messages

import (
	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
)

// Ballot is the decoded content of a PartialDecryptPCCRequest.
type Ballot struct {
	EncryptedVote                     elgamal.Ciphertext
	ExponentiatedEncryptedVote        elgamal.Ciphertext
	EncryptedPartialChoiceReturnCodes elgamal.Ciphertext
	ExponentiationProof               zkp.ExponentiationProof
	PlaintextEqualityProof            zkp.PlaintextEqualityProof
}

func NewPartialDecryptPCCRequest(ids CardIDs, ballot Ballot) PartialDecryptPCCRequest {
	return PartialDecryptPCCRequest{
		CardIDs:                           ids,
		EncryptedVote:                     FromCiphertext(ballot.EncryptedVote),
		ExponentiatedEncryptedVote:        FromCiphertext(ballot.ExponentiatedEncryptedVote),
		EncryptedPartialChoiceReturnCodes: FromCiphertext(ballot.EncryptedPartialChoiceReturnCodes),
		ExponentiationProof:               FromExponentiationProof(ballot.ExponentiationProof),
		PlaintextEqualityProof:            FromPlaintextEqualityProof(ballot.PlaintextEqualityProof),
	}
}

// ToBallot decodes the ballot in grp.
// Expected errors during normal operations:
//   - ccr.ValidationError if a value is not an element of grp
func (r PartialDecryptPCCRequest) ToBallot(grp *group.GqGroup) (Ballot, error) {
	e1, err := r.EncryptedVote.ToCiphertext(grp)
	if err != nil {
		return Ballot{}, ccr.NewValidationErrorf("could not decode encrypted vote of card %s: %w", r.VerificationCardID, err)
	}
	e1Tilde, err := r.ExponentiatedEncryptedVote.ToCiphertext(grp)
	if err != nil {
		return Ballot{}, ccr.NewValidationErrorf("could not decode exponentiated encrypted vote of card %s: %w", r.VerificationCardID, err)
	}
	e2, err := r.EncryptedPartialChoiceReturnCodes.ToCiphertext(grp)
	if err != nil {
		return Ballot{}, ccr.NewValidationErrorf("could not decode encrypted partial choice return codes of card %s: %w", r.VerificationCardID, err)
	}
	exponentiationProof, err := r.ExponentiationProof.ToExponentiationProof(grp)
	if err != nil {
		return Ballot{}, ccr.NewValidationErrorf("could not decode exponentiation proof of card %s: %w", r.VerificationCardID, err)
	}
	equalityProof, err := r.PlaintextEqualityProof.ToPlaintextEqualityProof(grp)
	if err != nil {
		return Ballot{}, ccr.NewValidationErrorf("could not decode plaintext equality proof of card %s: %w", r.VerificationCardID, err)
	}
	return Ballot{
		EncryptedVote:                     e1,
		ExponentiatedEncryptedVote:        e1Tilde,
		EncryptedPartialChoiceReturnCodes: e2,
		ExponentiationProof:               exponentiationProof,
		PlaintextEqualityProof:            equalityProof,
	}, nil
}

func NewLCCShareRequest(ids CardIDs, e2 elgamal.Ciphertext, contributions []ccr.PartialDecryptionContribution) LCCShareRequest {
	encoded := make([]Contribution, 0, len(contributions))
	for _, c := range contributions {
		encoded = append(encoded, FromContribution(c))
	}
	return LCCShareRequest{
		CardIDs:                           ids,
		EncryptedPartialChoiceReturnCodes: FromCiphertext(e2),
		Contributions:                     encoded,
	}
}

// Decode decodes E2 and the contributions in grp.
// Expected errors during normal operations:
//   - ccr.ValidationError if a value is not an element of grp
func (r LCCShareRequest) Decode(grp *group.GqGroup) (elgamal.Ciphertext, []ccr.PartialDecryptionContribution, error) {
	e2, err := r.EncryptedPartialChoiceReturnCodes.ToCiphertext(grp)
	if err != nil {
		return elgamal.Ciphertext{}, nil, ccr.NewValidationErrorf("could not decode encrypted partial choice return codes of card %s: %w", r.VerificationCardID, err)
	}
	contributions := make([]ccr.PartialDecryptionContribution, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		contribution, err := c.ToContribution(grp)
		if err != nil {
			return elgamal.Ciphertext{}, nil, ccr.NewValidationErrorf("could not decode contribution of node %d for card %s: %w", c.NodeID, r.VerificationCardID, err)
		}
		contributions = append(contributions, contribution)
	}
	return e2, contributions, nil
}

func NewPartialDecryptPCCResponse(ids CardIDs, contribution ccr.PartialDecryptionContribution) PartialDecryptPCCResponse {
	return PartialDecryptPCCResponse{
		CardIDs:      ids,
		Contribution: FromContribution(contribution),
	}
}

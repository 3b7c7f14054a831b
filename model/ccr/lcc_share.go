package ccr

import (
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
)

// LCCShareOutput is the result of CreateLCCShare: the hashed partial choice
// return codes, this node's long choice return code share, the per-card
// public contribution K = g^k and the proof binding them.
type LCCShareOutput struct {
	HashedPartialChoiceReturnCodes           []group.GqElement
	LongChoiceReturnCodeShare                []group.GqElement
	VoterChoiceReturnCodeGenerationPublicKey group.GqElement
	ExponentiationProof                      zkp.ExponentiationProof
}

// NewLCCShareOutput cross-checks that all values share a compatible group and
// that the vectors have equal, non-zero length.
func NewLCCShareOutput(hashed, share []group.GqElement, publicKey group.GqElement, proof zkp.ExponentiationProof) (LCCShareOutput, error) {
	if len(hashed) == 0 || len(hashed) != len(share) {
		return LCCShareOutput{}, NewValidationErrorf("hashed codes and share must have equal non-zero length, got %d and %d", len(hashed), len(share))
	}
	all := append(append([]group.GqElement{publicKey}, hashed...), share...)
	if !group.SameGroup(all) {
		return LCCShareOutput{}, NewValidationErrorf("output elements do not share a group")
	}
	if !proof.E.IsValid() || !publicKey.Group().HasSameOrderAs(proof.Group()) {
		return LCCShareOutput{}, NewValidationErrorf("proof does not match the group order")
	}
	return LCCShareOutput{
		HashedPartialChoiceReturnCodes:           hashed,
		LongChoiceReturnCodeShare:                share,
		VoterChoiceReturnCodeGenerationPublicKey: publicKey,
		ExponentiationProof:                      proof,
	}, nil
}

// LCCShare is the packaged outbound long choice return code share of one node
// for one verification card.
type LCCShare struct {
	RequestID             string
	ElectionEventID       string
	VerificationCardSetID string
	VerificationCardID    string
	NodeID                NodeID
	LCCShareOutput
}

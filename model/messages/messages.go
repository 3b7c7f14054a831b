// Package messages contains the wire representation of the protocol messages
// exchanged between the control components. Group elements are big-endian
// integers; the group is never part of a message and must be supplied when
// converting to model types.
package messages

import (
	"fmt"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/encodable"
)

type Ciphertext struct {
	Gamma []byte   `cbor:"gamma" json:"gamma" validate:"required"`
	Phis  [][]byte `cbor:"phis" json:"phis" validate:"required,min=1,dive,required"`
}

func FromCiphertext(c elgamal.Ciphertext) Ciphertext {
	return Ciphertext{
		Gamma: encodable.FromElements([]group.GqElement{c.Gamma})[0],
		Phis:  encodable.FromElements(c.Phis),
	}
}

func (c Ciphertext) ToCiphertext(grp *group.GqGroup) (elgamal.Ciphertext, error) {
	gamma, err := encodable.ToElement(grp, c.Gamma)
	if err != nil {
		return elgamal.Ciphertext{}, fmt.Errorf("could not decode gamma: %w", err)
	}
	phis, err := encodable.ToElements(grp, c.Phis)
	if err != nil {
		return elgamal.Ciphertext{}, fmt.Errorf("could not decode phis: %w", err)
	}
	return elgamal.NewCiphertext(gamma, phis)
}

type ExponentiationProof struct {
	E []byte `cbor:"e" json:"e" validate:"required"`
	Z []byte `cbor:"z" json:"z" validate:"required"`
}

func FromExponentiationProof(p zkp.ExponentiationProof) ExponentiationProof {
	return ExponentiationProof(encodable.FromExponentiationProof(p))
}

func (p ExponentiationProof) ToExponentiationProof(grp *group.GqGroup) (zkp.ExponentiationProof, error) {
	return encodable.ExponentiationProof(p).ToExponentiationProof(grp)
}

type PlaintextEqualityProof struct {
	E  []byte `cbor:"e" json:"e" validate:"required"`
	Z0 []byte `cbor:"z0" json:"z0" validate:"required"`
	Z1 []byte `cbor:"z1" json:"z1" validate:"required"`
}

func FromPlaintextEqualityProof(p zkp.PlaintextEqualityProof) PlaintextEqualityProof {
	return PlaintextEqualityProof{
		E:  encodable.FromExponent(p.E),
		Z0: encodable.FromExponent(p.Z[0]),
		Z1: encodable.FromExponent(p.Z[1]),
	}
}

func (p PlaintextEqualityProof) ToPlaintextEqualityProof(grp *group.GqGroup) (zkp.PlaintextEqualityProof, error) {
	values, err := encodable.ToExponents(grp, [][]byte{p.E, p.Z0, p.Z1})
	if err != nil {
		return zkp.PlaintextEqualityProof{}, err
	}
	return zkp.NewPlaintextEqualityProof(values[0], [2]group.ZqElement{values[1], values[2]})
}

type Contribution struct {
	NodeID               ccr.NodeID            `cbor:"nodeId" json:"nodeId" validate:"min=1,max=4"`
	ExponentiatedGammas  [][]byte              `cbor:"exponentiatedGammas" json:"exponentiatedGammas" validate:"required,min=1,dive,required"`
	ExponentiationProofs []ExponentiationProof `cbor:"exponentiationProofs" json:"exponentiationProofs" validate:"required,eqfield=ExponentiatedGammas,dive"`
}

func FromContribution(c ccr.PartialDecryptionContribution) Contribution {
	proofs := make([]ExponentiationProof, 0, len(c.ExponentiationProofs))
	for _, p := range c.ExponentiationProofs {
		proofs = append(proofs, FromExponentiationProof(p))
	}
	return Contribution{
		NodeID:               c.NodeID,
		ExponentiatedGammas:  encodable.FromElements(c.ExponentiatedGammas),
		ExponentiationProofs: proofs,
	}
}

func (c Contribution) ToContribution(grp *group.GqGroup) (ccr.PartialDecryptionContribution, error) {
	proofs := make([]encodable.ExponentiationProof, 0, len(c.ExponentiationProofs))
	for _, p := range c.ExponentiationProofs {
		proofs = append(proofs, encodable.ExponentiationProof(p))
	}
	return encodable.Contribution{
		NodeID:               c.NodeID,
		ExponentiatedGammas:  c.ExponentiatedGammas,
		ExponentiationProofs: proofs,
	}.ToContribution(grp)
}

// CardIDs are the identifiers every per-card message carries.
type CardIDs struct {
	ElectionEventID       string `cbor:"electionEventId" json:"electionEventId" validate:"ccrid"`
	VerificationCardSetID string `cbor:"verificationCardSetId" json:"verificationCardSetId" validate:"ccrid"`
	VerificationCardID    string `cbor:"verificationCardId" json:"verificationCardId" validate:"ccrid"`
}

// PartialDecryptPCCRequest carries a voter's encrypted ballot to every node.
type PartialDecryptPCCRequest struct {
	CardIDs                           `cbor:"ids" json:"ids"`
	EncryptedVote                     Ciphertext             `cbor:"encryptedVote" json:"encryptedVote"`
	ExponentiatedEncryptedVote        Ciphertext             `cbor:"exponentiatedEncryptedVote" json:"exponentiatedEncryptedVote"`
	EncryptedPartialChoiceReturnCodes Ciphertext             `cbor:"encryptedPartialChoiceReturnCodes" json:"encryptedPartialChoiceReturnCodes"`
	ExponentiationProof               ExponentiationProof    `cbor:"exponentiationProof" json:"exponentiationProof"`
	PlaintextEqualityProof            PlaintextEqualityProof `cbor:"plaintextEqualityProof" json:"plaintextEqualityProof"`
}

// PartialDecryptPCCResponse carries the partial decryption of one node.
type PartialDecryptPCCResponse struct {
	CardIDs      `cbor:"ids" json:"ids"`
	Contribution Contribution `cbor:"contribution" json:"contribution"`
}

// LCCShareRequest carries E2 and the partial decryptions of all four nodes.
type LCCShareRequest struct {
	CardIDs                           `cbor:"ids" json:"ids"`
	EncryptedPartialChoiceReturnCodes Ciphertext     `cbor:"encryptedPartialChoiceReturnCodes" json:"encryptedPartialChoiceReturnCodes"`
	Contributions                     []Contribution `cbor:"contributions" json:"contributions" validate:"len=4,dive"`
}

// LCCShareResponse carries the long choice return code share of one node.
type LCCShareResponse struct {
	CardIDs                                  `cbor:"ids" json:"ids"`
	RequestID                                string              `cbor:"requestId" json:"requestId" validate:"uuid"`
	NodeID                                   ccr.NodeID          `cbor:"nodeId" json:"nodeId" validate:"min=1,max=4"`
	HashedPartialChoiceReturnCodes           [][]byte            `cbor:"hashedPartialChoiceReturnCodes" json:"hashedPartialChoiceReturnCodes" validate:"required,min=1"`
	LongChoiceReturnCodeShare                [][]byte            `cbor:"longChoiceReturnCodeShare" json:"longChoiceReturnCodeShare" validate:"required,eqfield=HashedPartialChoiceReturnCodes"`
	VoterChoiceReturnCodeGenerationPublicKey []byte              `cbor:"voterChoiceReturnCodeGenerationPublicKey" json:"voterChoiceReturnCodeGenerationPublicKey" validate:"required"`
	ExponentiationProof                      ExponentiationProof `cbor:"exponentiationProof" json:"exponentiationProof"`
}

func FromLCCShare(share ccr.LCCShare) LCCShareResponse {
	return LCCShareResponse{
		CardIDs: CardIDs{
			ElectionEventID:       share.ElectionEventID,
			VerificationCardSetID: share.VerificationCardSetID,
			VerificationCardID:    share.VerificationCardID,
		},
		RequestID:                                share.RequestID,
		NodeID:                                   share.NodeID,
		HashedPartialChoiceReturnCodes:           encodable.FromElements(share.HashedPartialChoiceReturnCodes),
		LongChoiceReturnCodeShare:                encodable.FromElements(share.LongChoiceReturnCodeShare),
		VoterChoiceReturnCodeGenerationPublicKey: encodable.FromElements([]group.GqElement{share.VoterChoiceReturnCodeGenerationPublicKey})[0],
		ExponentiationProof:                      FromExponentiationProof(share.ExponentiationProof),
	}
}

// ToLCCShare decodes the share in grp.
func (r LCCShareResponse) ToLCCShare(grp *group.GqGroup) (ccr.LCCShare, error) {
	hashed, err := encodable.ToElements(grp, r.HashedPartialChoiceReturnCodes)
	if err != nil {
		return ccr.LCCShare{}, fmt.Errorf("could not decode hashed partial choice return codes: %w", err)
	}
	share, err := encodable.ToElements(grp, r.LongChoiceReturnCodeShare)
	if err != nil {
		return ccr.LCCShare{}, fmt.Errorf("could not decode long choice return code share: %w", err)
	}
	publicKey, err := encodable.ToElement(grp, r.VoterChoiceReturnCodeGenerationPublicKey)
	if err != nil {
		return ccr.LCCShare{}, fmt.Errorf("could not decode generation public key: %w", err)
	}
	proof, err := r.ExponentiationProof.ToExponentiationProof(grp)
	if err != nil {
		return ccr.LCCShare{}, fmt.Errorf("could not decode exponentiation proof: %w", err)
	}
	output, err := ccr.NewLCCShareOutput(hashed, share, publicKey, proof)
	if err != nil {
		return ccr.LCCShare{}, err
	}
	return ccr.LCCShare{
		RequestID:             r.RequestID,
		ElectionEventID:       r.ElectionEventID,
		VerificationCardSetID: r.VerificationCardSetID,
		VerificationCardID:    r.VerificationCardID,
		NodeID:                r.NodeID,
		LCCShareOutput:        output,
	}, nil
}

// RejectionResponse reports why a request was not processed.
type RejectionResponse struct {
	Category string `cbor:"category" json:"category" validate:"required"`
	Reason   string `cbor:"reason" json:"reason"`
}

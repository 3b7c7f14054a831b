// Package encodable contains serializable representations of the model types.
// Group elements are encoded as big-endian integers and carry no group
// information: decoding always requires the expected group to be supplied.
package encodable

import (
	"fmt"
	"math/big"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
)

// Group is the serializable description of a GqGroup.
type Group struct {
	P []byte
	Q []byte
	G []byte
}

// FromGroup encodes the group parameters.
func FromGroup(grp *group.GqGroup) Group {
	return Group{
		P: grp.P().Bytes(),
		Q: grp.Q().Bytes(),
		G: grp.Generator().Value().Bytes(),
	}
}

// ToGroup validates and decodes the group parameters.
func (g Group) ToGroup() (*group.GqGroup, error) {
	return group.NewGqGroup(new(big.Int).SetBytes(g.P), new(big.Int).SetBytes(g.Q), new(big.Int).SetBytes(g.G))
}

// FromElements encodes group elements.
func FromElements(elements []group.GqElement) [][]byte {
	encoded := make([][]byte, 0, len(elements))
	for _, e := range elements {
		encoded = append(encoded, hash.IntegerToByteArray(e.Value()))
	}
	return encoded
}

// ToElement decodes an element of grp.
func ToElement(grp *group.GqGroup, encoded []byte) (group.GqElement, error) {
	return grp.Element(new(big.Int).SetBytes(encoded))
}

// ToElements decodes elements of grp.
func ToElements(grp *group.GqGroup, encoded [][]byte) ([]group.GqElement, error) {
	elements := make([]group.GqElement, 0, len(encoded))
	for i, b := range encoded {
		e, err := ToElement(grp, b)
		if err != nil {
			return nil, fmt.Errorf("could not decode element %d: %w", i, err)
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// FromExponent encodes an exponent.
func FromExponent(e group.ZqElement) []byte {
	return hash.IntegerToByteArray(e.Value())
}

// ToExponent decodes an exponent of the order of grp.
func ToExponent(grp *group.GqGroup, encoded []byte) (group.ZqElement, error) {
	return grp.ZqGroup().Element(new(big.Int).SetBytes(encoded))
}

// ToExponents decodes exponents of the order of grp.
func ToExponents(grp *group.GqGroup, encoded [][]byte) ([]group.ZqElement, error) {
	exponents := make([]group.ZqElement, 0, len(encoded))
	for i, b := range encoded {
		e, err := ToExponent(grp, b)
		if err != nil {
			return nil, fmt.Errorf("could not decode exponent %d: %w", i, err)
		}
		exponents = append(exponents, e)
	}
	return exponents, nil
}

// ExponentiationProof is the serializable form of zkp.ExponentiationProof.
type ExponentiationProof struct {
	E []byte
	Z []byte
}

// FromExponentiationProof encodes a proof.
func FromExponentiationProof(p zkp.ExponentiationProof) ExponentiationProof {
	return ExponentiationProof{E: FromExponent(p.E), Z: FromExponent(p.Z)}
}

// ToExponentiationProof decodes a proof for grp.
func (p ExponentiationProof) ToExponentiationProof(grp *group.GqGroup) (zkp.ExponentiationProof, error) {
	e, err := ToExponent(grp, p.E)
	if err != nil {
		return zkp.ExponentiationProof{}, fmt.Errorf("could not decode proof challenge: %w", err)
	}
	z, err := ToExponent(grp, p.Z)
	if err != nil {
		return zkp.ExponentiationProof{}, fmt.Errorf("could not decode proof response: %w", err)
	}
	return zkp.NewExponentiationProof(e, z)
}

// ElectionEvent is the serializable form of ccr.ElectionEventContext.
type ElectionEvent struct {
	ElectionEventID                      string
	Group                                Group
	ElectionPublicKey                    [][]byte
	ChoiceReturnCodesEncryptionPublicKey [][]byte
}

// FromElectionEvent encodes an election event context.
func FromElectionEvent(c ccr.ElectionEventContext) ElectionEvent {
	return ElectionEvent{
		ElectionEventID:                      c.ElectionEventID,
		Group:                                FromGroup(c.Group),
		ElectionPublicKey:                    FromElements(c.ElectionPublicKey),
		ChoiceReturnCodesEncryptionPublicKey: FromElements(c.ChoiceReturnCodesEncryptionPublicKey),
	}
}

// ToElectionEvent decodes the context. The group is self-described by the record.
func (e ElectionEvent) ToElectionEvent() (ccr.ElectionEventContext, error) {
	grp, err := e.Group.ToGroup()
	if err != nil {
		return ccr.ElectionEventContext{}, fmt.Errorf("could not decode group: %w", err)
	}
	electionKey, err := ToElements(grp, e.ElectionPublicKey)
	if err != nil {
		return ccr.ElectionEventContext{}, fmt.Errorf("could not decode election public key: %w", err)
	}
	ccrKey, err := ToElements(grp, e.ChoiceReturnCodesEncryptionPublicKey)
	if err != nil {
		return ccr.ElectionEventContext{}, fmt.Errorf("could not decode choice return codes encryption public key: %w", err)
	}
	return ccr.NewElectionEventContext(e.ElectionEventID, grp, electionKey, ccrKey)
}

// NodeKeys is the serializable form of ccr.NodeKeys.
type NodeKeys struct {
	ElectionEventID                      string
	NodeID                               ccr.NodeID
	ChoiceReturnCodesEncryptionSecretKey [][]byte
	ChoiceReturnCodesEncryptionPublicKey [][]byte
	ReturnCodesGenerationSecretKey       []byte
}

// FromNodeKeys encodes node keys.
func FromNodeKeys(k ccr.NodeKeys) NodeKeys {
	sk := make([][]byte, 0, len(k.ChoiceReturnCodesEncryptionKeyPair.PrivateKey))
	for _, x := range k.ChoiceReturnCodesEncryptionKeyPair.PrivateKey {
		sk = append(sk, FromExponent(x))
	}
	return NodeKeys{
		ElectionEventID:                      k.ElectionEventID,
		NodeID:                               k.NodeID,
		ChoiceReturnCodesEncryptionSecretKey: sk,
		ChoiceReturnCodesEncryptionPublicKey: FromElements(k.ChoiceReturnCodesEncryptionKeyPair.PublicKey),
		ReturnCodesGenerationSecretKey:       FromExponent(k.ReturnCodesGenerationSecretKey),
	}
}

// ToNodeKeys decodes node keys of grp.
func (k NodeKeys) ToNodeKeys(grp *group.GqGroup) (ccr.NodeKeys, error) {
	sk, err := ToExponents(grp, k.ChoiceReturnCodesEncryptionSecretKey)
	if err != nil {
		return ccr.NodeKeys{}, fmt.Errorf("could not decode secret key: %w", err)
	}
	pk, err := ToElements(grp, k.ChoiceReturnCodesEncryptionPublicKey)
	if err != nil {
		return ccr.NodeKeys{}, fmt.Errorf("could not decode public key: %w", err)
	}
	generationKey, err := ToExponent(grp, k.ReturnCodesGenerationSecretKey)
	if err != nil {
		return ccr.NodeKeys{}, fmt.Errorf("could not decode generation key: %w", err)
	}
	keyPair := elgamal.KeyPair{PrivateKey: sk, PublicKey: pk}
	return ccr.NewNodeKeys(k.ElectionEventID, k.NodeID, grp, keyPair, generationKey)
}

// VerificationCard is the serializable form of ccr.VerificationCard.
type VerificationCard struct {
	ElectionEventID       string
	VerificationCardSetID string
	VerificationCardID    string
	PublicKey             []byte
}

// FromVerificationCard encodes a card.
func FromVerificationCard(c ccr.VerificationCard) VerificationCard {
	return VerificationCard{
		ElectionEventID:       c.ElectionEventID,
		VerificationCardSetID: c.VerificationCardSetID,
		VerificationCardID:    c.VerificationCardID,
		PublicKey:             hash.IntegerToByteArray(c.PublicKey.Value()),
	}
}

// ToVerificationCard decodes a card of grp.
func (c VerificationCard) ToVerificationCard(grp *group.GqGroup) (ccr.VerificationCard, error) {
	pk, err := ToElement(grp, c.PublicKey)
	if err != nil {
		return ccr.VerificationCard{}, fmt.Errorf("could not decode verification card public key: %w", err)
	}
	return ccr.NewVerificationCard(c.ElectionEventID, c.VerificationCardSetID, c.VerificationCardID, pk)
}

// VerificationCardSet is the serializable form of ccr.VerificationCardSet.
type VerificationCardSet struct {
	ElectionEventID       string
	VerificationCardSetID string
	CorrectnessIDs        []string
}

// FromVerificationCardSet encodes a card set.
func FromVerificationCardSet(s ccr.VerificationCardSet) VerificationCardSet {
	return VerificationCardSet{
		ElectionEventID:       s.ElectionEventID,
		VerificationCardSetID: s.VerificationCardSetID,
		CorrectnessIDs:        s.CombinedCorrectnessInformation.CorrectnessIDs(),
	}
}

// ToVerificationCardSet decodes a card set.
func (s VerificationCardSet) ToVerificationCardSet() (ccr.VerificationCardSet, error) {
	info, err := ccr.NewCombinedCorrectnessInformation(s.CorrectnessIDs)
	if err != nil {
		return ccr.VerificationCardSet{}, err
	}
	return ccr.VerificationCardSet{
		ElectionEventID:                s.ElectionEventID,
		VerificationCardSetID:          s.VerificationCardSetID,
		CombinedCorrectnessInformation: info,
	}, nil
}

// Contribution is the serializable form of ccr.PartialDecryptionContribution.
type Contribution struct {
	NodeID               ccr.NodeID
	ExponentiatedGammas  [][]byte
	ExponentiationProofs []ExponentiationProof
}

// FromContribution encodes a contribution.
func FromContribution(c ccr.PartialDecryptionContribution) Contribution {
	proofs := make([]ExponentiationProof, 0, len(c.ExponentiationProofs))
	for _, p := range c.ExponentiationProofs {
		proofs = append(proofs, FromExponentiationProof(p))
	}
	return Contribution{
		NodeID:               c.NodeID,
		ExponentiatedGammas:  FromElements(c.ExponentiatedGammas),
		ExponentiationProofs: proofs,
	}
}

// ToContribution decodes a contribution of grp.
func (c Contribution) ToContribution(grp *group.GqGroup) (ccr.PartialDecryptionContribution, error) {
	gammas, err := ToElements(grp, c.ExponentiatedGammas)
	if err != nil {
		return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not decode exponentiated gammas of node %d: %w", c.NodeID, err)
	}
	proofs := make([]zkp.ExponentiationProof, 0, len(c.ExponentiationProofs))
	for i, p := range c.ExponentiationProofs {
		proof, err := p.ToExponentiationProof(grp)
		if err != nil {
			return ccr.PartialDecryptionContribution{}, fmt.Errorf("could not decode proof %d of node %d: %w", i, c.NodeID, err)
		}
		proofs = append(proofs, proof)
	}
	return ccr.NewPartialDecryptionContribution(c.NodeID, gammas, proofs)
}

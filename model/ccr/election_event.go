package ccr

import (
	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
)

// ElectionEventContext holds the public parameters of an election event that
// every node shares.
type ElectionEventContext struct {
	ElectionEventID string
	Group           *group.GqGroup
	// ElectionPublicKey is the (dummy, size-1) election public key.
	ElectionPublicKey elgamal.PublicKey
	// ChoiceReturnCodesEncryptionPublicKey is the combined public key of all
	// nodes; its size is the maximum number of selectable options.
	ChoiceReturnCodesEncryptionPublicKey elgamal.PublicKey
}

// NewElectionEventContext validates identifiers, key sizes and groups.
func NewElectionEventContext(electionEventID string, grp *group.GqGroup, electionPublicKey, ccrPublicKey elgamal.PublicKey) (ElectionEventContext, error) {
	if err := ValidateIdentifier("election event id", electionEventID); err != nil {
		return ElectionEventContext{}, err
	}
	if grp == nil {
		return ElectionEventContext{}, NewValidationErrorf("encryption group must not be nil")
	}
	if electionPublicKey.Size() != 1 {
		return ElectionEventContext{}, NewValidationErrorf("election public key must have size 1, got %d", electionPublicKey.Size())
	}
	if ccrPublicKey.Size() == 0 {
		return ElectionEventContext{}, NewValidationErrorf("choice return codes encryption public key must not be empty")
	}
	for _, e := range append(append([]group.GqElement(nil), electionPublicKey...), ccrPublicKey...) {
		if !e.IsValid() || !e.Group().Equals(grp) {
			return ElectionEventContext{}, NewValidationErrorf("public keys must belong to the encryption group")
		}
	}
	return ElectionEventContext{
		ElectionEventID:                      electionEventID,
		Group:                                grp,
		ElectionPublicKey:                    electionPublicKey,
		ChoiceReturnCodesEncryptionPublicKey: ccrPublicKey,
	}, nil
}

// MaxOptions returns the maximum number of selectable options of the event.
func (c ElectionEventContext) MaxOptions() int {
	return c.ChoiceReturnCodesEncryptionPublicKey.Size()
}

// NodeKeys are this node's secret key shares for an election event.
type NodeKeys struct {
	ElectionEventID string
	NodeID          NodeID
	// ChoiceReturnCodesEncryptionKeyPair is CCR_j's share of the choice return
	// codes encryption key; its size is the maximum number of selectable options.
	ChoiceReturnCodesEncryptionKeyPair elgamal.KeyPair
	// ReturnCodesGenerationSecretKey is CCR_j's return codes generation secret key.
	ReturnCodesGenerationSecretKey group.ZqElement
}

// NewNodeKeys validates that the key pair matches and that all keys belong to grp.
func NewNodeKeys(electionEventID string, nodeID NodeID, grp *group.GqGroup, keyPair elgamal.KeyPair, generationKey group.ZqElement) (NodeKeys, error) {
	if err := ValidateIdentifier("election event id", electionEventID); err != nil {
		return NodeKeys{}, err
	}
	if err := nodeID.Validate(); err != nil {
		return NodeKeys{}, err
	}
	if keyPair.PublicKey.Size() == 0 || !keyPair.PublicKey.Group().Equals(grp) {
		return NodeKeys{}, NewValidationErrorf("choice return codes encryption key does not belong to the encryption group")
	}
	if !keyPair.Matches() {
		return NodeKeys{}, NewValidationErrorf("choice return codes encryption key pair does not match")
	}
	if !generationKey.IsValid() || !grp.HasSameOrderAs(generationKey.Group()) {
		return NodeKeys{}, NewValidationErrorf("return codes generation key does not match the group order")
	}
	return NodeKeys{
		ElectionEventID:                    electionEventID,
		NodeID:                             nodeID,
		ChoiceReturnCodesEncryptionKeyPair: keyPair,
		ReturnCodesGenerationSecretKey:     generationKey,
	}, nil
}

// VerificationCard is a provisioned verification card with its public key.
type VerificationCard struct {
	ElectionEventID       string
	VerificationCardSetID string
	VerificationCardID    string
	PublicKey             group.GqElement
}

// NewVerificationCard validates identifiers and the public key.
func NewVerificationCard(electionEventID, verificationCardSetID, verificationCardID string, publicKey group.GqElement) (VerificationCard, error) {
	err := ValidateIdentifiers(
		"election event id", electionEventID,
		"verification card set id", verificationCardSetID,
		"verification card id", verificationCardID,
	)
	if err != nil {
		return VerificationCard{}, err
	}
	if !publicKey.IsValid() {
		return VerificationCard{}, NewValidationErrorf("verification card public key is not a valid group element")
	}
	return VerificationCard{
		ElectionEventID:       electionEventID,
		VerificationCardSetID: verificationCardSetID,
		VerificationCardID:    verificationCardID,
		PublicKey:             publicKey,
	}, nil
}

// VerificationCardSet groups the cards sharing one ballot and allow-list.
type VerificationCardSet struct {
	ElectionEventID                string
	VerificationCardSetID          string
	CombinedCorrectnessInformation CombinedCorrectnessInformation
}

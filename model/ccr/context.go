package ccr

import (
	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
)

// EncryptionContext binds a protocol step to a node, an election event, a
// verification card set and the encryption group all group-valued inputs of
// the step must belong to.
type EncryptionContext struct {
	NodeID                NodeID
	ElectionEventID       string
	VerificationCardSetID string
	Group                 *group.GqGroup
}

// NewEncryptionContext returns a validated encryption context.
func NewEncryptionContext(nodeID NodeID, electionEventID, verificationCardSetID string, grp *group.GqGroup) (EncryptionContext, error) {
	if err := nodeID.Validate(); err != nil {
		return EncryptionContext{}, err
	}
	err := ValidateIdentifiers(
		"election event id", electionEventID,
		"verification card set id", verificationCardSetID,
	)
	if err != nil {
		return EncryptionContext{}, err
	}
	if grp == nil {
		return EncryptionContext{}, NewValidationErrorf("encryption group must not be nil")
	}
	return EncryptionContext{
		NodeID:                nodeID,
		ElectionEventID:       electionEventID,
		VerificationCardSetID: verificationCardSetID,
		Group:                 grp,
	}, nil
}

// CheckElements returns a ValidationError if any element is invalid or does not
// belong to the context's group.
func (c EncryptionContext) CheckElements(name string, elements ...group.GqElement) error {
	for i, e := range elements {
		if !e.IsValid() || !e.Group().Equals(c.Group) {
			return NewValidationErrorf("%s: element %d does not belong to the encryption group", name, i)
		}
	}
	return nil
}

// CheckExponents returns a ValidationError if any exponent is invalid or its
// group order differs from the context group's order.
func (c EncryptionContext) CheckExponents(name string, exponents ...group.ZqElement) error {
	for i, e := range exponents {
		if !e.IsValid() || !c.Group.HasSameOrderAs(e.Group()) {
			return NewValidationErrorf("%s: exponent %d does not match the encryption group order", name, i)
		}
	}
	return nil
}

// CheckCiphertext returns a ValidationError if the ciphertext is not in the
// context's group.
func (c EncryptionContext) CheckCiphertext(name string, ciphertext elgamal.Ciphertext) error {
	if ciphertext.Size() == 0 {
		return NewValidationErrorf("%s: ciphertext must not be empty", name)
	}
	return c.CheckElements(name, append([]group.GqElement{ciphertext.Gamma}, ciphertext.Phis...)...)
}

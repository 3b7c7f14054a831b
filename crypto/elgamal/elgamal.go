package elgamal

import (
	"fmt"

	"github.com/evote-ccr/control-component/crypto/group"
)

// Ciphertext is a multi-recipient ElGamal ciphertext (gamma, phi_0, ..., phi_{l-1})
// where gamma = g^r and phi_i = pk_i^r * m_i.
type Ciphertext struct {
	Gamma group.GqElement
	Phis  []group.GqElement
}

// NewCiphertext checks that gamma and all phis belong to the same group and
// that there is at least one phi.
func NewCiphertext(gamma group.GqElement, phis []group.GqElement) (Ciphertext, error) {
	if len(phis) == 0 {
		return Ciphertext{}, fmt.Errorf("ciphertext must contain at least one phi element")
	}
	if !gamma.IsValid() {
		return Ciphertext{}, fmt.Errorf("gamma is not a valid group element")
	}
	all := append([]group.GqElement{gamma}, phis...)
	if !group.SameGroup(all) {
		return Ciphertext{}, fmt.Errorf("gamma and phis must belong to the same group: %w", group.ErrGroupMismatch)
	}
	return Ciphertext{Gamma: gamma, Phis: append([]group.GqElement(nil), phis...)}, nil
}

// Size returns the number of phi elements.
func (c Ciphertext) Size() int {
	return len(c.Phis)
}

// Group returns the group of the ciphertext.
func (c Ciphertext) Group() *group.GqGroup {
	return c.Gamma.Group()
}

// Phi returns the i-th phi element.
func (c Ciphertext) Phi(i int) group.GqElement {
	return c.Phis[i]
}

// Exponentiate raises every component of the ciphertext to the given exponent.
func (c Ciphertext) Exponentiate(exponent group.ZqElement) Ciphertext {
	phis := make([]group.GqElement, 0, len(c.Phis))
	for _, phi := range c.Phis {
		phis = append(phis, phi.Exponentiate(exponent))
	}
	return Ciphertext{Gamma: c.Gamma.Exponentiate(exponent), Phis: phis}
}

// Equals reports whether both ciphertexts have identical components.
func (c Ciphertext) Equals(other Ciphertext) bool {
	if len(c.Phis) != len(other.Phis) || !c.Gamma.Equals(other.Gamma) {
		return false
	}
	for i := range c.Phis {
		if !c.Phis[i].Equals(other.Phis[i]) {
			return false
		}
	}
	return true
}

// Encrypt encrypts the message vector under the first len(message) elements of
// the public key, using the randomness r.
func Encrypt(message []group.GqElement, r group.ZqElement, pk PublicKey) (Ciphertext, error) {
	if len(message) == 0 {
		return Ciphertext{}, fmt.Errorf("message must not be empty")
	}
	if len(message) > pk.Size() {
		return Ciphertext{}, fmt.Errorf("message of size %d does not fit public key of size %d", len(message), pk.Size())
	}
	if !group.SameGroup(append(append([]group.GqElement(nil), message...), pk...)) {
		return Ciphertext{}, group.ErrGroupMismatch
	}
	grp := message[0].Group()
	if !grp.HasSameOrderAs(r.Group()) {
		return Ciphertext{}, fmt.Errorf("randomness order does not match the group order: %w", group.ErrGroupMismatch)
	}
	phis := make([]group.GqElement, 0, len(message))
	for i, m := range message {
		phis = append(phis, pk[i].Exponentiate(r).Multiply(m))
	}
	return Ciphertext{Gamma: grp.Generator().Exponentiate(r), Phis: phis}, nil
}

// Decrypt decrypts the ciphertext with the first Size() elements of the secret key.
func Decrypt(c Ciphertext, sk PrivateKey) ([]group.GqElement, error) {
	if c.Size() > len(sk) {
		return nil, fmt.Errorf("ciphertext of size %d does not fit secret key of size %d", c.Size(), len(sk))
	}
	message := make([]group.GqElement, 0, c.Size())
	for i, phi := range c.Phis {
		if !c.Group().HasSameOrderAs(sk[i].Group()) {
			return nil, group.ErrGroupMismatch
		}
		message = append(message, phi.Divide(c.Gamma.Exponentiate(sk[i])))
	}
	return message, nil
}

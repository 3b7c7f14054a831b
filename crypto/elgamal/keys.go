package elgamal

import (
	"fmt"

	"github.com/evote-ccr/control-component/crypto/group"
)

// PublicKey is a multi-recipient ElGamal public key.
type PublicKey []group.GqElement

// PrivateKey is a multi-recipient ElGamal secret key.
type PrivateKey []group.ZqElement

// KeyPair holds matching secret and public keys.
type KeyPair struct {
	PrivateKey PrivateKey
	PublicKey  PublicKey
}

// NewPublicKey validates that all elements share a group.
func NewPublicKey(elements []group.GqElement) (PublicKey, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("public key must not be empty")
	}
	if !group.SameGroup(elements) {
		return nil, group.ErrGroupMismatch
	}
	return append(PublicKey(nil), elements...), nil
}

// Size returns the number of key elements.
func (pk PublicKey) Size() int {
	return len(pk)
}

// Group returns the key's group. It must not be called on an empty key.
func (pk PublicKey) Group() *group.GqGroup {
	return pk[0].Group()
}

// CompressedProduct returns the product of the first l key elements. This is
// the public key under which the product of the phis of an l-sized ciphertext
// encrypted with pk is a valid single-recipient ciphertext.
func (pk PublicKey) CompressedProduct(l int) (group.GqElement, error) {
	if l <= 0 || l > len(pk) {
		return group.GqElement{}, fmt.Errorf("cannot compress %d elements of a key of size %d", l, len(pk))
	}
	return group.Product(pk[:l])
}

// Size returns the number of key elements.
func (sk PrivateKey) Size() int {
	return len(sk)
}

// GenKeyPair samples a key pair of the given size.
func GenKeyPair(grp *group.GqGroup, size int) (KeyPair, error) {
	if size <= 0 {
		return KeyPair{}, fmt.Errorf("key size must be positive")
	}
	zq := grp.ZqGroup()
	sk := make(PrivateKey, 0, size)
	pk := make(PublicKey, 0, size)
	for i := 0; i < size; i++ {
		x := group.RandomZqElement(zq)
		sk = append(sk, x)
		pk = append(pk, grp.Generator().Exponentiate(x))
	}
	return KeyPair{PrivateKey: sk, PublicKey: pk}, nil
}

// Matches reports whether the public key is g^sk element-wise.
func (kp KeyPair) Matches() bool {
	if len(kp.PrivateKey) != len(kp.PublicKey) || len(kp.PublicKey) == 0 {
		return false
	}
	grp := kp.PublicKey.Group()
	for i := range kp.PrivateKey {
		if !grp.HasSameOrderAs(kp.PrivateKey[i].Group()) {
			return false
		}
		if !grp.Generator().Exponentiate(kp.PrivateKey[i]).Equals(kp.PublicKey[i]) {
			return false
		}
	}
	return true
}

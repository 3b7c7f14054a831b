package zkp

import (
	"fmt"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
)

// PlaintextEqualityProof proves that two single-recipient ciphertexts, encrypted
// under different public keys, contain the same plaintext.
type PlaintextEqualityProof struct {
	E group.ZqElement
	Z [2]group.ZqElement
}

// NewPlaintextEqualityProof validates that all values are exponents of one group.
func NewPlaintextEqualityProof(e group.ZqElement, z [2]group.ZqElement) (PlaintextEqualityProof, error) {
	if !e.IsValid() || !z[0].IsValid() || !z[1].IsValid() {
		return PlaintextEqualityProof{}, fmt.Errorf("proof values must be valid exponents")
	}
	if !e.Group().Equals(z[0].Group()) || !e.Group().Equals(z[1].Group()) {
		return PlaintextEqualityProof{}, group.ErrGroupMismatch
	}
	return PlaintextEqualityProof{E: e, Z: z}, nil
}

// Group returns the exponent group of the proof.
func (p PlaintextEqualityProof) Group() *group.ZqGroup {
	return p.E.Group()
}

// GenPlaintextEqualityProof proves that first (encrypted under firstKey with
// randomness[0]) and second (encrypted under secondKey with randomness[1])
// encrypt the same plaintext.
func GenPlaintextEqualityProof(
	first, second elgamal.Ciphertext,
	firstKey, secondKey group.GqElement,
	randomness [2]group.ZqElement,
	aux []string,
) (PlaintextEqualityProof, error) {
	grp, err := checkPlaintextEqualityStatement(first, second, firstKey, secondKey)
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	if !grp.HasSameOrderAs(randomness[0].Group()) || !grp.HasSameOrderAs(randomness[1].Group()) {
		return PlaintextEqualityProof{}, fmt.Errorf("witness order does not match the group order: %w", group.ErrGroupMismatch)
	}

	zq := grp.ZqGroup()
	b := [2]group.ZqElement{group.RandomZqElement(zq), group.RandomZqElement(zq)}
	commitment := plaintextEqualityFunction(grp, firstKey, secondKey, b)
	image := plaintextEqualityImage(first, second)

	e, err := plaintextEqualityChallenge(grp, first, second, firstKey, secondKey, image, commitment, aux)
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	z := [2]group.ZqElement{
		b[0].Add(e.Multiply(randomness[0])),
		b[1].Add(e.Multiply(randomness[1])),
	}
	return PlaintextEqualityProof{E: e, Z: z}, nil
}

// VerifyPlaintextEqualityProof reports whether the proof is valid for the
// statement and the auxiliary strings. Malformed statements are errors.
func VerifyPlaintextEqualityProof(
	first, second elgamal.Ciphertext,
	firstKey, secondKey group.GqElement,
	proof PlaintextEqualityProof,
	aux []string,
) (bool, error) {
	grp, err := checkPlaintextEqualityStatement(first, second, firstKey, secondKey)
	if err != nil {
		return false, err
	}
	for _, v := range []group.ZqElement{proof.E, proof.Z[0], proof.Z[1]} {
		if !v.IsValid() || !grp.HasSameOrderAs(v.Group()) {
			return false, fmt.Errorf("proof does not belong to the statement's group: %w", group.ErrGroupMismatch)
		}
	}

	image := plaintextEqualityImage(first, second)
	x := plaintextEqualityFunction(grp, firstKey, secondKey, proof.Z)
	commitment := make([]group.GqElement, 0, len(x))
	for i := range x {
		commitment = append(commitment, x[i].Multiply(image[i].Exponentiate(proof.E).Invert()))
	}

	e, err := plaintextEqualityChallenge(grp, first, second, firstKey, secondKey, image, commitment, aux)
	if err != nil {
		return false, err
	}
	return e.Value().Cmp(proof.E.Value()) == 0, nil
}

func checkPlaintextEqualityStatement(first, second elgamal.Ciphertext, firstKey, secondKey group.GqElement) (*group.GqGroup, error) {
	if first.Size() != 1 || second.Size() != 1 {
		return nil, fmt.Errorf("plaintext equality requires single-element ciphertexts, got sizes %d and %d", first.Size(), second.Size())
	}
	all := []group.GqElement{first.Gamma, first.Phi(0), second.Gamma, second.Phi(0), firstKey, secondKey}
	if !group.SameGroup(all) {
		return nil, fmt.Errorf("ciphertexts and keys must share a group: %w", group.ErrGroupMismatch)
	}
	return first.Group(), nil
}

// plaintextEqualityFunction computes (g^x0, g^x1, h^x0 / h'^x1).
func plaintextEqualityFunction(grp *group.GqGroup, firstKey, secondKey group.GqElement, x [2]group.ZqElement) []group.GqElement {
	g := grp.Generator()
	return []group.GqElement{
		g.Exponentiate(x[0]),
		g.Exponentiate(x[1]),
		firstKey.Exponentiate(x[0]).Divide(secondKey.Exponentiate(x[1])),
	}
}

// plaintextEqualityImage computes (c0, c0', c1 / c1').
func plaintextEqualityImage(first, second elgamal.Ciphertext) []group.GqElement {
	return []group.GqElement{
		first.Gamma,
		second.Gamma,
		first.Phi(0).Divide(second.Phi(0)),
	}
}

func plaintextEqualityChallenge(
	grp *group.GqGroup,
	first, second elgamal.Ciphertext,
	firstKey, secondKey group.GqElement,
	image, commitment []group.GqElement,
	aux []string,
) (group.ZqElement, error) {
	hAux := []interface{}{
		"PlaintextEqualityProof",
		first.Gamma, first.Phi(0),
		second.Gamma, second.Phi(0),
		firstKey, secondKey,
	}
	for _, a := range aux {
		hAux = append(hAux, a)
	}
	e, err := hash.RecursiveHashToZq(grp.Q(), groupDescription(grp), image, commitment, hAux)
	if err != nil {
		return group.ZqElement{}, fmt.Errorf("could not compute challenge: %w", err)
	}
	return grp.ZqGroup().Reduce(e), nil
}

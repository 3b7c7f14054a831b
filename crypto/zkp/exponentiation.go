// Package zkp implements the non-interactive zero-knowledge proofs used by the
// return codes protocol: proofs of equal discrete logarithms ("exponentiation
// proofs") and proofs of plaintext equality between two ElGamal ciphertexts.
// Challenges are derived with the Fiat-Shamir transform over the recursive hash.
package zkp

import (
	"fmt"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
)

// ExponentiationProof proves knowledge of x such that y_i = g_i^x for all i.
type ExponentiationProof struct {
	E group.ZqElement
	Z group.ZqElement
}

// NewExponentiationProof validates that both values are exponents of one group.
func NewExponentiationProof(e, z group.ZqElement) (ExponentiationProof, error) {
	if !e.IsValid() || !z.IsValid() {
		return ExponentiationProof{}, fmt.Errorf("proof values must be valid exponents")
	}
	if !e.Group().Equals(z.Group()) {
		return ExponentiationProof{}, group.ErrGroupMismatch
	}
	return ExponentiationProof{E: e, Z: z}, nil
}

// Group returns the exponent group of the proof.
func (p ExponentiationProof) Group() *group.ZqGroup {
	return p.E.Group()
}

// Equals reports whether both proofs have identical values.
func (p ExponentiationProof) Equals(other ExponentiationProof) bool {
	return p.E.Equals(other.E) && p.Z.Equals(other.Z)
}

// GenExponentiationProof proves that exponentiations[i] = bases[i]^exponent
// for every i, binding the proof to the auxiliary strings.
func GenExponentiationProof(bases []group.GqElement, exponent group.ZqElement, exponentiations []group.GqElement, aux []string) (ExponentiationProof, error) {
	grp, err := checkExponentiationStatement(bases, exponentiations)
	if err != nil {
		return ExponentiationProof{}, err
	}
	if !grp.HasSameOrderAs(exponent.Group()) {
		return ExponentiationProof{}, fmt.Errorf("witness order does not match the group order: %w", group.ErrGroupMismatch)
	}

	zq := grp.ZqGroup()
	b := group.RandomZqElement(zq)
	commitments := make([]group.GqElement, 0, len(bases))
	for _, base := range bases {
		commitments = append(commitments, base.Exponentiate(b))
	}

	e, err := exponentiationChallenge(grp, bases, exponentiations, commitments, aux)
	if err != nil {
		return ExponentiationProof{}, err
	}
	z := b.Add(e.Multiply(exponent))
	return ExponentiationProof{E: e, Z: z}, nil
}

// VerifyExponentiationProof reports whether the proof is valid for the
// statement and the auxiliary strings. Malformed statements are errors.
func VerifyExponentiationProof(bases []group.GqElement, exponentiations []group.GqElement, proof ExponentiationProof, aux []string) (bool, error) {
	grp, err := checkExponentiationStatement(bases, exponentiations)
	if err != nil {
		return false, err
	}
	if !proof.E.IsValid() || !proof.Z.IsValid() || !grp.HasSameOrderAs(proof.E.Group()) || !grp.HasSameOrderAs(proof.Z.Group()) {
		return false, fmt.Errorf("proof does not belong to the statement's group: %w", group.ErrGroupMismatch)
	}

	commitments := make([]group.GqElement, 0, len(bases))
	for i := range bases {
		c := bases[i].Exponentiate(proof.Z).Multiply(exponentiations[i].Exponentiate(proof.E).Invert())
		commitments = append(commitments, c)
	}

	e, err := exponentiationChallenge(grp, bases, exponentiations, commitments, aux)
	if err != nil {
		return false, err
	}
	return e.Value().Cmp(proof.E.Value()) == 0, nil
}

func checkExponentiationStatement(bases, exponentiations []group.GqElement) (*group.GqGroup, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("bases must not be empty")
	}
	if len(bases) != len(exponentiations) {
		return nil, fmt.Errorf("got %d bases but %d exponentiations", len(bases), len(exponentiations))
	}
	all := append(append([]group.GqElement(nil), bases...), exponentiations...)
	if !group.SameGroup(all) {
		return nil, fmt.Errorf("bases and exponentiations must share a group: %w", group.ErrGroupMismatch)
	}
	return bases[0].Group(), nil
}

func exponentiationChallenge(grp *group.GqGroup, bases, exponentiations, commitments []group.GqElement, aux []string) (group.ZqElement, error) {
	hAux := []interface{}{"ExponentiationProof"}
	for _, a := range aux {
		hAux = append(hAux, a)
	}
	e, err := hash.RecursiveHashToZq(grp.Q(), groupDescription(grp), bases, exponentiations, commitments, hAux)
	if err != nil {
		return group.ZqElement{}, fmt.Errorf("could not compute challenge: %w", err)
	}
	return grp.ZqGroup().Reduce(e), nil
}

func groupDescription(grp *group.GqGroup) []interface{} {
	return []interface{}{grp.P(), grp.Q(), grp.Generator().Value()}
}

package group

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// primalityRounds is the number of Miller-Rabin rounds used when validating
// group parameters.
const primalityRounds = 20

// ErrGroupMismatch is returned when values from different groups are combined.
var ErrGroupMismatch = errors.New("group mismatch")

// GqGroup is the subgroup of quadratic residues modulo a safe prime p = 2q + 1.
// Its order is the prime q and it is generated by g.
type GqGroup struct {
	p *big.Int
	q *big.Int
	g *big.Int
}

// NewGqGroup validates the given parameters and returns the group they define.
// It requires p and q to be prime, p = 2q + 1, and g to be a non-identity
// quadratic residue modulo p.
func NewGqGroup(p, q, g *big.Int) (*GqGroup, error) {
	if p == nil || q == nil || g == nil {
		return nil, fmt.Errorf("group parameters must not be nil")
	}
	expected := new(big.Int).Add(new(big.Int).Mul(q, two), one)
	if expected.Cmp(p) != 0 {
		return nil, fmt.Errorf("p must equal 2q + 1")
	}
	if !q.ProbablyPrime(primalityRounds) || !p.ProbablyPrime(primalityRounds) {
		return nil, fmt.Errorf("p and q must be prime")
	}
	grp := &GqGroup{
		p: new(big.Int).Set(p),
		q: new(big.Int).Set(q),
		g: new(big.Int).Set(g),
	}
	if g.Cmp(one) == 0 || !grp.IsGroupMember(g) {
		return nil, fmt.Errorf("generator %s is not a non-identity member of the group", g)
	}
	return grp, nil
}

// P returns a copy of the modulus.
func (grp *GqGroup) P() *big.Int {
	return new(big.Int).Set(grp.p)
}

// Q returns a copy of the group order.
func (grp *GqGroup) Q() *big.Int {
	return new(big.Int).Set(grp.q)
}

// Generator returns the group generator as an element.
func (grp *GqGroup) Generator() GqElement {
	return GqElement{value: grp.g, group: grp}
}

// Identity returns the neutral element 1.
func (grp *GqGroup) Identity() GqElement {
	return GqElement{value: one, group: grp}
}

// Equals reports whether both groups are defined by the same parameters.
func (grp *GqGroup) Equals(other *GqGroup) bool {
	if grp == other {
		return true
	}
	if grp == nil || other == nil {
		return false
	}
	return grp.p.Cmp(other.p) == 0 && grp.q.Cmp(other.q) == 0 && grp.g.Cmp(other.g) == 0
}

// HasSameOrderAs reports whether the given Zq group has the order of this group,
// i.e. whether its elements may be used as exponents of this group's elements.
func (grp *GqGroup) HasSameOrderAs(zq *ZqGroup) bool {
	return zq != nil && grp.q.Cmp(zq.q) == 0
}

// IsGroupMember reports whether v is a quadratic residue in [1, p).
func (grp *GqGroup) IsGroupMember(v *big.Int) bool {
	if v == nil || v.Sign() <= 0 || v.Cmp(grp.p) >= 0 {
		return false
	}
	return new(big.Int).Exp(v, grp.q, grp.p).Cmp(one) == 0
}

// Element returns the group element with value v.
func (grp *GqGroup) Element(v *big.Int) (GqElement, error) {
	if !grp.IsGroupMember(v) {
		return GqElement{}, fmt.Errorf("value is not a member of the group")
	}
	return GqElement{value: new(big.Int).Set(v), group: grp}, nil
}

// Elements converts the given values to group elements.
func (grp *GqGroup) Elements(values []*big.Int) ([]GqElement, error) {
	elements := make([]GqElement, 0, len(values))
	for i, v := range values {
		e, err := grp.Element(v)
		if err != nil {
			return nil, fmt.Errorf("invalid element at position %d: %w", i, err)
		}
		elements = append(elements, e)
	}
	return elements, nil
}

// ZqGroup returns the group of exponents of matching order.
func (grp *GqGroup) ZqGroup() *ZqGroup {
	return &ZqGroup{q: grp.q}
}

// String implements fmt.Stringer.
func (grp *GqGroup) String() string {
	return fmt.Sprintf("Gq(p=%s, q=%s, g=%s)", grp.p, grp.q, grp.g)
}

// GqElement is an element of a GqGroup. It always carries the group it was
// created in. The zero value is not a valid element.
type GqElement struct {
	value *big.Int
	group *GqGroup
}

// Value returns a copy of the element's integer value.
func (e GqElement) Value() *big.Int {
	return new(big.Int).Set(e.value)
}

// Group returns the group the element belongs to.
func (e GqElement) Group() *GqGroup {
	return e.group
}

// IsValid reports whether the element was created through a group.
func (e GqElement) IsValid() bool {
	return e.value != nil && e.group != nil
}

// Equals reports whether both elements have the same value in the same group.
func (e GqElement) Equals(other GqElement) bool {
	return e.group.Equals(other.group) && e.value.Cmp(other.value) == 0
}

// Multiply returns e * other. It panics if the operands belong to different groups.
func (e GqElement) Multiply(other GqElement) GqElement {
	e.mustShareGroup(other)
	v := new(big.Int).Mul(e.value, other.value)
	return GqElement{value: v.Mod(v, e.group.p), group: e.group}
}

// Exponentiate returns e^exponent. It panics if the exponent's group order
// differs from the element's group order.
func (e GqElement) Exponentiate(exponent ZqElement) GqElement {
	if !e.group.HasSameOrderAs(exponent.group) {
		panic(fmt.Errorf("exponent of order %s used in group of order %s: %w", exponent.group.q, e.group.q, ErrGroupMismatch))
	}
	return GqElement{value: new(big.Int).Exp(e.value, exponent.value, e.group.p), group: e.group}
}

// Invert returns the multiplicative inverse of e.
func (e GqElement) Invert() GqElement {
	return GqElement{value: new(big.Int).ModInverse(e.value, e.group.p), group: e.group}
}

// Divide returns e * other^-1.
func (e GqElement) Divide(other GqElement) GqElement {
	return e.Multiply(other.Invert())
}

// String implements fmt.Stringer and returns the canonical decimal representation.
func (e GqElement) String() string {
	if e.value == nil {
		return "<nil>"
	}
	return e.value.String()
}

func (e GqElement) mustShareGroup(other GqElement) {
	if !e.group.Equals(other.group) {
		panic(fmt.Errorf("cannot combine elements of %s and %s: %w", e.group, other.group, ErrGroupMismatch))
	}
}

// Product multiplies the given elements. It returns an error for an empty input
// or for elements of different groups.
func Product(elements []GqElement) (GqElement, error) {
	if len(elements) == 0 {
		return GqElement{}, fmt.Errorf("cannot compute the product of an empty vector")
	}
	if !SameGroup(elements) {
		return GqElement{}, ErrGroupMismatch
	}
	acc := elements[0].group.Identity()
	for _, e := range elements {
		acc = acc.Multiply(e)
	}
	return acc, nil
}

// SameGroup reports whether all given elements are valid and share one group.
func SameGroup(elements []GqElement) bool {
	for _, e := range elements {
		if !e.IsValid() || !e.group.Equals(elements[0].group) {
			return false
		}
	}
	return true
}

// AllDistinct reports whether the given elements are pairwise distinct.
func AllDistinct(elements []GqElement) bool {
	seen := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		key := e.value.String()
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// Values returns the integer values of the given elements.
func Values(elements []GqElement) []*big.Int {
	values := make([]*big.Int, 0, len(elements))
	for _, e := range elements {
		values = append(values, e.Value())
	}
	return values
}

// Strings returns the canonical decimal strings of the element values, as bound
// into proof auxiliary data.
func Strings(elements []GqElement) []string {
	ss := make([]string, 0, len(elements))
	for _, e := range elements {
		ss = append(ss, e.value.String())
	}
	return ss
}

package group

import (
	"fmt"
	"math/big"

	"lukechampine.com/frand"
)

// ZqGroup is the additive group of integers modulo q. Its elements are the
// exponents of a GqGroup of order q.
type ZqGroup struct {
	q *big.Int
}

// NewZqGroup returns the group of integers modulo q.
func NewZqGroup(q *big.Int) (*ZqGroup, error) {
	if q == nil || q.Cmp(two) < 0 {
		return nil, fmt.Errorf("group order must be at least 2")
	}
	return &ZqGroup{q: new(big.Int).Set(q)}, nil
}

// Q returns a copy of the group order.
func (zq *ZqGroup) Q() *big.Int {
	return new(big.Int).Set(zq.q)
}

// Equals reports whether both groups have the same order.
func (zq *ZqGroup) Equals(other *ZqGroup) bool {
	if zq == other {
		return true
	}
	if zq == nil || other == nil {
		return false
	}
	return zq.q.Cmp(other.q) == 0
}

// Element returns the element with value v, which must be in [0, q).
func (zq *ZqGroup) Element(v *big.Int) (ZqElement, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(zq.q) >= 0 {
		return ZqElement{}, fmt.Errorf("value is not in [0, q)")
	}
	return ZqElement{value: new(big.Int).Set(v), group: zq}, nil
}

// Reduce returns the element v mod q. Unlike Element, any integer is accepted.
func (zq *ZqGroup) Reduce(v *big.Int) ZqElement {
	return ZqElement{value: new(big.Int).Mod(v, zq.q), group: zq}
}

// Zero returns the neutral element of addition.
func (zq *ZqGroup) Zero() ZqElement {
	return ZqElement{value: new(big.Int), group: zq}
}

// RandomZqElement samples a uniformly random exponent.
func RandomZqElement(zq *ZqGroup) ZqElement {
	return ZqElement{value: frand.BigIntn(zq.q), group: zq}
}

// ZqElement is an element of a ZqGroup. The zero value is not a valid element.
type ZqElement struct {
	value *big.Int
	group *ZqGroup
}

// Value returns a copy of the element's integer value.
func (e ZqElement) Value() *big.Int {
	return new(big.Int).Set(e.value)
}

// Group returns the group the element belongs to.
func (e ZqElement) Group() *ZqGroup {
	return e.group
}

// IsValid reports whether the element was created through a group.
func (e ZqElement) IsValid() bool {
	return e.value != nil && e.group != nil
}

// Equals reports whether both elements have the same value in the same group.
func (e ZqElement) Equals(other ZqElement) bool {
	return e.group.Equals(other.group) && e.value.Cmp(other.value) == 0
}

// Add returns e + other mod q.
func (e ZqElement) Add(other ZqElement) ZqElement {
	e.mustShareGroup(other)
	return e.group.Reduce(new(big.Int).Add(e.value, other.value))
}

// Subtract returns e - other mod q.
func (e ZqElement) Subtract(other ZqElement) ZqElement {
	e.mustShareGroup(other)
	return e.group.Reduce(new(big.Int).Sub(e.value, other.value))
}

// Multiply returns e * other mod q.
func (e ZqElement) Multiply(other ZqElement) ZqElement {
	e.mustShareGroup(other)
	return e.group.Reduce(new(big.Int).Mul(e.value, other.value))
}

// Negate returns -e mod q.
func (e ZqElement) Negate() ZqElement {
	return e.group.Reduce(new(big.Int).Neg(e.value))
}

// String implements fmt.Stringer.
func (e ZqElement) String() string {
	if e.value == nil {
		return "<nil>"
	}
	return e.value.String()
}

func (e ZqElement) mustShareGroup(other ZqElement) {
	if !e.group.Equals(other.group) {
		panic(fmt.Errorf("cannot combine exponents of order %s and %s: %w", e.group.q, other.group.q, ErrGroupMismatch))
	}
}

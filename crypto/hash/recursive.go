// Package hash implements the collision-resistant recursive hash used for
// Fiat-Shamir challenges and allow-list lookup keys.
//
// Every hashable value is hashed with SHA3-256 over a one-byte type prefix and
// its canonical encoding:
//
//	byte array: 0x00 || bytes
//	integer:    0x01 || IntegerToByteArray(v)
//	string:     0x02 || UTF-8 bytes
//	list:       0x03 || h(v_0) || ... || h(v_{n-1})
package hash

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/evote-ccr/control-component/crypto/group"
)

const (
	prefixBytes   byte = 0x00
	prefixInteger byte = 0x01
	prefixString  byte = 0x02
	prefixList    byte = 0x03
)

// securityBits is the extra length used when reducing a hash modulo q, making
// the bias of the reduction negligible.
const securityBits = 256

// RecursiveHash hashes the given values. A single value is hashed on its own,
// several values are hashed as a list. Supported value types are []byte, string,
// *big.Int, int, uint64, group.GqElement, group.ZqElement, []string,
// []group.GqElement, []group.ZqElement, []*big.Int and []interface{} (nested).
func RecursiveHash(values ...interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("cannot hash an empty list of values")
	}
	if len(values) == 1 {
		return hashValue(values[0])
	}
	return hashValue(values)
}

// RecursiveHashToZq hashes the given values to an integer in [0, q). The
// SHA3-256 recursive hash is expanded with SHAKE256 to bitlen(q)+256 bits
// before the reduction.
func RecursiveHashToZq(q *big.Int, values ...interface{}) (*big.Int, error) {
	if q == nil || q.Sign() <= 0 {
		return nil, fmt.Errorf("modulus must be positive")
	}
	digest, err := RecursiveHash(q, "RecursiveHash", values)
	if err != nil {
		return nil, err
	}
	out := make([]byte, (q.BitLen()+securityBits+7)/8)
	sha3.ShakeSum256(out, digest)
	h := new(big.Int).SetBytes(out)
	return h.Mod(h, q), nil
}

// HashAndSquare maps an integer to a group element of grp by hashing it to Zq
// and squaring the (non-zero) result modulo p.
func HashAndSquare(x *big.Int, grp *group.GqGroup) (group.GqElement, error) {
	h, err := RecursiveHashToZq(grp.Q(), x)
	if err != nil {
		return group.GqElement{}, fmt.Errorf("could not hash value: %w", err)
	}
	h.Add(h, big.NewInt(1))
	squared := new(big.Int).Exp(h, big.NewInt(2), grp.P())
	return grp.Element(squared)
}

// IntegerToByteArray returns the minimal big-endian encoding of a non-negative
// integer. Zero is encoded as a single zero byte.
func IntegerToByteArray(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0x00}
	}
	return x.Bytes()
}

func hashValue(v interface{}) ([]byte, error) {
	switch value := v.(type) {
	case []byte:
		return digest(prefixBytes, value), nil
	case string:
		return digest(prefixString, []byte(value)), nil
	case *big.Int:
		if value == nil || value.Sign() < 0 {
			return nil, fmt.Errorf("only non-negative integers can be hashed")
		}
		return digest(prefixInteger, IntegerToByteArray(value)), nil
	case int:
		if value < 0 {
			return nil, fmt.Errorf("only non-negative integers can be hashed")
		}
		return hashValue(big.NewInt(int64(value)))
	case uint64:
		return hashValue(new(big.Int).SetUint64(value))
	case group.GqElement:
		if !value.IsValid() {
			return nil, fmt.Errorf("cannot hash an invalid group element")
		}
		return hashValue(value.Value())
	case group.ZqElement:
		if !value.IsValid() {
			return nil, fmt.Errorf("cannot hash an invalid exponent")
		}
		return hashValue(value.Value())
	case []string:
		return hashList(len(value), func(i int) interface{} { return value[i] })
	case []*big.Int:
		return hashList(len(value), func(i int) interface{} { return value[i] })
	case []group.GqElement:
		return hashList(len(value), func(i int) interface{} { return value[i] })
	case []group.ZqElement:
		return hashList(len(value), func(i int) interface{} { return value[i] })
	case []interface{}:
		return hashList(len(value), func(i int) interface{} { return value[i] })
	default:
		return nil, fmt.Errorf("unsupported hashable type %T", v)
	}
}

func hashList(n int, at func(int) interface{}) ([]byte, error) {
	if n == 0 {
		return nil, fmt.Errorf("cannot hash an empty list")
	}
	concatenated := make([]byte, 0, n*32)
	for i := 0; i < n; i++ {
		h, err := hashValue(at(i))
		if err != nil {
			return nil, fmt.Errorf("could not hash list element %d: %w", i, err)
		}
		concatenated = append(concatenated, h...)
	}
	return digest(prefixList, concatenated), nil
}

func digest(prefix byte, data []byte) []byte {
	h := sha3.New256()
	h.Write([]byte{prefix})
	h.Write(data)
	return h.Sum(nil)
}

// Package kdf derives exponents from secret key material.
package kdf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

const securityBits = 256

// KDFToZq derives an integer in [0, q) from the input key material and the
// context strings in info. HKDF (extract-and-expand, SHA3-256) produces
// bitlen(q)+256 bits which are reduced modulo q. The derivation is
// deterministic: the same inputs always yield the same output.
func KDFToZq(ikm []byte, info []string, q *big.Int) (*big.Int, error) {
	if len(ikm) == 0 {
		return nil, fmt.Errorf("input key material must not be empty")
	}
	if q == nil || q.Sign() <= 0 {
		return nil, fmt.Errorf("modulus must be positive")
	}
	reader := hkdf.New(sha3.New256, ikm, nil, encodeInfo(info))
	out := make([]byte, (q.BitLen()+securityBits+7)/8)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("could not expand key material: %w", err)
	}
	k := new(big.Int).SetBytes(out)
	return k.Mod(k, q), nil
}

// encodeInfo length-prefixes every context string so that distinct info lists
// never share an encoding.
func encodeInfo(info []string) []byte {
	var encoded []byte
	for _, s := range info {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(s)))
		encoded = append(encoded, length[:]...)
		encoded = append(encoded, s...)
	}
	return encoded
}

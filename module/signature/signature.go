// Package signature signs outbound payloads with this node's key and verifies
// inbound payloads against the keys of trusted senders. Signatures are DER
// encoded ECDSA signatures over secp256k1 of the SHA3-256 digest of the tagged
// payload.
package signature

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var (
	// ErrUnknownSigner is returned when no trusted key is registered for a sender.
	ErrUnknownSigner = errors.New("unknown signer")
	// ErrInvalidSignature is returned when a signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signer signs payloads on behalf of this node.
type Signer interface {
	// Alias identifies the signing key towards the verifiers.
	Alias() string
	Sign(payload []byte) ([]byte, error)
}

// Verifier verifies payloads signed by trusted senders.
type Verifier interface {
	// Verify returns nil if signature is a valid signature of payload by the
	// sender identified by alias.
	// Expected errors during normal operations:
	//   - ErrUnknownSigner if the alias is not trusted
	//   - ErrInvalidSignature if the signature is malformed or does not verify
	Verify(alias string, payload []byte, signature []byte) error
}

// KeySigner signs with a secp256k1 private key.
type KeySigner struct {
	alias string
	key   *btcec.PrivateKey
}

var _ Signer = (*KeySigner)(nil)

func NewKeySigner(alias string, key *btcec.PrivateKey) *KeySigner {
	return &KeySigner{alias: alias, key: key}
}

// NewKeySignerFromHex decodes a hex encoded 32 byte private key.
func NewKeySignerFromHex(alias string, encoded string) (*KeySigner, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("could not decode signing key: %w", err)
	}
	if len(raw) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("signing key must have %d bytes, got %d", btcec.PrivKeyBytesLen, len(raw))
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return NewKeySigner(alias, key), nil
}

func (s *KeySigner) Alias() string {
	return s.alias
}

func (s *KeySigner) Sign(payload []byte) ([]byte, error) {
	return ecdsa.Sign(s.key, digest(payload)).Serialize(), nil
}

// PublicKeyHex returns the compressed public key, hex encoded.
func (s *KeySigner) PublicKeyHex() string {
	return hex.EncodeToString(s.key.PubKey().SerializeCompressed())
}

// TrustStore verifies signatures against a fixed set of public keys by alias.
type TrustStore struct {
	keys map[string]*btcec.PublicKey
}

var _ Verifier = (*TrustStore)(nil)

// NewTrustStore parses hex encoded public keys, indexed by alias.
func NewTrustStore(encoded map[string]string) (*TrustStore, error) {
	keys := make(map[string]*btcec.PublicKey, len(encoded))
	for alias, h := range encoded {
		raw, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("could not decode public key of %s: %w", alias, err)
		}
		key, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("could not parse public key of %s: %w", alias, err)
		}
		keys[alias] = key
	}
	return &TrustStore{keys: keys}, nil
}

func (t *TrustStore) Verify(alias string, payload []byte, signature []byte) error {
	key, ok := t.keys[alias]
	if !ok {
		return fmt.Errorf("no trusted key for %q: %w", alias, ErrUnknownSigner)
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("could not parse signature of %q: %v: %w", alias, err, ErrInvalidSignature)
	}
	if !sig.Verify(digest(payload), key) {
		return fmt.Errorf("signature of %q does not verify: %w", alias, ErrInvalidSignature)
	}
	return nil
}

// GenerateKey returns a fresh signing key, hex encoded.
func GenerateKey() (string, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return "", fmt.Errorf("could not generate signing key: %w", err)
	}
	return hex.EncodeToString(key.Serialize()), nil
}

package ccr

import (
	"encoding/base64"
	"fmt"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
)

// AllowListKey returns the allow-list lookup key of a hashed partial choice
// return code: the base64 encoding of
// RecursiveHash(hpCC, verificationCardId, electionEventId, correctnessId).
func AllowListKey(hashedCode group.GqElement, verificationCardID, electionEventID, correctnessID string) (string, error) {
	digest, err := hash.RecursiveHash(hashedCode, verificationCardID, electionEventID, correctnessID)
	if err != nil {
		return "", fmt.Errorf("could not hash allow-list lookup key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(digest), nil
}

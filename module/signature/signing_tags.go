package signature

import (
	"golang.org/x/crypto/sha3"
)

// Domain separation tag prepended to every signed payload. It scopes the
// signatures of this component to its own message exchange, so that a key
// shared with another system never yields a signature valid here.
//
// an example of domain tag output is :
// CCR-ENVELOPE-V00-
const (
	protocolPrefix  = "CCR-"
	protocolVersion = "-V00-"
)

func tag(domain string) string {
	return protocolPrefix + domain + protocolVersion
}

// EnvelopeTag is used for the signatures of the exchanged envelopes.
var EnvelopeTag = tag("ENVELOPE")

// digest is the SHA3-256 hash of the envelope tag followed by payload.
func digest(payload []byte) []byte {
	h := sha3.New256()
	_, _ = h.Write([]byte(EnvelopeTag))
	_, _ = h.Write(payload)
	return h.Sum(nil)
}

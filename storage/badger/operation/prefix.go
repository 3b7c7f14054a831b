package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/evote-ccr/control-component/model/ccr"
)

const (

	// codes for election event data
	codeElectionEvent = 10
	codeNodeKeys      = 11

	// codes for verification card data
	codeVerificationCardSet   = 20
	codeVerificationCard      = 21
	codeVerificationCardState = 22
	codeAllowListEntry        = 23
	codeContribution          = 24

	// codes for the exactly-once ledger
	codeCommand = 30
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case ccr.NodeID:
		return []byte{byte(i)}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case string:
		return []byte(i)
	case []byte:
		return i
	case lengthPrefixed:
		b := make([]byte, 4, 4+len(i))
		binary.BigEndian.PutUint32(b, uint32(len(i)))
		return append(b, i...)
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}

// lengthPrefixed marks a variable-length key part, which is encoded with its
// length so that adjacent parts cannot run into each other.
type lengthPrefixed string

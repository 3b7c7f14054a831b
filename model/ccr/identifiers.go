package ccr

import (
	"fmt"
	"regexp"
)

// NumberOfNodes is the number of control-component nodes taking part in the protocol.
const NumberOfNodes = 4

// identifierPattern matches the fixed format of election identifiers: 32
// lowercase hexadecimal characters.
var identifierPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// NodeID identifies a control-component node CCR_j, j in {1, 2, 3, 4}.
type NodeID uint8

// Validate returns a ValidationError if the node id is outside {1, 2, 3, 4}.
func (n NodeID) Validate() error {
	if n < 1 || n > NumberOfNodes {
		return NewValidationErrorf("node id must be in [1, %d], got %d", NumberOfNodes, n)
	}
	return nil
}

// String returns the decimal representation of the node id.
func (n NodeID) String() string {
	return fmt.Sprintf("%d", uint8(n))
}

// NodeIDs returns all node ids in ascending order.
func NodeIDs() []NodeID {
	ids := make([]NodeID, 0, NumberOfNodes)
	for i := 1; i <= NumberOfNodes; i++ {
		ids = append(ids, NodeID(i))
	}
	return ids
}

// IsValidIdentifier reports whether id has the election identifier format.
func IsValidIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// ValidateIdentifier returns a ValidationError naming the field if id is not
// 32 lowercase hexadecimal characters.
func ValidateIdentifier(name string, id string) error {
	if !IsValidIdentifier(id) {
		return NewValidationErrorf("%s must be 32 lowercase hexadecimal characters, got %q", name, id)
	}
	return nil
}

// ValidateIdentifiers validates several named identifiers, given as alternating
// name/value pairs, and returns the first error.
func ValidateIdentifiers(pairs ...string) error {
	if len(pairs)%2 != 0 {
		return fmt.Errorf("identifiers must be given as name/value pairs")
	}
	for i := 0; i < len(pairs); i += 2 {
		if err := ValidateIdentifier(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

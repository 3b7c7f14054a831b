package ccr

import (
	"sort"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
)

// PartialDecryptionContribution is one node's partial decryption of the
// encrypted partial choice return codes: gamma^{sk_{j,i}} for every position i,
// each accompanied by an exponentiation proof.
type PartialDecryptionContribution struct {
	NodeID               NodeID
	ExponentiatedGammas  []group.GqElement
	ExponentiationProofs []zkp.ExponentiationProof
}

// NewPartialDecryptionContribution validates the node id, that the vectors are
// non-empty with equal length, and that all values share one group.
func NewPartialDecryptionContribution(nodeID NodeID, gammas []group.GqElement, proofs []zkp.ExponentiationProof) (PartialDecryptionContribution, error) {
	if err := nodeID.Validate(); err != nil {
		return PartialDecryptionContribution{}, err
	}
	if len(gammas) == 0 {
		return PartialDecryptionContribution{}, NewValidationErrorf("contribution of node %d has no exponentiated gammas", nodeID)
	}
	if len(gammas) != len(proofs) {
		return PartialDecryptionContribution{}, NewValidationErrorf("contribution of node %d has %d gammas but %d proofs", nodeID, len(gammas), len(proofs))
	}
	if !group.SameGroup(gammas) {
		return PartialDecryptionContribution{}, NewValidationErrorf("exponentiated gammas of node %d do not share a group", nodeID)
	}
	grp := gammas[0].Group()
	for i, p := range proofs {
		if !p.E.IsValid() || !p.Z.IsValid() || !p.E.Group().Equals(p.Z.Group()) || !grp.HasSameOrderAs(p.Group()) {
			return PartialDecryptionContribution{}, NewValidationErrorf("proof %d of node %d does not match the group order", i, nodeID)
		}
	}
	return PartialDecryptionContribution{
		NodeID:               nodeID,
		ExponentiatedGammas:  append([]group.GqElement(nil), gammas...),
		ExponentiationProofs: append([]zkp.ExponentiationProof(nil), proofs...),
	}, nil
}

// Psi returns the number of positions covered by the contribution.
func (c PartialDecryptionContribution) Psi() int {
	return len(c.ExponentiatedGammas)
}

// Equals reports whether both contributions carry identical values.
func (c PartialDecryptionContribution) Equals(other PartialDecryptionContribution) bool {
	if c.NodeID != other.NodeID || len(c.ExponentiatedGammas) != len(other.ExponentiatedGammas) || len(c.ExponentiationProofs) != len(other.ExponentiationProofs) {
		return false
	}
	for i := range c.ExponentiatedGammas {
		if !c.ExponentiatedGammas[i].Equals(other.ExponentiatedGammas[i]) {
			return false
		}
	}
	for i := range c.ExponentiationProofs {
		if !c.ExponentiationProofs[i].Equals(other.ExponentiationProofs[i]) {
			return false
		}
	}
	return true
}

// SplitContributions checks that exactly one contribution per node id is given
// and separates self's contribution from the others, which are returned in
// ascending node id order.
func SplitContributions(self NodeID, contributions []PartialDecryptionContribution) (PartialDecryptionContribution, []PartialDecryptionContribution, error) {
	if len(contributions) != NumberOfNodes {
		return PartialDecryptionContribution{}, nil, NewValidationErrorf("expected %d contributions, got %d", NumberOfNodes, len(contributions))
	}
	seen := make(map[NodeID]struct{}, NumberOfNodes)
	var own *PartialDecryptionContribution
	others := make([]PartialDecryptionContribution, 0, NumberOfNodes-1)
	for i := range contributions {
		c := contributions[i]
		if err := c.NodeID.Validate(); err != nil {
			return PartialDecryptionContribution{}, nil, err
		}
		if _, dup := seen[c.NodeID]; dup {
			return PartialDecryptionContribution{}, nil, NewValidationErrorf("duplicate contribution for node %d", c.NodeID)
		}
		seen[c.NodeID] = struct{}{}
		if c.NodeID == self {
			own = &c
			continue
		}
		others = append(others, c)
	}
	if own == nil {
		return PartialDecryptionContribution{}, nil, NewValidationErrorf("contribution of node %d is missing", self)
	}
	sort.Slice(others, func(i, j int) bool { return others[i].NodeID < others[j].NodeID })
	return *own, others, nil
}

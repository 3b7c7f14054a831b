package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/utils/unittest"
)

func idsFixture() CardIDs {
	return CardIDs{
		ElectionEventID:       unittest.IdentifierFixture(),
		VerificationCardSetID: unittest.IdentifierFixture(),
		VerificationCardID:    unittest.IdentifierFixture(),
	}
}

func TestPartialDecryptPCCRequest(t *testing.T) {
	setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 3, []string{"q1", "q2"})
	vote := setup.VoteFixture(t)

	request := NewPartialDecryptPCCRequest(idsFixture(), Ballot{
		EncryptedVote:                     vote.EncryptedVote,
		ExponentiatedEncryptedVote:        vote.ExponentiatedEncryptedVote,
		EncryptedPartialChoiceReturnCodes: vote.EncryptedPartialChoiceReturnCodes,
		ExponentiationProof:               vote.ExponentiationProof,
		PlaintextEqualityProof:            vote.PlaintextEqualityProof,
	})
	require.NoError(t, Validate(request))

	ballot, err := request.ToBallot(setup.Group)
	require.NoError(t, err)
	assert.True(t, ballot.EncryptedPartialChoiceReturnCodes.Equals(vote.EncryptedPartialChoiceReturnCodes))
	assert.True(t, ballot.ExponentiationProof.Equals(vote.ExponentiationProof))

	t.Run("elements of another group", func(t *testing.T) {
		// the encoding carries no group; decoding in a smaller group must fail
		_, err := request.ToBallot(unittest.SmallGroupFixture(t))
		assert.True(t, ccr.IsValidationError(err))
	})
}

func TestValidate(t *testing.T) {
	request := PartialDecryptPCCRequest{
		CardIDs: CardIDs{
			ElectionEventID:       "NOT-AN-ID",
			VerificationCardSetID: unittest.IdentifierFixture(),
			VerificationCardID:    "",
		},
	}
	err := Validate(request)
	require.Error(t, err)
	assert.True(t, ccr.IsValidationError(err))
	assert.Contains(t, err.Error(), "ElectionEventID")
	assert.Contains(t, err.Error(), "VerificationCardID")
	assert.Contains(t, err.Error(), "EncryptedVote.Gamma")
	assert.NotContains(t, err.Error(), "VerificationCardSetID")
}

func TestLCCShareRequest(t *testing.T) {
	setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 2, []string{"q1", "q2"})
	vote := setup.VoteFixture(t)
	e2 := vote.EncryptedPartialChoiceReturnCodes

	contributions := make([]ccr.PartialDecryptionContribution, 0, ccr.NumberOfNodes)
	for _, nodeID := range ccr.NodeIDs() {
		contribution, err := ccr.NewPartialDecryptionContribution(nodeID, e2.Phis, []zkp.ExponentiationProof{vote.ExponentiationProof, vote.ExponentiationProof})
		require.NoError(t, err)
		contributions = append(contributions, contribution)
	}

	request := NewLCCShareRequest(idsFixture(), e2, contributions)
	require.NoError(t, Validate(request))

	decodedE2, decoded, err := request.Decode(setup.Group)
	require.NoError(t, err)
	assert.True(t, decodedE2.Equals(e2))
	require.Len(t, decoded, ccr.NumberOfNodes)
	for i := range decoded {
		assert.True(t, decoded[i].Equals(contributions[i]))
	}

	t.Run("three contributions", func(t *testing.T) {
		short := request
		short.Contributions = request.Contributions[:3]
		assert.True(t, ccr.IsValidationError(Validate(short)))
	})

	t.Run("node id out of range", func(t *testing.T) {
		invalid := request
		invalid.Contributions = append([]Contribution(nil), request.Contributions...)
		invalid.Contributions[0].NodeID = 7
		assert.True(t, ccr.IsValidationError(Validate(invalid)))
	})

	t.Run("proof count differs from gamma count", func(t *testing.T) {
		invalid := request
		invalid.Contributions = append([]Contribution(nil), request.Contributions...)
		invalid.Contributions[1].ExponentiationProofs = invalid.Contributions[1].ExponentiationProofs[:1]
		assert.True(t, ccr.IsValidationError(Validate(invalid)))
	})
}

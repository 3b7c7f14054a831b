package ccr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
)

func TestValidateIdentifier(t *testing.T) {
	require.NoError(t, ValidateIdentifier("id", "0123456789abcdef0123456789abcdef"))

	invalid := []string{
		"",
		"0123456789ABCDEF0123456789ABCDEF",
		"0123456789abcdef0123456789abcde",
		"0123456789abcdef0123456789abcdef0",
		"0x23456789abcdef0123456789abcdef",
		"0123456789abcdef0123456789abcdeg",
	}
	for _, id := range invalid {
		err := ValidateIdentifier("id", id)
		require.Error(t, err, id)
		assert.True(t, IsValidationError(err))
	}
}

func TestNodeID(t *testing.T) {
	for _, id := range NodeIDs() {
		require.NoError(t, id.Validate())
	}
	assert.True(t, IsValidationError(NodeID(0).Validate()))
	assert.True(t, IsValidationError(NodeID(5).Validate()))
}

func TestVerificationCardState_IsValidTransition(t *testing.T) {
	initial := VerificationCardState{}
	decrypted := VerificationCardState{PartiallyDecrypted: true}
	both := VerificationCardState{PartiallyDecrypted: true, LCCShareCreated: true}

	assert.True(t, initial.IsValidTransition(decrypted))
	assert.True(t, decrypted.IsValidTransition(both))
	assert.False(t, decrypted.IsValidTransition(initial), "flags must never be reset")
	assert.False(t, decrypted.IsValidTransition(decrypted), "a transition must change a flag")
	assert.False(t, both.IsValidTransition(decrypted))
}

func TestSplitContributions(t *testing.T) {
	grp, err := group.NewGqGroup(big.NewInt(11), big.NewInt(5), big.NewInt(3))
	require.NoError(t, err)
	zq := grp.ZqGroup()
	proof, err := zkp.NewExponentiationProof(zq.Zero(), zq.Zero())
	require.NoError(t, err)

	contribution := func(node NodeID) PartialDecryptionContribution {
		c, err := NewPartialDecryptionContribution(node, []group.GqElement{grp.Generator()}, []zkp.ExponentiationProof{proof})
		require.NoError(t, err)
		return c
	}

	t.Run("own and others ordered", func(t *testing.T) {
		own, others, err := SplitContributions(2, []PartialDecryptionContribution{
			contribution(4), contribution(2), contribution(1), contribution(3),
		})
		require.NoError(t, err)
		assert.Equal(t, NodeID(2), own.NodeID)
		require.Len(t, others, 3)
		assert.Equal(t, NodeID(1), others[0].NodeID)
		assert.Equal(t, NodeID(3), others[1].NodeID)
		assert.Equal(t, NodeID(4), others[2].NodeID)
	})

	t.Run("wrong count", func(t *testing.T) {
		_, _, err := SplitContributions(1, []PartialDecryptionContribution{contribution(1), contribution(2), contribution(3)})
		require.True(t, IsValidationError(err))
	})

	t.Run("duplicate node", func(t *testing.T) {
		_, _, err := SplitContributions(1, []PartialDecryptionContribution{contribution(1), contribution(2), contribution(2), contribution(3)})
		require.True(t, IsValidationError(err))
	})

	t.Run("own contribution missing", func(t *testing.T) {
		_, _, err := SplitContributions(1, []PartialDecryptionContribution{contribution(2), contribution(3), contribution(4), contribution(4)})
		require.True(t, IsValidationError(err))
	})
}

func TestNewPartialDecryptionContribution(t *testing.T) {
	grp, err := group.NewGqGroup(big.NewInt(11), big.NewInt(5), big.NewInt(3))
	require.NoError(t, err)
	zq := grp.ZqGroup()
	proof, err := zkp.NewExponentiationProof(zq.Zero(), zq.Zero())
	require.NoError(t, err)

	_, err = NewPartialDecryptionContribution(1, []group.GqElement{grp.Generator(), grp.Identity()}, []zkp.ExponentiationProof{proof})
	require.True(t, IsValidationError(err))

	_, err = NewPartialDecryptionContribution(1, nil, nil)
	require.True(t, IsValidationError(err))

	t.Run("proof response missing", func(t *testing.T) {
		unset := zkp.ExponentiationProof{E: zq.Zero()}
		_, err := NewPartialDecryptionContribution(1, []group.GqElement{grp.Generator()}, []zkp.ExponentiationProof{unset})
		require.True(t, IsValidationError(err))
	})

	t.Run("proof response of another group", func(t *testing.T) {
		other, err := group.NewZqGroup(big.NewInt(7))
		require.NoError(t, err)
		mixed := zkp.ExponentiationProof{E: zq.Zero(), Z: other.Zero()}
		_, err = NewPartialDecryptionContribution(1, []group.GqElement{grp.Generator()}, []zkp.ExponentiationProof{mixed})
		require.True(t, IsValidationError(err))
	})
}

func TestCombinedCorrectnessInformation(t *testing.T) {
	info, err := NewCombinedCorrectnessInformation([]string{"q1", "q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, 3, info.Psi())

	id, err := info.CorrectnessID(2)
	require.NoError(t, err)
	assert.Equal(t, "q2", id)

	_, err = info.CorrectnessID(3)
	require.True(t, IsValidationError(err))

	_, err = NewCombinedCorrectnessInformation(nil)
	require.True(t, IsValidationError(err))
}

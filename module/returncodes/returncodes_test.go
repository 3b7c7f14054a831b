package returncodes

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/metrics"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/unittest"
)

const self = ccr.NodeID(2)

// harness is one node with a provisioned card set, card and allow-list.
type harness struct {
	db            *badger.DB
	setup         unittest.ElectionSetup
	vote          unittest.Vote
	ctx           ccr.EncryptionContext
	states        *bstorage.VerificationCardStates
	contributions *bstorage.Contributions
	allowLists    *bstorage.AllowLists
	protocol      *Protocol
	service       *LCCShareService
}

func newHarness(t *testing.T, db *badger.DB, correctnessIDs []string) *harness {
	setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), len(correctnessIDs), correctnessIDs)
	vote := setup.VoteFixture(t)

	cards := bstorage.NewVerificationCards(db)
	require.NoError(t, cards.Store(vote.Card))

	h := &harness{
		db:            db,
		setup:         setup,
		vote:          vote,
		ctx:           setup.Context(t, self),
		states:        bstorage.NewVerificationCardStates(db),
		contributions: bstorage.NewContributions(db),
		allowLists:    bstorage.NewAllowLists(db),
	}
	collector := metrics.NewNoopCollector()
	h.protocol = NewProtocol(unittest.Logger(), h.states, h.contributions, h.allowLists, collector)
	h.service = NewLCCShareService(unittest.Logger(), h.protocol, h.contributions, collector)
	return h
}

func (h *harness) allowListVote(t *testing.T) {
	entries := h.setup.AllowListFixture(t, h.vote.Card, h.vote.PartialChoiceReturnCodes)
	require.NoError(t, h.allowLists.Append(h.setup.CardSet.VerificationCardSetID, entries))
}

func (h *harness) partialDecryptInput(nodeID ccr.NodeID) PartialDecryptPCCInput {
	return PartialDecryptPCCInput{
		VerificationCardID:                h.vote.Card.VerificationCardID,
		EncryptedVote:                     h.vote.EncryptedVote,
		ExponentiatedEncryptedVote:        h.vote.ExponentiatedEncryptedVote,
		EncryptedPartialChoiceReturnCodes: h.vote.EncryptedPartialChoiceReturnCodes,
		KeyPair:                           h.setup.NodeKeys[nodeID].ChoiceReturnCodesEncryptionKeyPair,
	}
}

// partialDecrypt runs the partial decryption of this node in its own unit of work.
func (h *harness) partialDecrypt(t *testing.T) ccr.PartialDecryptionContribution {
	var contribution ccr.PartialDecryptionContribution
	err := transaction.Update(h.db, func(tx *transaction.Tx) error {
		var err error
		contribution, err = h.protocol.PartialDecryptPCC(tx, h.ctx, h.partialDecryptInput(self))
		return err
	})
	require.NoError(t, err)
	return contribution
}

// contributionFixture computes the contribution of another node for E2.
func (h *harness) contributionFixture(t *testing.T, nodeID ccr.NodeID) ccr.PartialDecryptionContribution {
	keyPair := h.setup.NodeKeys[nodeID].ChoiceReturnCodesEncryptionKeyPair
	e2 := h.vote.EncryptedPartialChoiceReturnCodes
	gammas := make([]group.GqElement, 0, e2.Size())
	proofs := make([]zkp.ExponentiationProof, 0, e2.Size())
	for i := 0; i < e2.Size(); i++ {
		d := e2.Gamma.Exponentiate(keyPair.PrivateKey[i])
		proof, err := zkp.GenExponentiationProof(
			[]group.GqElement{h.setup.Group.Generator(), e2.Gamma},
			keyPair.PrivateKey[i],
			[]group.GqElement{keyPair.PublicKey[i], d},
			[]string{nodeID.String()},
		)
		require.NoError(t, err)
		gammas = append(gammas, d)
		proofs = append(proofs, proof)
	}
	contribution, err := ccr.NewPartialDecryptionContribution(nodeID, gammas, proofs)
	require.NoError(t, err)
	return contribution
}

// allContributions returns the contributions of all nodes, with own in place of self's.
func (h *harness) allContributions(t *testing.T, own ccr.PartialDecryptionContribution) []ccr.PartialDecryptionContribution {
	contributions := make([]ccr.PartialDecryptionContribution, 0, ccr.NumberOfNodes)
	for _, nodeID := range ccr.NodeIDs() {
		if nodeID == self {
			contributions = append(contributions, own)
			continue
		}
		contributions = append(contributions, h.contributionFixture(t, nodeID))
	}
	return contributions
}

func (h *harness) lccShareInput(contributions []ccr.PartialDecryptionContribution) LCCShareInput {
	return LCCShareInput{
		VerificationCardID:                h.vote.Card.VerificationCardID,
		EncryptedPartialChoiceReturnCodes: h.vote.EncryptedPartialChoiceReturnCodes,
		Contributions:                     contributions,
		ReturnCodesGenerationSecretKey:    h.setup.NodeKeys[self].ReturnCodesGenerationSecretKey,
		CorrectnessInformation:            h.setup.CardSet.CombinedCorrectnessInformation,
	}
}

func (h *harness) state(t *testing.T) ccr.VerificationCardState {
	state, err := h.states.ByVerificationCardID(h.vote.Card.VerificationCardID)
	require.NoError(t, err)
	return state
}

// flipPhi returns a copy of c whose i-th phi is multiplied by the generator.
func flipPhi(t *testing.T, c elgamal.Ciphertext, i int) elgamal.Ciphertext {
	phis := append([]group.GqElement(nil), c.Phis...)
	phis[i] = phis[i].Multiply(c.Group().Generator())
	flipped, err := elgamal.NewCiphertext(c.Gamma, phis)
	require.NoError(t, err)
	return flipped
}

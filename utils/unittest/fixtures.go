package unittest

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/evote-ccr/control-component/crypto/elgamal"
	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/hash"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
)

// 256-bit safe prime p = 2q + 1; 4 = 2^2 generates the quadratic residues.
const (
	largeP = "70513564755796113313494098313172671097797041817704976070351099160253079959467"
	largeQ = "35256782377898056656747049156586335548898520908852488035175549580126539979733"
)

// IdentifierFixture returns a random 32 character lowercase hex identifier.
func IdentifierFixture() string {
	return hex.EncodeToString(frand.Bytes(16))
}

// SmallGroupFixture returns the group p=11, q=5, g=3.
func SmallGroupFixture(t testing.TB) *group.GqGroup {
	grp, err := group.NewGqGroup(big.NewInt(11), big.NewInt(5), big.NewInt(3))
	require.NoError(t, err)
	return grp
}

// GroupFixture returns a 256-bit group, large enough for collision-free proofs in tests.
func GroupFixture(t testing.TB) *group.GqGroup {
	p, ok := new(big.Int).SetString(largeP, 10)
	require.True(t, ok)
	q, ok := new(big.Int).SetString(largeQ, 10)
	require.True(t, ok)
	grp, err := group.NewGqGroup(p, q, big.NewInt(4))
	require.NoError(t, err)
	return grp
}

// RandomElementFixture returns g^r for a random exponent r.
func RandomElementFixture(grp *group.GqGroup) group.GqElement {
	return grp.Generator().Exponentiate(group.RandomZqElement(grp.ZqGroup()))
}

// ElectionSetup holds the key material of all four nodes of one election
// event together with one verification card set.
type ElectionSetup struct {
	Group      *group.GqGroup
	MaxOptions int
	Event      ccr.ElectionEventContext
	// ElectionKeyPair is the (dummy, size-1) election key pair.
	ElectionKeyPair elgamal.KeyPair
	NodeKeys        map[ccr.NodeID]ccr.NodeKeys
	CardSet         ccr.VerificationCardSet
}

// ElectionSetupFixture generates the keys of all nodes and a card set with the
// given correctness ids. The combined choice return codes encryption public key
// is the element-wise product of the node public keys.
func ElectionSetupFixture(t testing.TB, grp *group.GqGroup, maxOptions int, correctnessIDs []string) ElectionSetup {
	electionEventID := IdentifierFixture()

	electionKeyPair, err := elgamal.GenKeyPair(grp, 1)
	require.NoError(t, err)

	nodeKeys := make(map[ccr.NodeID]ccr.NodeKeys, ccr.NumberOfNodes)
	combined := make([]group.GqElement, maxOptions)
	for i := range combined {
		combined[i] = grp.Identity()
	}
	for _, nodeID := range ccr.NodeIDs() {
		keyPair, err := elgamal.GenKeyPair(grp, maxOptions)
		require.NoError(t, err)
		keys, err := ccr.NewNodeKeys(electionEventID, nodeID, grp, keyPair, group.RandomZqElement(grp.ZqGroup()))
		require.NoError(t, err)
		nodeKeys[nodeID] = keys
		for i := range combined {
			combined[i] = combined[i].Multiply(keyPair.PublicKey[i])
		}
	}

	event, err := ccr.NewElectionEventContext(electionEventID, grp, electionKeyPair.PublicKey, combined)
	require.NoError(t, err)

	info, err := ccr.NewCombinedCorrectnessInformation(correctnessIDs)
	require.NoError(t, err)

	return ElectionSetup{
		Group:           grp,
		MaxOptions:      maxOptions,
		Event:           event,
		ElectionKeyPair: electionKeyPair,
		NodeKeys:        nodeKeys,
		CardSet: ccr.VerificationCardSet{
			ElectionEventID:                electionEventID,
			VerificationCardSetID:          IdentifierFixture(),
			CombinedCorrectnessInformation: info,
		},
	}
}

// Context returns the encryption context of the given node.
func (s ElectionSetup) Context(t testing.TB, nodeID ccr.NodeID) ccr.EncryptionContext {
	ctx, err := ccr.NewEncryptionContext(nodeID, s.Event.ElectionEventID, s.CardSet.VerificationCardSetID, s.Group)
	require.NoError(t, err)
	return ctx
}

// Psi returns the number of selectable options of the card set.
func (s ElectionSetup) Psi() int {
	return s.CardSet.CombinedCorrectnessInformation.Psi()
}

// Vote is a voter's encrypted ballot as produced by the voting client,
// together with the secrets needed to check the node computations.
type Vote struct {
	Card                              ccr.VerificationCard
	CardSecretKey                     group.ZqElement
	EncryptedVote                     elgamal.Ciphertext
	ExponentiatedEncryptedVote        elgamal.Ciphertext
	EncryptedPartialChoiceReturnCodes elgamal.Ciphertext
	ExponentiationProof               zkp.ExponentiationProof
	PlaintextEqualityProof            zkp.PlaintextEqualityProof
	// PartialChoiceReturnCodes are the plaintexts of EncryptedPartialChoiceReturnCodes.
	PartialChoiceReturnCodes []group.GqElement
}

// VoteFixture creates a verification card and a valid vote for it, selecting
// one random voting option per position.
func (s ElectionSetup) VoteFixture(t testing.TB) Vote {
	grp := s.Group
	zq := grp.ZqGroup()
	psi := s.Psi()

	cardSecretKey := group.RandomZqElement(zq)
	card, err := ccr.NewVerificationCard(s.Event.ElectionEventID, s.CardSet.VerificationCardSetID, IdentifierFixture(), grp.Generator().Exponentiate(cardSecretKey))
	require.NoError(t, err)

	options := make([]group.GqElement, 0, psi)
	pCC := make([]group.GqElement, 0, psi)
	for i := 0; i < psi; i++ {
		option := RandomElementFixture(grp)
		options = append(options, option)
		pCC = append(pCC, option.Exponentiate(cardSecretKey))
	}
	encodedVote, err := group.Product(options)
	require.NoError(t, err)

	// E1 = Enc(vote, r, EL_pk), E1~ = E1^k, E2 = Enc(pCC, r', pk_CCR)
	r := group.RandomZqElement(zq)
	encryptedVote, err := elgamal.Encrypt([]group.GqElement{encodedVote}, r, s.Event.ElectionPublicKey)
	require.NoError(t, err)
	exponentiatedVote := encryptedVote.Exponentiate(cardSecretKey)
	rPrime := group.RandomZqElement(zq)
	encryptedPCC, err := elgamal.Encrypt(pCC, rPrime, s.Event.ChoiceReturnCodesEncryptionPublicKey)
	require.NoError(t, err)

	aux := VoteAuxiliaryData(s.Event, card.VerificationCardID)

	exponentiationProof, err := zkp.GenExponentiationProof(
		[]group.GqElement{grp.Generator(), encryptedVote.Gamma, encryptedVote.Phi(0)},
		cardSecretKey,
		[]group.GqElement{card.PublicKey, exponentiatedVote.Gamma, exponentiatedVote.Phi(0)},
		aux,
	)
	require.NoError(t, err)

	phiProduct, err := group.Product(encryptedPCC.Phis)
	require.NoError(t, err)
	compressed, err := elgamal.NewCiphertext(encryptedPCC.Gamma, []group.GqElement{phiProduct})
	require.NoError(t, err)
	compressedKey, err := s.Event.ChoiceReturnCodesEncryptionPublicKey.CompressedProduct(psi)
	require.NoError(t, err)

	equalityProof, err := zkp.GenPlaintextEqualityProof(
		exponentiatedVote,
		compressed,
		s.Event.ElectionPublicKey[0],
		compressedKey,
		[2]group.ZqElement{r.Multiply(cardSecretKey), rPrime},
		aux,
	)
	require.NoError(t, err)

	return Vote{
		Card:                              card,
		CardSecretKey:                     cardSecretKey,
		EncryptedVote:                     encryptedVote,
		ExponentiatedEncryptedVote:        exponentiatedVote,
		EncryptedPartialChoiceReturnCodes: encryptedPCC,
		ExponentiationProof:               exponentiationProof,
		PlaintextEqualityProof:            equalityProof,
		PartialChoiceReturnCodes:          pCC,
	}
}

// VoteAuxiliaryData is the auxiliary data the voting client binds the vote proofs to.
func VoteAuxiliaryData(event ccr.ElectionEventContext, verificationCardID string) []string {
	aux := []string{event.ElectionEventID, verificationCardID}
	for _, e := range event.ElectionPublicKey {
		aux = append(aux, e.Value().String())
	}
	return append(aux, "CreateVote")
}

// AllowListFixture returns the allow-list entries of the given partial choice
// return codes of a card.
func (s ElectionSetup) AllowListFixture(t testing.TB, card ccr.VerificationCard, pCC []group.GqElement) []string {
	entries := make([]string, 0, len(pCC))
	for i, code := range pCC {
		hashed, err := hash.HashAndSquare(code.Value(), s.Group)
		require.NoError(t, err)
		correctnessID, err := s.CardSet.CombinedCorrectnessInformation.CorrectnessID(i)
		require.NoError(t, err)
		entry, err := ccr.AllowListKey(hashed, card.VerificationCardID, card.ElectionEventID, correctnessID)
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

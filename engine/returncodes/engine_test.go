package returncodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/evote-ccr/control-component/crypto/group"
	"github.com/evote-ccr/control-component/crypto/zkp"
	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/messages"
	"github.com/evote-ccr/control-component/module/exactlyonce"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/module/provisioning"
	"github.com/evote-ccr/control-component/module/returncodes"
	"github.com/evote-ccr/control-component/module/signature"
	"github.com/evote-ccr/control-component/network"
	"github.com/evote-ccr/control-component/network/codec"
	"github.com/evote-ccr/control-component/network/codec/cbor"
	"github.com/evote-ccr/control-component/network/stub"
	"github.com/evote-ccr/control-component/storage"
	bstorage "github.com/evote-ccr/control-component/storage/badger"
	"github.com/evote-ccr/control-component/utils/unittest"
)

const votingServer = "voting-server"

// election is the shared setup of all nodes: the keys, a card with its vote
// and the signing keys of the voting server and of the nodes.
type election struct {
	setup   unittest.ElectionSetup
	vote    unittest.Vote
	ids     messages.CardIDs
	codec   *cbor.Codec
	sender  *signature.KeySigner
	signers map[ccr.NodeID]*signature.KeySigner
	trust   *signature.TrustStore
}

func newSigner(t *testing.T, alias string) *signature.KeySigner {
	key, err := signature.GenerateKey()
	require.NoError(t, err)
	signer, err := signature.NewKeySignerFromHex(alias, key)
	require.NoError(t, err)
	return signer
}

func newElection(t *testing.T) *election {
	setup := unittest.ElectionSetupFixture(t, unittest.GroupFixture(t), 2, []string{"q1", "q2"})
	vote := setup.VoteFixture(t)

	e := &election{
		setup:   setup,
		vote:    vote,
		codec:   cbor.NewCodec(),
		sender:  newSigner(t, votingServer),
		signers: make(map[ccr.NodeID]*signature.KeySigner),
		ids: messages.CardIDs{
			ElectionEventID:       setup.Event.ElectionEventID,
			VerificationCardSetID: setup.CardSet.VerificationCardSetID,
			VerificationCardID:    vote.Card.VerificationCardID,
		},
	}
	trusted := map[string]string{votingServer: e.sender.PublicKeyHex()}
	for _, nodeID := range ccr.NodeIDs() {
		signer := newSigner(t, "ccr-"+nodeID.String())
		e.signers[nodeID] = signer
		trusted[signer.Alias()] = signer.PublicKeyHex()
	}
	trust, err := signature.NewTrustStore(trusted)
	require.NoError(t, err)
	e.trust = trust
	return e
}

func (e *election) ballot() messages.Ballot {
	return messages.Ballot{
		EncryptedVote:                     e.vote.EncryptedVote,
		ExponentiatedEncryptedVote:        e.vote.ExponentiatedEncryptedVote,
		EncryptedPartialChoiceReturnCodes: e.vote.EncryptedPartialChoiceReturnCodes,
		ExponentiationProof:               e.vote.ExponentiationProof,
		PlaintextEqualityProof:            e.vote.PlaintextEqualityProof,
	}
}

// envelope encodes msg and signs it as the voting server.
func (e *election) envelope(t *testing.T, correlationID string, msg interface{}) *network.Envelope {
	code, payload, err := e.codec.Encode(msg)
	require.NoError(t, err)
	envelope := &network.Envelope{Code: code, CorrelationID: correlationID, Payload: payload}
	require.NoError(t, envelope.Sign(e.sender))
	return envelope
}

func (e *election) partialDecryptRequest(t *testing.T, correlationID string) *network.Envelope {
	request := messages.NewPartialDecryptPCCRequest(e.ids, e.ballot())
	return e.envelope(t, correlationID, &request)
}

func (e *election) lccShareRequest(t *testing.T, correlationID string, contributions []ccr.PartialDecryptionContribution) *network.Envelope {
	request := messages.NewLCCShareRequest(e.ids, e.vote.EncryptedPartialChoiceReturnCodes, contributions)
	return e.envelope(t, correlationID, &request)
}

// decode verifies the response signature and decodes its payload.
func (e *election) decode(t *testing.T, response *network.Envelope) interface{} {
	require.NoError(t, response.Verify(e.trust))
	msg, err := e.codec.Decode(response.Code, response.Payload)
	require.NoError(t, err)
	return msg
}

func (e *election) requireRejection(t *testing.T, response *network.Envelope, category string) {
	require.Equal(t, codec.CodeRejection, response.Code)
	rejection := e.decode(t, response).(*messages.RejectionResponse)
	assert.Equal(t, category, rejection.Category, rejection.Reason)
}

type node struct {
	id        ccr.NodeID
	storage   *storage.All
	publisher *stub.Publisher
	engine    *Engine
}

// newNode provisions a node with the election and starts its engine.
func newNode(t *testing.T, e *election, nodeID ccr.NodeID) *node {
	db := unittest.TempBadgerDB(t)
	log := unittest.Logger()
	collector := metrics.NewNoopCollector()
	all := bstorage.InitAll(collector, db)

	provisioner := provisioning.New(log, nodeID, e.setup.MaxOptions, all, lock.NewRegistry(), lock.DefaultRetryConfig(), collector)
	require.NoError(t, provisioner.RegisterElectionEvent(e.setup.Event))
	require.NoError(t, provisioner.RegisterNodeKeys(e.setup.NodeKeys[nodeID]))
	require.NoError(t, provisioner.RegisterVerificationCardSet(e.setup.CardSet))
	require.NoError(t, provisioner.RegisterVerificationCards(e.ids.ElectionEventID, e.ids.VerificationCardSetID, []ccr.VerificationCard{e.vote.Card}))
	entries := e.setup.AllowListFixture(t, e.vote.Card, e.vote.PartialChoiceReturnCodes)
	require.NoError(t, provisioner.AppendAllowList(context.Background(), e.ids.VerificationCardSetID, entries))

	protocol := returncodes.NewProtocol(log, all.VerificationCardStates, all.Contributions, all.AllowLists, collector)
	n := &node{
		id:        nodeID,
		storage:   all,
		publisher: stub.NewPublisher(16),
	}
	n.engine = New(
		log,
		nodeID,
		all,
		e.codec,
		e.signers[nodeID],
		e.trust,
		n.publisher,
		exactlyonce.NewProcessor(log, db, all.Commands, collector),
		protocol,
		returncodes.NewLCCShareService(log, protocol, all.Contributions, collector),
		collector,
		2,
	)
	t.Cleanup(n.engine.Stop)
	return n
}

func (n *node) process(t *testing.T, envelope *network.Envelope) *network.Envelope {
	response, err := n.engine.Process(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, envelope.CorrelationID, response.CorrelationID)
	assert.Equal(t, "ccr-"+n.id.String(), response.Sender)
	return response
}

func (n *node) state(t *testing.T, verificationCardID string) ccr.VerificationCardState {
	state, err := n.storage.VerificationCardStates.ByVerificationCardID(verificationCardID)
	require.NoError(t, err)
	return state
}

// TestEngine_FourNodes runs both phases of a vote through the engines of all
// four nodes, including redeliveries of every request.
func TestEngine_FourNodes(t *testing.T) {
	e := newElection(t)
	nodes := make([]*node, 0, ccr.NumberOfNodes)
	for _, nodeID := range ccr.NodeIDs() {
		nodes = append(nodes, newNode(t, e, nodeID))
	}
	grp := e.setup.Group

	decryptRequest := e.partialDecryptRequest(t, "partial-decrypt-1")
	contributions := make([]ccr.PartialDecryptionContribution, 0, ccr.NumberOfNodes)
	for _, n := range nodes {
		response := n.process(t, decryptRequest)
		require.Equal(t, codec.CodePartialDecryptPCCResponse, response.Code)
		decoded := e.decode(t, response).(*messages.PartialDecryptPCCResponse)
		assert.Equal(t, e.ids, decoded.CardIDs)

		contribution, err := decoded.Contribution.ToContribution(grp)
		require.NoError(t, err)
		assert.Equal(t, n.id, contribution.NodeID)
		contributions = append(contributions, contribution)

		redelivered := n.process(t, decryptRequest)
		assert.Equal(t, response.Payload, redelivered.Payload, "redelivery must be answered from the ledger")
		assert.True(t, n.state(t, e.ids.VerificationCardID).PartiallyDecrypted)
		assert.Len(t, n.publisher.Envelopes(), 2)
	}

	shareRequest := e.lccShareRequest(t, "lcc-share-1", contributions)
	var hashed []group.GqElement
	for _, n := range nodes {
		response := n.process(t, shareRequest)
		require.Equal(t, codec.CodeLCCShareResponse, response.Code)
		share, err := e.decode(t, response).(*messages.LCCShareResponse).ToLCCShare(grp)
		require.NoError(t, err)
		assert.Equal(t, n.id, share.NodeID)
		assert.Equal(t, e.ids.VerificationCardID, share.VerificationCardID)
		require.Len(t, share.LongChoiceReturnCodeShare, 2)

		// every node hashes the same decrypted partial choice return codes
		if hashed == nil {
			hashed = share.HashedPartialChoiceReturnCodes
		}
		for i := range hashed {
			assert.True(t, hashed[i].Equals(share.HashedPartialChoiceReturnCodes[i]))
		}

		redelivered := n.process(t, shareRequest)
		assert.Equal(t, response.Payload, redelivered.Payload)
		assert.True(t, n.state(t, e.ids.VerificationCardID).LCCShareCreated)
	}
}

type EngineSuite struct {
	suite.Suite
	election *election
	node     *node
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.election = newElection(s.T())
	s.node = newNode(s.T(), s.election, 1)
}

func (s *EngineSuite) TestInvalidSignature() {
	envelope := s.election.partialDecryptRequest(s.T(), "corr")
	envelope.Payload = append([]byte(nil), envelope.Payload...)
	envelope.Payload[len(envelope.Payload)-1] ^= 0x01

	response := s.node.process(s.T(), envelope)
	s.election.requireRejection(s.T(), response, metrics.CategoryValidation)
	s.Assert().False(s.node.state(s.T(), s.election.ids.VerificationCardID).PartiallyDecrypted)
}

func (s *EngineSuite) TestUntrustedSender() {
	code, payload, err := s.election.codec.Encode(&messages.RejectionResponse{Category: "x"})
	s.Require().NoError(err)
	envelope := &network.Envelope{Code: code, CorrelationID: "corr", Payload: payload}
	s.Require().NoError(envelope.Sign(newSigner(s.T(), "intruder")))

	response := s.node.process(s.T(), envelope)
	s.election.requireRejection(s.T(), response, metrics.CategoryValidation)
}

func (s *EngineSuite) TestMalformedPayload() {
	envelope := &network.Envelope{Code: codec.CodeLCCShareRequest, CorrelationID: "corr", Payload: []byte{0xff, 0x01}}
	s.Require().NoError(envelope.Sign(s.election.sender))

	response := s.node.process(s.T(), envelope)
	s.election.requireRejection(s.T(), response, metrics.CategoryCodec)
}

func (s *EngineSuite) TestUnexpectedMessage() {
	envelope := s.election.envelope(s.T(), "corr", &messages.RejectionResponse{Category: "protocol"})
	response := s.node.process(s.T(), envelope)
	s.election.requireRejection(s.T(), response, metrics.CategoryValidation)
}

func (s *EngineSuite) TestUnknownCard() {
	request := messages.NewPartialDecryptPCCRequest(s.election.ids, s.election.ballot())
	request.VerificationCardID = unittest.IdentifierFixture()

	response := s.node.process(s.T(), s.election.envelope(s.T(), "corr", &request))
	s.election.requireRejection(s.T(), response, metrics.CategoryValidation)
}

func (s *EngineSuite) TestInvalidIdentifiers() {
	request := messages.NewPartialDecryptPCCRequest(s.election.ids, s.election.ballot())
	request.ElectionEventID = "not-an-id"

	response := s.node.process(s.T(), s.election.envelope(s.T(), "corr", &request))
	s.election.requireRejection(s.T(), response, metrics.CategoryValidation)
}

// swappedProof returns a request whose exponentiation proof does not verify.
func (s *EngineSuite) swappedProof() *messages.PartialDecryptPCCRequest {
	ballot := s.election.ballot()
	proof, err := zkp.NewExponentiationProof(ballot.ExponentiationProof.Z, ballot.ExponentiationProof.E)
	s.Require().NoError(err)
	ballot.ExponentiationProof = proof
	request := messages.NewPartialDecryptPCCRequest(s.election.ids, ballot)
	return &request
}

func (s *EngineSuite) TestBallotProofFails() {
	response := s.node.process(s.T(), s.election.envelope(s.T(), "corr", s.swappedProof()))
	s.election.requireRejection(s.T(), response, metrics.CategoryProtocol)
	s.Assert().False(s.node.state(s.T(), s.election.ids.VerificationCardID).PartiallyDecrypted)

	// the failed command is not completed, the valid ballot is still accepted
	response = s.node.process(s.T(), s.election.partialDecryptRequest(s.T(), "corr-2"))
	s.Assert().Equal(codec.CodePartialDecryptPCCResponse, response.Code)
}

func (s *EngineSuite) TestConflictingRedelivery() {
	response := s.node.process(s.T(), s.election.partialDecryptRequest(s.T(), "corr"))
	s.Require().Equal(codec.CodePartialDecryptPCCResponse, response.Code)

	response = s.node.process(s.T(), s.election.envelope(s.T(), "corr", s.swappedProof()))
	s.election.requireRejection(s.T(), response, metrics.CategoryConflict)
}

func (s *EngineSuite) TestSecondDecryptionOfCard() {
	response := s.node.process(s.T(), s.election.partialDecryptRequest(s.T(), "corr-1"))
	s.Require().Equal(codec.CodePartialDecryptPCCResponse, response.Code)

	response = s.node.process(s.T(), s.election.partialDecryptRequest(s.T(), "corr-2"))
	s.election.requireRejection(s.T(), response, metrics.CategoryState)
}

func (s *EngineSuite) TestShareBeforeDecryption() {
	contributions := make([]ccr.PartialDecryptionContribution, 0, ccr.NumberOfNodes)
	for _, nodeID := range ccr.NodeIDs() {
		gammas := s.election.vote.EncryptedPartialChoiceReturnCodes.Phis
		proofs := []zkp.ExponentiationProof{s.election.vote.ExponentiationProof, s.election.vote.ExponentiationProof}
		contribution, err := ccr.NewPartialDecryptionContribution(nodeID, gammas, proofs)
		s.Require().NoError(err)
		contributions = append(contributions, contribution)
	}

	response := s.node.process(s.T(), s.election.lccShareRequest(s.T(), "corr", contributions))
	s.election.requireRejection(s.T(), response, metrics.CategoryProtocol)
	s.Assert().False(s.node.state(s.T(), s.election.ids.VerificationCardID).LCCShareCreated)
}

func (s *EngineSuite) TestPublishFailure() {
	s.node.publisher.FailWith(errors.New("broker unavailable"))
	_, err := s.node.engine.Process(context.Background(), s.election.partialDecryptRequest(s.T(), "corr"))
	s.Require().Error(err)

	// the redelivery is answered from the ledger once the broker is back
	s.node.publisher.FailWith(nil)
	response := s.node.process(s.T(), s.election.partialDecryptRequest(s.T(), "corr"))
	s.Assert().Equal(codec.CodePartialDecryptPCCResponse, response.Code)
}

func (s *EngineSuite) TestSubmit() {
	envelope := s.election.partialDecryptRequest(s.T(), "corr")
	s.Require().NoError(s.node.engine.Submit(envelope))

	select {
	case response := <-s.node.publisher.Published():
		s.Assert().Equal("corr", response.CorrelationID)
		s.Assert().Equal(codec.CodePartialDecryptPCCResponse, response.Code)
	case <-time.After(10 * time.Second):
		s.T().Fatal("response was not published")
	}

	s.node.engine.Stop()
	s.Assert().ErrorIs(s.node.engine.Submit(envelope), ErrStopped)
	s.Assert().Zero(s.node.engine.InFlight())
}

package cbor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evote-ccr/control-component/model/messages"
	"github.com/evote-ccr/control-component/network"
	"github.com/evote-ccr/control-component/network/codec"
	"github.com/evote-ccr/control-component/network/codec/cbor"
	"github.com/evote-ccr/control-component/utils/unittest"
)

func TestCodec_Message(t *testing.T) {
	c := cbor.NewCodec()
	rejection := &messages.RejectionResponse{Category: "protocol", Reason: "code not in allow list"}

	code, payload, err := c.Encode(rejection)
	require.NoError(t, err)
	assert.Equal(t, codec.CodeRejection, code)

	decoded, err := c.Decode(code, payload)
	require.NoError(t, err)
	assert.Equal(t, rejection, decoded)

	t.Run("request with card ids", func(t *testing.T) {
		request := &messages.LCCShareRequest{
			CardIDs: messages.CardIDs{
				ElectionEventID:       unittest.IdentifierFixture(),
				VerificationCardSetID: unittest.IdentifierFixture(),
				VerificationCardID:    unittest.IdentifierFixture(),
			},
			EncryptedPartialChoiceReturnCodes: messages.Ciphertext{Gamma: []byte{4}, Phis: [][]byte{{9}, {3}}},
		}
		code, payload, err := c.Encode(request)
		require.NoError(t, err)
		assert.Equal(t, codec.CodeLCCShareRequest, code)

		decoded, err := c.Decode(code, payload)
		require.NoError(t, err)
		assert.Equal(t, request.CardIDs, decoded.(*messages.LCCShareRequest).CardIDs)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, _, err := c.Encode(&network.Envelope{})
		assert.Error(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := c.Decode(codec.CodeMax, payload)
		assert.True(t, codec.IsErrUnknownMsgCode(err))
		assert.True(t, codec.IsCodecError(err))
	})

	t.Run("payload of another message", func(t *testing.T) {
		_, err := c.Decode(codec.CodePartialDecryptPCCRequest, payload)
		assert.True(t, codec.IsErrMsgUnmarshal(err))
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := c.Decode(codec.CodeRejection, nil)
		assert.ErrorIs(t, err, codec.ErrInvalidEncoding)
	})
}

func TestCodec_Envelope(t *testing.T) {
	c := cbor.NewCodec()
	envelope := &network.Envelope{
		Code:          codec.CodeLCCShareRequest,
		CorrelationID: "correlation",
		Sender:        "voting-server",
		Payload:       []byte{0xa0},
		Signature:     []byte{1, 2},
	}

	data, err := c.EncodeEnvelope(envelope)
	require.NoError(t, err)
	decoded, err := c.DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, envelope, decoded)

	t.Run("garbage", func(t *testing.T) {
		_, err := c.DecodeEnvelope([]byte{0xff, 0x00})
		assert.ErrorIs(t, err, codec.ErrInvalidEncoding)
	})

	t.Run("code out of range", func(t *testing.T) {
		invalid := *envelope
		invalid.Code = codec.CodeMax
		data, err := c.EncodeEnvelope(&invalid)
		require.NoError(t, err)
		_, err = c.DecodeEnvelope(data)
		assert.ErrorIs(t, err, codec.ErrInvalidEncoding)
	})
}

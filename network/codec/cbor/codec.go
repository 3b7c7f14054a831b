package cbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/evote-ccr/control-component/network"
	"github.com/evote-ccr/control-component/network/codec"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor encoding mode: %w", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxArrayElements:  1 << 16,
		MaxMapPairs:       1 << 10,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor decoding mode: %w", err))
	}
}

// Codec represents a CBOR codec for the broker messages.
type Codec struct{}

var _ network.Codec = (*Codec)(nil)

// NewCodec creates a new CBOR codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes the given message and returns its code and the payload bytes.
func (c *Codec) Encode(v interface{}) (uint8, []byte, error) {
	code, what, err := codec.MessageCodeFromInterface(v)
	if err != nil {
		return 0, nil, fmt.Errorf("could not determine envelope code: %w", err)
	}

	data, err := encMode.Marshal(v)
	if err != nil {
		return 0, nil, fmt.Errorf("could not encode cbor payload with message code %d aka %s: %w", code, what, err)
	}
	return code, data, nil
}

// Decode decodes the payload of a message with the given code.
// Expected error returns during normal operations:
//   - codec.ErrInvalidEncoding if the payload is empty.
//   - codec.ErrUnknownMsgCode if the message code is unknown.
//   - codec.ErrMsgUnmarshal if the payload could not be decoded into the message type.
func (c *Codec) Decode(code uint8, payload []byte) (interface{}, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload for message code %d: %w", code, codec.ErrInvalidEncoding)
	}

	msgInterface, what, err := codec.InterfaceFromMessageCode(code)
	if err != nil {
		return nil, fmt.Errorf("could not determine interface from code: %w", err)
	}

	err = decMode.Unmarshal(payload, msgInterface)
	if err != nil {
		return nil, codec.NewMsgUnmarshalErr(code, what, err)
	}
	return msgInterface, nil
}

func (c *Codec) EncodeEnvelope(envelope *network.Envelope) ([]byte, error) {
	data, err := encMode.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("could not encode envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope decodes an envelope.
// Expected error returns during normal operations:
//   - codec.ErrInvalidEncoding if data is not a well-formed envelope.
func (c *Codec) DecodeEnvelope(data []byte) (*network.Envelope, error) {
	var envelope network.Envelope
	err := decMode.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, codec.ErrInvalidEncoding)
	}
	if envelope.Code <= codec.CodeMin || envelope.Code >= codec.CodeMax {
		return nil, fmt.Errorf("envelope code %d out of range: %w", envelope.Code, codec.ErrInvalidEncoding)
	}
	return &envelope, nil
}

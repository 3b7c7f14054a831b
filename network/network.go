package network

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/evote-ccr/control-component/module/signature"
)

// Envelope is the unit exchanged with the message broker. Payload is the
// encoded message identified by Code; Signature covers every other field.
type Envelope struct {
	Code          uint8  `cbor:"code"`
	CorrelationID string `cbor:"correlationId"`
	Sender        string `cbor:"sender"`
	Payload       []byte `cbor:"payload"`
	Signature     []byte `cbor:"signature"`
}

// Publisher delivers outbound envelopes to the message broker.
type Publisher interface {
	Publish(ctx context.Context, envelope *Envelope) error
}

// MessageProcessor handles an inbound envelope synchronously and returns the
// response envelope that was published for it.
type MessageProcessor interface {
	Process(ctx context.Context, envelope *Envelope) (*Envelope, error)
}

// Codec encodes protocol messages into envelope payloads and envelopes into bytes.
type Codec interface {
	// Encode returns the message code and the encoded payload of v.
	Encode(v interface{}) (uint8, []byte, error)
	// Decode decodes the payload of a message with the given code.
	Decode(code uint8, payload []byte) (interface{}, error)

	EncodeEnvelope(envelope *Envelope) ([]byte, error)
	DecodeEnvelope(data []byte) (*Envelope, error)
}

type signedFields struct {
	_             struct{} `cbor:",toarray"`
	Code          uint8
	CorrelationID string
	Sender        string
	Payload       []byte
}

var signingMode cbor.EncMode

func init() {
	var err error
	signingMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("could not create deterministic encoding mode: %w", err))
	}
}

// SigningBytes returns the deterministic encoding of the signed envelope fields.
func (e *Envelope) SigningBytes() ([]byte, error) {
	return signingMode.Marshal(signedFields{
		Code:          e.Code,
		CorrelationID: e.CorrelationID,
		Sender:        e.Sender,
		Payload:       e.Payload,
	})
}

// Sign sets the sender to the signer's alias and signs the envelope.
func (e *Envelope) Sign(signer signature.Signer) error {
	e.Sender = signer.Alias()
	data, err := e.SigningBytes()
	if err != nil {
		return fmt.Errorf("could not encode envelope for signing: %w", err)
	}
	e.Signature, err = signer.Sign(data)
	if err != nil {
		return fmt.Errorf("could not sign envelope: %w", err)
	}
	return nil
}

// Verify checks the envelope signature against the key trusted for its sender.
// Expected errors during normal operations:
//   - signature.ErrUnknownSigner if the sender is not trusted
//   - signature.ErrInvalidSignature if the signature does not verify
func (e *Envelope) Verify(verifier signature.Verifier) error {
	data, err := e.SigningBytes()
	if err != nil {
		return fmt.Errorf("could not encode envelope for verification: %w", err)
	}
	return verifier.Verify(e.Sender, data, e.Signature)
}

// Package returncodes implements the engine handling the return codes
// requests of the voting server: partial decryption of the encrypted partial
// choice return codes and creation of the long choice return code shares.
package returncodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/model/messages"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/module/exactlyonce"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/module/returncodes"
	"github.com/evote-ccr/control-component/module/signature"
	"github.com/evote-ccr/control-component/network"
	"github.com/evote-ccr/control-component/network/codec"
	"github.com/evote-ccr/control-component/storage"
)

// ErrStopped is returned by Submit once the engine was stopped.
var ErrStopped = errors.New("engine stopped")

// Engine verifies, decodes and dispatches inbound envelopes and publishes a
// signed response or rejection for each of them.
type Engine struct {
	log       zerolog.Logger
	nodeID    ccr.NodeID
	storage   *storage.All
	codec     network.Codec
	signer    signature.Signer
	verifier  signature.Verifier
	publisher network.Publisher
	commands  *exactlyonce.Processor
	protocol  *returncodes.Protocol
	service   *returncodes.LCCShareService
	metrics   module.EngineMetrics

	pool     *workerpool.WorkerPool
	inFlight *atomic.Int64
	stopped  *atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

var _ network.MessageProcessor = (*Engine)(nil)

// New creates a new return codes engine running asynchronous submissions on
// a pool of the given number of workers.
func New(
	log zerolog.Logger,
	nodeID ccr.NodeID,
	all *storage.All,
	codec network.Codec,
	signer signature.Signer,
	verifier signature.Verifier,
	publisher network.Publisher,
	commands *exactlyonce.Processor,
	protocol *returncodes.Protocol,
	service *returncodes.LCCShareService,
	engineMetrics module.EngineMetrics,
	workers int,
) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		log:       log.With().Str("engine", metrics.EngineReturnCodes).Str("node_id", nodeID.String()).Logger(),
		nodeID:    nodeID,
		storage:   all,
		codec:     codec,
		signer:    signer,
		verifier:  verifier,
		publisher: publisher,
		commands:  commands,
		protocol:  protocol,
		service:   service,
		metrics:   engineMetrics,
		pool:      workerpool.New(workers),
		inFlight:  atomic.NewInt64(0),
		stopped:   atomic.NewBool(false),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit queues the envelope for asynchronous processing.
// Expected errors during normal operations:
//   - ErrStopped if the engine was stopped
func (e *Engine) Submit(envelope *network.Envelope) error {
	if e.stopped.Load() {
		return ErrStopped
	}
	e.pool.Submit(func() {
		_, err := e.Process(e.ctx, envelope)
		if err != nil {
			e.log.Error().Err(err).Str("correlation_id", envelope.CorrelationID).Msg("could not process envelope")
		}
	})
	return nil
}

// Stop rejects further submissions and waits for the queued ones to finish.
func (e *Engine) Stop() {
	if !e.stopped.CompareAndSwap(false, true) {
		return
	}
	e.pool.StopWait()
	e.cancel()
}

// InFlight returns the number of envelopes currently being processed.
func (e *Engine) InFlight() int64 {
	return e.inFlight.Load()
}

// Process handles the envelope and publishes the response. Requests that fail
// with a terminal error are answered with a signed RejectionResponse. Transient
// and internal failures return an error and publish nothing, so that the
// broker redelivers the envelope; the command ledger answers the redelivery.
func (e *Engine) Process(ctx context.Context, envelope *network.Envelope) (*network.Envelope, error) {
	e.metrics.InFlight(metrics.EngineReturnCodes, e.inFlight.Inc())
	defer func() {
		e.metrics.InFlight(metrics.EngineReturnCodes, e.inFlight.Dec())
	}()

	name := messageName(envelope.Code)
	e.metrics.MessageReceived(metrics.EngineReturnCodes, name)
	log := e.log.With().
		Str("correlation_id", envelope.CorrelationID).
		Str("sender", envelope.Sender).
		Str("message", name).
		Logger()

	code, payload, err := e.handle(envelope)
	if err != nil {
		category := classify(err)
		e.metrics.MessageRejected(metrics.EngineReturnCodes, name, category)
		if category == metrics.CategoryInternal || category == metrics.CategoryTransient {
			return nil, fmt.Errorf("could not handle %s: %w", name, err)
		}
		log.Warn().Err(err).Str("category", category).Msg("rejecting message")
		code, payload, err = e.codec.Encode(&messages.RejectionResponse{Category: category, Reason: err.Error()})
		if err != nil {
			return nil, fmt.Errorf("could not encode rejection: %w", err)
		}
	} else {
		e.metrics.MessageHandled(metrics.EngineReturnCodes, name)
	}

	response := &network.Envelope{
		Code:          code,
		CorrelationID: envelope.CorrelationID,
		Payload:       payload,
	}
	err = response.Sign(e.signer)
	if err != nil {
		return nil, fmt.Errorf("could not sign response: %w", err)
	}
	err = e.publisher.Publish(ctx, response)
	if err != nil {
		return nil, fmt.Errorf("could not publish response: %w", err)
	}
	e.metrics.MessageSent(metrics.EngineReturnCodes, messageName(code))
	log.Debug().Str("response", messageName(code)).Msg("response published")
	return response, nil
}

// handle returns the code and payload of the response to the envelope.
func (e *Engine) handle(envelope *network.Envelope) (uint8, []byte, error) {
	err := envelope.Verify(e.verifier)
	if err != nil {
		return 0, nil, fmt.Errorf("could not authenticate sender %q: %w", envelope.Sender, err)
	}

	msg, err := e.codec.Decode(envelope.Code, envelope.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("could not decode payload: %w", err)
	}

	var response []byte
	switch m := msg.(type) {
	case *messages.PartialDecryptPCCRequest:
		response, err = e.onPartialDecryptPCC(envelope, m)
		if err != nil {
			return 0, nil, err
		}
		return codec.CodePartialDecryptPCCResponse, response, nil
	case *messages.LCCShareRequest:
		response, err = e.onLCCShare(envelope, m)
		if err != nil {
			return 0, nil, err
		}
		return codec.CodeLCCShareResponse, response, nil
	default:
		return 0, nil, ccr.NewValidationErrorf("unexpected message type (%T)", msg)
	}
}

func messageName(code uint8) string {
	switch code {
	case codec.CodePartialDecryptPCCRequest:
		return metrics.MessagePartialDecrypt
	case codec.CodePartialDecryptPCCResponse:
		return metrics.MessagePartialDecryptResponse
	case codec.CodeLCCShareRequest:
		return metrics.MessageLCCShare
	case codec.CodeLCCShareResponse:
		return metrics.MessageLCCShareResponse
	case codec.CodeRejection:
		return metrics.MessageRejection
	default:
		return metrics.MessageUnknown
	}
}

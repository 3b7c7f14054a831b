// Package returncodes implements the per-vote cryptographic steps of a
// control-component node: ballot verification, partial decryption of the
// encrypted partial choice return codes, their combined decryption and the
// creation of the long choice return code share.
//
// Steps with durable effects run within a caller-supplied unit of work
// (transaction.Tx). The verification card state flag of the step is checked
// and set in the same unit of work as the step's other effects.
package returncodes

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/storage"
)

// Protocol runs the stateful steps of the return codes protocol for one node.
type Protocol struct {
	log           zerolog.Logger
	states        storage.VerificationCardStates
	contributions storage.Contributions
	allowLists    storage.AllowLists
	metrics       module.ReturnCodesMetrics
}

func NewProtocol(
	log zerolog.Logger,
	states storage.VerificationCardStates,
	contributions storage.Contributions,
	allowLists storage.AllowLists,
	metrics module.ReturnCodesMetrics,
) *Protocol {
	return &Protocol{
		log:           log.With().Str("component", "return_codes").Logger(),
		states:        states,
		contributions: contributions,
		allowLists:    allowLists,
		metrics:       metrics,
	}
}

// Category classifies step errors for rejections and metrics.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case ccr.IsValidationError(err):
		return metrics.CategoryValidation
	case IsProtocolViolationError(err):
		return metrics.CategoryProtocol
	case storage.IsInvalidStateTransitionError(err), errors.Is(err, storage.ErrVersionMismatch):
		return metrics.CategoryState
	default:
		return metrics.CategoryInternal
	}
}

// observe records the duration or the rejection of a step.
func (p *Protocol) observe(step string, start time.Time, err error) {
	if err != nil {
		p.metrics.StepRejected(step, Category(err))
		return
	}
	p.metrics.StepDuration(step, time.Since(start))
}

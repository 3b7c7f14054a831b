// Package exactlyonce deduplicates message deliveries: every command is
// identified by its ccr.CommandKey, its task runs at most once to completion,
// and retries are answered with the recorded response.
package exactlyonce

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module"
	"github.com/evote-ccr/control-component/storage"
	"github.com/evote-ccr/control-component/storage/badger/transaction"
	"github.com/evote-ccr/control-component/utils/logging"
)

// Task is the unit of work of a command. Its durable effects are written
// through tx and are committed together with the returned response.
type Task func(tx *transaction.Tx) ([]byte, error)

// LookupResult is the outcome of looking up a command in the ledger.
type LookupResult int

const (
	// Miss means there is no response for the key yet.
	Miss LookupResult = iota
	// Hit means the command was completed with an identical request.
	Hit
	// Conflict means the key was recorded with a different request.
	Conflict
)

func (r LookupResult) String() string {
	switch r {
	case Hit:
		return "hit"
	case Conflict:
		return "conflict"
	default:
		return "miss"
	}
}

// Lookup is the tagged result of a ledger lookup.
type Lookup struct {
	Result LookupResult
	// Response is set for Hit.
	Response []byte
	// Recorded is set for a Miss whose request is already in the ledger, i.e.
	// a previous attempt failed or is still running.
	Recorded bool
}

// Processor is the exactly-once command processor.
type Processor struct {
	log      zerolog.Logger
	db       *badger.DB
	commands storage.Commands
	metrics  module.ExactlyOnceMetrics
}

func NewProcessor(log zerolog.Logger, db *badger.DB, commands storage.Commands, metrics module.ExactlyOnceMetrics) *Processor {
	return &Processor{
		log:      log.With().Str("component", "exactly_once_processor").Logger(),
		db:       db,
		commands: commands,
		metrics:  metrics,
	}
}

// Lookup matches the key exactly on all four fields.
// No errors are expected during normal operation.
func (p *Processor) Lookup(key ccr.CommandKey, request []byte) (Lookup, error) {
	command, err := p.commands.ByKey(key)
	if errors.Is(err, storage.ErrNotFound) {
		return Lookup{Result: Miss}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("could not look up command: %w", err)
	}
	if !bytes.Equal(command.RequestPayload, request) {
		return Lookup{Result: Conflict}, nil
	}
	if !command.IsCompleted() {
		return Lookup{Result: Miss, Recorded: true}, nil
	}
	return Lookup{Result: Hit, Response: command.ResponsePayload}, nil
}

// Process returns the response of the command identified by key:
//   - a completed command with an identical request is answered from the ledger
//     without running task
//   - a command recorded with a different request fails with a ConflictError
//   - otherwise the request is recorded in its own transaction, task runs and
//     its response is recorded in the same transaction as the task's effects
//
// A failed task leaves no response behind, so that a retry runs the task again.
// Expected errors during normal operations:
//   - ConflictError if the key is recorded with a different request
//   - any error returned by task
func (p *Processor) Process(key ccr.CommandKey, request []byte, task Task) ([]byte, error) {
	log := logging.Command(p.log, key)

	lookup, err := p.Lookup(key, request)
	if err != nil {
		return nil, err
	}

	if lookup.Result == Miss && !lookup.Recorded {
		err = p.commands.InsertRequest(key, request)
		if errors.Is(err, storage.ErrAlreadyExists) {
			// a concurrent first delivery won the race for the key
			lookup, err = p.Lookup(key, request)
		}
		if err != nil {
			return nil, fmt.Errorf("could not record request: %w", err)
		}
	}

	switch lookup.Result {
	case Hit:
		p.metrics.CommandHit(key.Context)
		log.Debug().Msg("answering retried command from the ledger")
		return lookup.Response, nil
	case Conflict:
		p.metrics.CommandConflict(key.Context)
		log.Error().Msg("retried command carries a different request payload")
		return nil, NewConflictError(key)
	}

	var response []byte
	err = transaction.Update(p.db, func(tx *transaction.Tx) error {
		var err error
		response, err = task(tx)
		if err != nil {
			return err
		}
		return p.commands.CompleteTx(key, request, response)(tx)
	})
	if err != nil {
		// the task may have lost against a concurrent execution of the same command
		completed, lookupErr := p.Lookup(key, request)
		if lookupErr == nil && completed.Result == Hit {
			p.metrics.CommandHit(key.Context)
			log.Debug().Err(err).Msg("command was completed concurrently")
			return completed.Response, nil
		}
		p.metrics.CommandFailed(key.Context)
		return nil, err
	}

	p.metrics.CommandMiss(key.Context)
	log.Debug().Msg("command executed")
	return response, nil
}

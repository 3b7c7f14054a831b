package module

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"
)

// StorageMetrics tracks low-level database events.
type StorageMetrics interface {
	// RetryOnConflict is called whenever a badger transaction is retried after a conflict.
	RetryOnConflict()
	// SkipDuplicate is called whenever an insert of an already existing, identical entry is skipped.
	SkipDuplicate()
}

// CacheMetrics tracks the read caches of the storage layer.
type CacheMetrics interface {
	CacheHit(resource string)
	CacheMiss(resource string)
}

// ExactlyOnceMetrics tracks the outcomes of the command ledger lookups.
type ExactlyOnceMetrics interface {
	// CommandHit is called when a retry is answered from the ledger.
	CommandHit(context string)
	// CommandMiss is called when a task is executed for a command.
	CommandMiss(context string)
	// CommandConflict is called when a retry carries a different request payload.
	CommandConflict(context string)
	// CommandFailed is called when a task fails and no response is recorded.
	CommandFailed(context string)
}

// ReturnCodesMetrics tracks the cryptographic protocol steps.
type ReturnCodesMetrics interface {
	// StepDuration records the wall-clock duration of a successful protocol step.
	StepDuration(step string, duration time.Duration)
	// StepRejected is called when a step fails, labelled by the rejection category.
	StepRejected(step string, category string)
}

// LockMetrics tracks the named lock registry.
type LockMetrics interface {
	LockAcquired(name string, duration time.Duration)
	LockRetry(name string)
	LockTimeout(name string)
}

// EngineMetrics tracks the messages flowing through an engine.
type EngineMetrics interface {
	MessageReceived(engine string, message string)
	MessageHandled(engine string, message string)
	MessageRejected(engine string, message string, category string)
	MessageSent(engine string, message string)
	InFlight(engine string, count int64)
}

// HTTPMetrics tracks the requests served by the HTTP ingress.
type HTTPMetrics interface {
	httpmetrics.Recorder
	// AddTotalRequests counts a request routed to the named handler.
	AddTotalRequests(ctx context.Context, method string, routeName string)
}

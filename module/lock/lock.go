package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLockTimeout is returned when a named lock could not be acquired within the
// requested wait. It is transient: the caller may retry.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Guard releases a held lock. Release must be called exactly once.
type Guard interface {
	Release()
}

// DistributedLock grants exclusive access to a named resource across all
// instances sharing the lock.
type DistributedLock interface {
	// Acquire blocks until the named lock is held, the timeout elapses or ctx
	// is cancelled.
	// Expected errors during normal operations:
	//   - ErrLockTimeout if the lock was not acquired within the timeout
	//   - the context error if ctx was cancelled
	Acquire(ctx context.Context, name string, timeout time.Duration) (Guard, error)
}

// Registry is an in-process DistributedLock, for deployments in which all
// instances of a node share one process.
type Registry struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

var _ DistributedLock = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]chan struct{}),
	}
}

func (r *Registry) slot(name string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.locks[name]
	if !ok {
		s = make(chan struct{}, 1)
		r.locks[name] = s
	}
	return s
}

func (r *Registry) Acquire(ctx context.Context, name string, timeout time.Duration) (Guard, error) {
	s := r.slot(name)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return &guard{slot: s}, nil
	case <-timer.C:
		return nil, fmt.Errorf("could not acquire lock %s within %s: %w", name, timeout, ErrLockTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type guard struct {
	once sync.Once
	slot chan struct{}
}

func (g *guard) Release() {
	g.once.Do(func() {
		<-g.slot
	})
}

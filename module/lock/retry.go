package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/evote-ccr/control-component/module"
)

// RetryConfig configures AcquireWithRetry.
type RetryConfig struct {
	// Timeout is the wait of a single acquisition attempt.
	Timeout time.Duration
	// Retries is the number of attempts after the first one.
	Retries uint64
	// InitialBackoff is the delay before the first retry; it doubles with every retry.
	InitialBackoff time.Duration
	// JitterPercent randomizes each delay by up to the given percentage.
	JitterPercent uint64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Timeout:        5 * time.Second,
		Retries:        5,
		InitialBackoff: time.Second,
		JitterPercent:  25,
	}
}

// AcquireWithRetry acquires the named lock, retrying on ErrLockTimeout with
// exponential backoff and jitter. After the retries are exhausted the last
// ErrLockTimeout is returned.
func AcquireWithRetry(ctx context.Context, lock DistributedLock, name string, config RetryConfig, metrics module.LockMetrics) (Guard, error) {
	backoff := retry.NewExponential(config.InitialBackoff)
	backoff = retry.WithJitterPercent(config.JitterPercent, backoff)
	backoff = retry.WithMaxRetries(config.Retries, backoff)

	start := time.Now()
	var acquired Guard
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		g, err := lock.Acquire(ctx, name, config.Timeout)
		if errors.Is(err, ErrLockTimeout) {
			metrics.LockRetry(name)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		acquired = g
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLockTimeout) {
			metrics.LockTimeout(name)
		}
		return nil, fmt.Errorf("could not acquire lock %s: %w", name, err)
	}

	metrics.LockAcquired(name, time.Since(start))
	return acquired, nil
}

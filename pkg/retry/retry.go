// Package retry wraps fallible operations in bounded exponential backoff. It is the
// single point deciding retry vs. terminal: callers above it only see the final
// success or failure.
package retry

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"time"
)

type Config struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond * 500,
		MaxDelay:   time.Second * 10,
		Multiplier: 2,
	}
}

// RetryableError is implemented by errors that carry their retryability with them,
// decided at the error's origin. Errors that do not implement it are terminal.
type RetryableError interface {
	error
	Retryable() bool
}

func IsRetryable(err error) bool {
	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	return false
}

// Do invokes op until it succeeds, fails terminally, exhausts cfg.MaxRetries or ctx is
// cancelled. The returned attempt count is the number of retries performed: 0 means op
// succeeded (or failed terminally) on the first invocation. Backoff sleeps observe ctx,
// so a cancelled caller never sleeps through its own deadline.
func Do[T any](ctx context.Context, cfg Config, logger *zap.Logger, op func() (T, error)) (T, int, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.BaseDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.Multiplier = cfg.Multiplier
	bo.MaxElapsedTime = 0 // Bounded by MaxRetries, not elapsed time

	var invocations int
	wrapped := func() (T, error) {
		invocations++

		result, err := op()
		if err != nil && !IsRetryable(err) {
			return result, backoff.Permanent(err)
		}

		return result, err
	}

	notify := func(err error, delay time.Duration) {
		logger.Warn(
			"Operation failed with retryable error, backing off",
			zap.Error(err),
			zap.Int("invocations", invocations),
			zap.Duration("backoff", delay),
		)
	}

	result, err := backoff.RetryNotifyWithData[T](
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx),
		notify,
	)

	attempts := invocations - 1
	if err != nil && attempts > 0 {
		err = fmt.Errorf("operation failed after %d attempts: %w", invocations, err)
	}

	return result, attempts, err
}

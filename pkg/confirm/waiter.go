// Package confirm polls the read-side query API until a submitted event becomes
// visible or the caller's deadline expires. A timeout is an expected outcome, not an
// error: it yields false.
package confirm

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/pkg/query"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"go.uber.org/zap"
	"time"
)

// QueryService is the read-side lookup the waiter polls. Satisfied by query.Service.
type QueryService interface {
	Fetch(ctx context.Context, topicID string, filters []query.Filter) (trace.RetrievalResult, error)
}

type Waiter struct {
	logger          *zap.Logger
	queries         QueryService
	initialInterval time.Duration
	maxInterval     time.Duration
}

const (
	DefaultInitialPollInterval = 500 * time.Millisecond
	DefaultMaxPollInterval     = 2 * time.Second
)

func NewWaiter(logger *zap.Logger, queries QueryService, initialInterval, maxInterval time.Duration) *Waiter {
	if initialInterval <= 0 {
		initialInterval = DefaultInitialPollInterval
	}

	if maxInterval < initialInterval {
		maxInterval = DefaultMaxPollInterval
	}

	return &Waiter{
		logger:          logger,
		queries:         queries,
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
	}
}

// Wait polls until an event for the product is visible on the topic, or until the
// deadline elapses. Single poll failures are logged and swallowed: the mirror being
// momentarily unreachable is not a confirmation failure. The only error Wait returns
// is the caller's own cancellation.
func (w *Waiter) Wait(ctx context.Context, topicID, productID string, deadline time.Duration) (bool, error) {
	deadlineAt := time.Now().Add(deadline)
	filters := query.ByProduct(productID)

	// Polls start frequent and back off towards maxInterval: the common case is the
	// log becoming consistent within the first second or two.
	interval := w.initialInterval

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		result, err := w.queries.Fetch(ctx, topicID, filters)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}

			w.logger.Warn(
				"Confirmation poll failed, will retry until deadline",
				zap.Error(err),
				zap.String("topic_id", topicID),
				zap.String("product_id", productID),
			)
		} else if result.Found {
			w.logger.Debug(
				"Event confirmed on consensus topic",
				zap.String("topic_id", topicID),
				zap.String("product_id", productID),
				zap.Int("events", len(result.Events)),
			)
			return true, nil
		}

		remaining := time.Until(deadlineAt)
		if remaining <= 0 {
			return false, nil
		}

		sleep := interval
		if sleep > remaining {
			sleep = remaining
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(sleep):
		}

		if !time.Now().Before(deadlineAt) {
			return false, nil
		}

		interval = interval * 3 / 2
		if interval > w.maxInterval {
			interval = w.maxInterval
		}
	}
}

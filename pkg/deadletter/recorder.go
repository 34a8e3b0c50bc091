package deadletter

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/pkg/retry"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"go.uber.org/zap"
	"time"
)

// Recorder writes failed submissions to the underlying store. Recording never fails
// from the caller's perspective: a broken side-store must not crash the publisher.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

func NewRecorder(logger *zap.Logger, store Store) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

func (r *Recorder) Record(ctx context.Context, event trace.EventRecord, cause error) {
	letter := DeadLetter{
		Event:      event,
		Cause:      cause.Error(),
		Retryable:  retry.IsRetryable(cause),
		RecordedAt: time.Now().UTC(),
	}

	if err := r.store.Record(ctx, letter); err != nil {
		r.logger.Error(
			"Failed to record dead letter",
			zap.Error(err),
			zap.String("product_id", event.ProductID),
			zap.String("cause", letter.Cause),
		)
		return
	}

	r.logger.Warn(
		"Submission routed to dead-letter store",
		zap.String("product_id", event.ProductID),
		zap.String("event_id", event.EventID()),
		zap.String("cause", letter.Cause),
		zap.Bool("retryable", letter.Retryable),
	)
}

// Package publisher composes the codec, retry executor and dead-letter recorder into
// the submit path of the pipeline: one call, one structured receipt.
package publisher

import (
	"context"
	"errors"
	"github.com/Zolldyk/chaintrace-sub003/pkg/codec"
	"github.com/Zolldyk/chaintrace-sub003/pkg/deadletter"
	"github.com/Zolldyk/chaintrace-sub003/pkg/ledger"
	"github.com/Zolldyk/chaintrace-sub003/pkg/retry"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"go.uber.org/zap"
	"time"
)

type Publisher struct {
	logger         *zap.Logger
	codec          *codec.Codec
	submitter      ledger.Submitter
	recorder       *deadletter.Recorder
	retryConfig    retry.Config
	topicID        string
	messageTimeout time.Duration
}

func New(
	logger *zap.Logger,
	eventCodec *codec.Codec,
	submitter ledger.Submitter,
	recorder *deadletter.Recorder,
	retryConfig retry.Config,
	topicID string,
	messageTimeout time.Duration,
) *Publisher {
	return &Publisher{
		logger:         logger,
		codec:          eventCodec,
		submitter:      submitter,
		recorder:       recorder,
		retryConfig:    retryConfig,
		topicID:        topicID,
		messageTimeout: messageTimeout,
	}
}

// Publish encodes and submits one event to the consensus topic. Every failure path
// returns a receipt with a populated Error: nothing is silently discarded. Encoding
// failures are terminal (the payload itself is the problem) and go straight to the
// dead-letter store without a retry.
func (p *Publisher) Publish(ctx context.Context, event trace.EventRecord) trace.SubmissionReceipt {
	start := time.Now()

	encoded, err := p.codec.Encode(event)
	if err != nil {
		p.logger.Error(
			"Failed to encode event, routing to dead-letter store",
			zap.Error(err),
			zap.String("product_id", event.ProductID),
		)
		p.recorder.Record(ctx, event, err)
		return failureReceipt(err, 0, start)
	}

	result, attempts, err := retry.Do[ledger.SubmitResult](ctx, p.retryConfig, p.logger, func() (ledger.SubmitResult, error) {
		submitCtx, cancelFunc := context.WithTimeout(ctx, p.messageTimeout)
		defer cancelFunc()

		return p.submitter.Submit(submitCtx, p.topicID, encoded.Bytes)
	})
	if err != nil {
		p.logger.Error(
			"Submission failed, routing to dead-letter store",
			zap.Error(err),
			zap.String("product_id", event.ProductID),
			zap.Int("attempts", attempts),
		)
		p.recorder.Record(ctx, event, err)
		return failureReceipt(err, attempts, start)
	}

	p.logger.Info(
		"Event submitted to consensus topic",
		zap.String("product_id", event.ProductID),
		zap.String("event_id", event.EventID()),
		zap.Uint64("sequence_number", result.SequenceNumber),
		zap.String("transaction_id", result.TransactionID),
		zap.Int("attempts", attempts),
	)

	return trace.SubmissionReceipt{
		Success:        true,
		SequenceNumber: &result.SequenceNumber,
		TransactionID:  result.TransactionID,
		Attempts:       attempts,
		DurationMs:     time.Since(start).Milliseconds(),
	}
}

// PublishAsync submits in a supervised background task. The returned channel always
// delivers exactly one receipt, so the outcome of a backgrounded publish can never be
// dropped on the floor.
func (p *Publisher) PublishAsync(ctx context.Context, event trace.EventRecord) <-chan trace.SubmissionReceipt {
	receiptCh := make(chan trace.SubmissionReceipt, 1)

	go func() {
		receiptCh <- p.Publish(ctx, event)
		close(receiptCh)
	}()

	return receiptCh
}

func failureReceipt(err error, attempts int, start time.Time) trace.SubmissionReceipt {
	failure := trace.SubmitFailure{
		Code:      failureCode(err),
		Message:   err.Error(),
		Retryable: retry.IsRetryable(err),
	}

	return trace.SubmissionReceipt{
		Success:    false,
		Error:      &failure,
		Attempts:   attempts,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

func failureCode(err error) string {
	var submitErr *ledger.SubmitError
	if errors.As(err, &submitErr) {
		return string(submitErr.Kind)
	}

	switch {
	case errors.Is(err, codec.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, codec.ErrInvalidEvent):
		return "invalid_event"
	default:
		return "internal"
	}
}

package publisher

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/pkg/codec"
	"github.com/Zolldyk/chaintrace-sub003/pkg/deadletter"
	"github.com/Zolldyk/chaintrace-sub003/pkg/ledger"
	"github.com/Zolldyk/chaintrace-sub003/pkg/retry"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	failures int // leading retryable failures before success
	terminal error
	result   ledger.SubmitResult
}

func (s *fakeSubmitter) Submit(ctx context.Context, topicID string, payload []byte) (ledger.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.terminal != nil {
		return ledger.SubmitResult{}, s.terminal
	}

	if s.calls <= s.failures {
		return ledger.SubmitResult{}, ledger.NewSubmitError(ledger.ErrorKindUnavailable, context.DeadlineExceeded)
	}

	return s.result, nil
}

type memoryStore struct {
	mu      sync.Mutex
	letters []deadletter.DeadLetter
}

func (s *memoryStore) Record(ctx context.Context, letter deadletter.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters = append(s.letters, letter)
	return nil
}

func (s *memoryStore) List(ctx context.Context, limit int) ([]deadletter.DeadLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.letters) {
		limit = len(s.letters)
	}

	return append([]deadletter.DeadLetter(nil), s.letters[:limit]...), nil
}

func (s *memoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.letters), nil
}

func (s *memoryStore) Close(ctx context.Context) error {
	return nil
}

func sampleEvent() trace.EventRecord {
	return trace.EventRecord{
		ProductID: "PRD-1001",
		EventType: trace.EventTypeCreated,
		Actor: trace.Actor{
			ID:   "0.0.12345",
			Role: trace.RoleProducer,
		},
		Signature:     "a1b2c3d4e5f60718a1b2c3d4e5f60718",
		Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		SchemaVersion: "1.0",
	}
}

func newTestPublisher(submitter ledger.Submitter, store deadletter.Store) *Publisher {
	logger := zap.NewNop()

	return New(
		logger,
		codec.New(codec.DefaultMaxPayloadSize),
		submitter,
		deadletter.NewRecorder(logger, store),
		retry.Config{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   time.Millisecond * 5,
			Multiplier: 2,
		},
		"0.0.4001",
		time.Second,
	)
}

func TestPublishSuccess(t *testing.T) {
	submitter := &fakeSubmitter{
		result: ledger.SubmitResult{SequenceNumber: 7, TransactionID: "0.0.12345@1714557600.000000001"},
	}
	store := &memoryStore{}

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), sampleEvent())

	require.True(t, receipt.Success)
	require.NotNil(t, receipt.SequenceNumber)
	require.EqualValues(t, 7, *receipt.SequenceNumber)
	require.Equal(t, "0.0.12345@1714557600.000000001", receipt.TransactionID)
	require.Equal(t, 0, receipt.Attempts)
	require.Nil(t, receipt.Error)
	require.Empty(t, store.letters)
}

func TestPublishRetriesThenSucceeds(t *testing.T) {
	submitter := &fakeSubmitter{
		failures: 2,
		result:   ledger.SubmitResult{SequenceNumber: 3},
	}
	store := &memoryStore{}

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), sampleEvent())

	require.True(t, receipt.Success)
	require.Equal(t, 2, receipt.Attempts)
	require.Equal(t, 3, submitter.calls)
	require.Empty(t, store.letters)
}

func TestPublishTerminalFailure(t *testing.T) {
	submitter := &fakeSubmitter{
		terminal: ledger.NewSubmitError(ledger.ErrorKindUnauthorized, context.DeadlineExceeded),
	}
	store := &memoryStore{}

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), sampleEvent())

	require.False(t, receipt.Success)
	require.Equal(t, 1, submitter.calls)
	require.NotNil(t, receipt.Error)
	require.Equal(t, "unauthorized", receipt.Error.Code)
	require.False(t, receipt.Error.Retryable)

	require.Len(t, store.letters, 1)
	require.Equal(t, "PRD-1001", store.letters[0].Event.ProductID)
	require.False(t, store.letters[0].Retryable)
}

func TestPublishExhaustsRetries(t *testing.T) {
	submitter := &fakeSubmitter{
		failures: 100,
	}
	store := &memoryStore{}

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), sampleEvent())

	require.False(t, receipt.Success)
	// MaxRetries is 2, so the submitter runs 3 times before giving up.
	require.Equal(t, 3, submitter.calls)
	require.Equal(t, 2, receipt.Attempts)
	require.NotNil(t, receipt.Error)
	require.Equal(t, "unavailable", receipt.Error.Code)
	require.True(t, receipt.Error.Retryable)

	require.Len(t, store.letters, 1)
	require.True(t, store.letters[0].Retryable)
}

func TestPublishOversizedEventSkipsSubmit(t *testing.T) {
	submitter := &fakeSubmitter{}
	store := &memoryStore{}

	event := sampleEvent()
	event.Payload = map[string]any{
		"notes": strings.Repeat("x", codec.DefaultMaxPayloadSize),
	}

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), event)

	require.False(t, receipt.Success)
	require.Equal(t, 0, submitter.calls)
	require.Equal(t, 0, receipt.Attempts)
	require.NotNil(t, receipt.Error)
	require.Equal(t, "payload_too_large", receipt.Error.Code)
	require.False(t, receipt.Error.Retryable)

	require.Len(t, store.letters, 1)
}

func TestPublishInvalidEventSkipsSubmit(t *testing.T) {
	submitter := &fakeSubmitter{}
	store := &memoryStore{}

	event := sampleEvent()
	event.ProductID = ""

	receipt := newTestPublisher(submitter, store).Publish(context.Background(), event)

	require.False(t, receipt.Success)
	require.Equal(t, 0, submitter.calls)
	require.Equal(t, "invalid_event", receipt.Error.Code)
}

func TestPublishAsyncDeliversOneReceipt(t *testing.T) {
	submitter := &fakeSubmitter{
		result: ledger.SubmitResult{SequenceNumber: 1},
	}
	store := &memoryStore{}

	receiptCh := newTestPublisher(submitter, store).PublishAsync(context.Background(), sampleEvent())

	receipt, ok := <-receiptCh
	require.True(t, ok)
	require.True(t, receipt.Success)

	_, ok = <-receiptCh
	require.False(t, ok, "channel must be closed after the single receipt")
}

// Package deadletter durably records submissions that exhausted their retries or hit a
// terminal error, so they can be inspected and recovered manually.
package deadletter

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/pkg/errors"
	"time"
)

type DeadLetter struct {
	Event      trace.EventRecord `json:"event" bson:"event"`
	Cause      string            `json:"cause" bson:"cause"`
	Retryable  bool              `json:"retryable" bson:"retryable"`
	RecordedAt time.Time         `json:"recorded_at" bson:"recorded_at"`
}

// Store is an append-only side-store for failed submissions. Implementations must be
// safe under concurrent writers.
type Store interface {
	Record(ctx context.Context, letter DeadLetter) error
	List(ctx context.Context, limit int) ([]DeadLetter, error)
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

var (
	ErrStoreClosed  = errors.New("dead-letter store is closed")
	ErrInvalidLimit = errors.New("limit must be greater than 0")
)

// Package ledger is the submit-side interface to the externally-operated consensus log.
// The log itself assigns sequence numbers authoritatively; this package only delivers
// payloads to it.
package ledger

import "context"

type SubmitResult struct {
	SequenceNumber uint64 `json:"sequence_number"`
	TransactionID  string `json:"transaction_id"`
}

// Submitter is the injected capability that appends one payload to a topic. Submission
// is at-least-once: callers must tolerate duplicates downstream.
type Submitter interface {
	Submit(ctx context.Context, topicID string, payload []byte) (SubmitResult, error)
}

package trace

// SubmissionReceipt is returned for every publish call, successful or not. Failure paths
// populate Error instead of raising: the caller always gets a structured outcome.
type SubmissionReceipt struct {
	Success        bool           `json:"success"`
	SequenceNumber *uint64        `json:"sequence_number,omitempty"`
	TransactionID  string         `json:"transaction_id,omitempty"`
	Error          *SubmitFailure `json:"error,omitempty"`
	Attempts       int            `json:"attempts"`
	DurationMs     int64          `json:"duration_ms"`
}

// SubmitFailure describes why a submission failed and whether retrying could help.
// Retryable is decided once at the error's origin, never inferred from message text.
type SubmitFailure struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

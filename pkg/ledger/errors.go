package ledger

import "fmt"

type ErrorKind string

const (
	// Retryable: the log may accept the same payload later.
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindUnavailable ErrorKind = "unavailable"
	ErrorKindThrottled   ErrorKind = "throttled"

	// Terminal: retrying the same payload cannot succeed.
	ErrorKindUnauthorized   ErrorKind = "unauthorized"
	ErrorKindInvalidMessage ErrorKind = "invalid_message"
	ErrorKindInternal       ErrorKind = "internal"
)

// SubmitError tags a transport failure with its kind. Retryability is decided here, at
// the origin, so downstream code never has to match on message text.
type SubmitError struct {
	Kind ErrorKind
	Err  error
}

var _ error = (*SubmitError)(nil)

func NewSubmitError(kind ErrorKind, err error) *SubmitError {
	return &SubmitError{
		Kind: kind,
		Err:  err,
	}
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit failed (%s): %v", e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func (e *SubmitError) Retryable() bool {
	switch e.Kind {
	case ErrorKindTimeout, ErrorKindUnavailable, ErrorKindThrottled:
		return true
	default:
		return false
	}
}

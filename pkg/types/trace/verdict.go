package trace

import "time"

// IntegrityVerdict is a structured tampering report for one product's event chain.
// Integrity failures are a value result, not an error: callers decide whether to flag,
// quarantine or reject the data.
type IntegrityVerdict struct {
	Valid             bool           `json:"valid"`
	SequenceValid     bool           `json:"sequence_valid"`
	SignaturesValid   bool           `json:"signatures_valid"`
	TamperingDetected bool           `json:"tampering_detected"`
	Details           VerdictDetails `json:"details"`
}

type VerdictDetails struct {
	ExpectedSequence []string  `json:"expected_sequence"`
	ActualSequence   []string  `json:"actual_sequence"`
	MissingLinks     []string  `json:"missing_links,omitempty"`
	ValidatedAt      time.Time `json:"validated_at"`
}

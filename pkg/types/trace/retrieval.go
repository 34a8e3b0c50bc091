package trace

// RetrievalResult is the outcome of one read-side query. It is recomputed on every
// query and never cached by the pipeline.
type RetrievalResult struct {
	Found    bool              `json:"found"`
	Events   []EventRecord     `json:"events"`
	Metadata RetrievalMetadata `json:"metadata"`
}

type RetrievalMetadata struct {
	QueryTimeMs  int64    `json:"query_time_ms"`
	WithinBudget bool     `json:"within_budget"`
	MessageCount int      `json:"message_count"`
	Warnings     []string `json:"warnings,omitempty"`
}

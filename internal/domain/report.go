package domain

import "time"

// FailureKind classifies why a single URL produced no Document.
type FailureKind string

const (
	// FailureFetch covers transport errors and non-2xx responses.
	FailureFetch FailureKind = "FETCH"
	// FailureEmptyContent means the page fetched but yielded no usable text.
	FailureEmptyContent FailureKind = "EMPTY_CONTENT"
)

// ExtractionFailure records one URL that could not be turned into a Document.
// It is collected into the batch report, never treated as run-fatal.
type ExtractionFailure struct {
	Kind  FailureKind `json:"kind"`
	URL   string      `json:"url"`
	Cause string      `json:"cause,omitempty"`
}

func (f *ExtractionFailure) Error() string {
	if f.Cause == "" {
		return string(f.Kind) + ": " + f.URL
	}
	return string(f.Kind) + ": " + f.URL + ": " + f.Cause
}

// BatchReport summarizes one ingestion run. A run with failures is still a
// completed run; Attempted == Succeeded + len(Failed).
type BatchReport struct {
	Attempted int                 `json:"attempted"`
	Succeeded int                 `json:"succeeded"`
	Failed    []ExtractionFailure `json:"failed"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
}

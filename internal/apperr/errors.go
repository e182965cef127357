package apperr

import "errors"

// Sentinel outcomes shared across the query controller, the ingestion
// pipeline and the refresh coordinator. The route layer maps them to status
// codes in the global error handler.
var (
	// ErrNotFound covers both a missing and a malformed document id; the two
	// are deliberately collapsed into one negative outcome.
	ErrNotFound = errors.New("document not found")

	// ErrStoreUnavailable means the document store could not be reached. The
	// cache is never used as a fallback source of truth in this case.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrCacheUnavailable is logged, never surfaced to callers; reads degrade
	// to the store directly.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrAlreadyRunning rejects a trigger that arrived while an ingestion run
	// was in flight.
	ErrAlreadyRunning = errors.New("ingestion already running")
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// InvalidCatalogError is fatal at startup: the source catalog contained
// duplicate URLs or an unknown product type.
type InvalidCatalogError struct {
	Message string
}

func (e *InvalidCatalogError) Error() string {
	return "invalid catalog: " + e.Message
}

func NewInvalidCatalog(msg string) *InvalidCatalogError {
	return &InvalidCatalogError{Message: msg}
}

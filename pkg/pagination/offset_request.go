package pagination

import "fmt"

// OffsetRequest represents an offset-based pagination request
type OffsetRequest struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// Validate fills defaults for omitted parameters and rejects out-of-range
// values; range violations are a caller input error.
func (r *OffsetRequest) Validate() error {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = PageDefaultLimit
	}
	if r.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d", r.Page)
	}
	if r.Limit < 1 || r.Limit > PageMaxLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", PageMaxLimit, r.Limit)
	}
	return nil
}

// Offset converts the 1-based page number into a row offset.
func (r *OffsetRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

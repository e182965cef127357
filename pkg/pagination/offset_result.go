package pagination

// OffsetResult represents one page of an offset-paginated result set.
// Generic type T allows reuse across different entity types
type OffsetResult[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"has_more"`
}

// NewOffsetResult creates a new offset-based result
func NewOffsetResult[T any](items []T, total int64, page int, limit int) *OffsetResult[T] {
	offset := (page - 1) * limit
	hasMore := int64(offset+limit) < total

	return &OffsetResult[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: hasMore,
	}
}

package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vendordocs/docscout/internal/domain"
)

// SearchRequest is a relevance-ranked full-text query over the corpus.
// Query may be empty, in which case results are ordered by fetched_at
// descending. ProductType nil means no filter.
type SearchRequest struct {
	Query       string
	ProductType *domain.ProductType
	Offset      int
	Limit       int
}

// SearchResult holds one page of hits plus the total match count, so callers
// can paginate without a second round trip.
type SearchResult struct {
	Items []domain.DocumentSearchResult
	Total int64
}

// DocumentStore is the durable, queryable collection of documents. All
// implementations guarantee single-document atomic upsert keyed by source
// URL; unreachable backends surface apperr.ErrStoreUnavailable.
type DocumentStore interface {
	// Upsert creates the document or replaces its mutable fields in place,
	// preserving the id assigned on first insert.
	Upsert(ctx context.Context, doc domain.Document) (uuid.UUID, error)
	// FindByID returns apperr.ErrNotFound for a missing id.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	// Search runs relevance-ranked full-text search over title and body text,
	// ties broken by fetched_at descending.
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	// CountByType returns per-product-type document counts.
	CountByType(ctx context.Context) (map[domain.ProductType]int64, error)
	// LastFetchedAt returns the most recent fetch timestamp in the corpus,
	// or nil when the corpus is empty.
	LastFetchedAt(ctx context.Context) (*time.Time, error)
}

type Type string

const (
	ES    Type = "es"
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StoreError string

const (
	ErrUnsupportedStore StoreError = "unsupported store type: %s"
)

func (e StoreError) Error() string {
	return string(e)
}

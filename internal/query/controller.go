package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/cache"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/storage"
	"github.com/vendordocs/docscout/pkg/pagination"
)

const defaultCacheTTL = 10 * time.Minute

// SearchParams is a normalized search request. Page and Limit are assumed
// range-validated at the route boundary.
type SearchParams struct {
	ProductType *domain.ProductType
	Query       string
	Page        int
	Limit       int
}

// Page is one slice of relevance-ranked search results.
type Page = pagination.OffsetResult[domain.DocumentSearchResult]

// Controller implements the cache-aside read path in front of the document
// store. The cache is advisory: when it is unreachable every call degrades to
// a store-direct read; when the store is unreachable the error is surfaced
// and the cache is never consulted as a fallback.
type Controller struct {
	store storage.DocumentStore
	cache cache.Cache
	ttl   time.Duration
}

type Option func(*Controller)

func WithTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.ttl = ttl
	}
}

func NewController(store storage.DocumentStore, cch cache.Cache, opts ...Option) *Controller {
	c := &Controller{
		store: store,
		cache: cch,
		ttl:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Search(ctx context.Context, params SearchParams) (*Page, error) {
	normalized := normalizeQuery(params.Query)
	key := searchKey(params.ProductType, normalized, params.Page, params.Limit)

	if data, ok := c.cacheGet(ctx, key); ok {
		var page Page
		if err := json.Unmarshal(data, &page); err == nil {
			return &page, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}

	res, err := c.store.Search(ctx, storage.SearchRequest{
		Query:       normalized,
		ProductType: params.ProductType,
		Offset:      (params.Page - 1) * params.Limit,
		Limit:       params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	items := res.Items
	if items == nil {
		items = []domain.DocumentSearchResult{}
	}
	page := pagination.NewOffsetResult(items, res.Total, params.Page, params.Limit)

	c.cacheSet(ctx, key, page)
	return page, nil
}

// GetByID treats a malformed id the same as a missing one: NotFound.
func (c *Controller) GetByID(ctx context.Context, rawID string) (*domain.Document, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	key := documentKey(id)
	if data, ok := c.cacheGet(ctx, key); ok {
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return &doc, nil
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}

	doc, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, key, doc)
	return doc, nil
}

// Stats is always computed fresh from the store: it is cheap relative to
// search, and staleness here is more visible to operators than to end users.
func (c *Controller) Stats(ctx context.Context) (*domain.Statistics, error) {
	counts, err := c.store.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats failed: %w", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	last, err := c.store.LastFetchedAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats failed: %w", err)
	}

	return &domain.Statistics{
		TotalDocuments:      total,
		CountPerProductType: counts,
		LastIngestedAt:      last,
	}, nil
}

// InvalidateAll flushes the whole query namespace. Called after a completed
// ingestion batch, once all upserts are durably applied: counts, statistics
// and cross-document rankings can all shift from any single change, so
// per-key invalidation would be unsound.
func (c *Controller) InvalidateAll(ctx context.Context) error {
	if err := c.cache.DeleteByPrefix(ctx, Namespace); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrCacheUnavailable, err)
	}
	slog.Info("query cache invalidated", "namespace", Namespace)
	return nil
}

// cacheGet treats any cache failure as a miss, logging the degradation but
// never failing the request.
func (c *Controller) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache read failed, degrading to store", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (c *Controller) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("failed to marshal cache value", "key", key, "error", err)
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

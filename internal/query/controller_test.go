package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/storage"
	"github.com/vendordocs/docscout/internal/storage/in_mem"
)

// fakeCache is an in-process cache.Cache with a switch to simulate outage.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	down bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, false, errors.New("connection refused")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errors.New("connection refused")
	}
	f.data[key] = value
	return nil
}

func (f *fakeCache) DeleteByPrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errors.New("connection refused")
	}
	for k := range f.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(f.data, k)
		}
	}
	return nil
}

func (f *fakeCache) Available(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.down
}

// countingStore records how often the underlying store is consulted, so tests
// can observe cache hits as the absence of a store call.
type countingStore struct {
	storage.DocumentStore
	mu          sync.Mutex
	searchCalls int
	findCalls   int
}

func (c *countingStore) Search(ctx context.Context, req storage.SearchRequest) (*storage.SearchResult, error) {
	c.mu.Lock()
	c.searchCalls++
	c.mu.Unlock()
	return c.DocumentStore.Search(ctx, req)
}

func (c *countingStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	c.mu.Lock()
	c.findCalls++
	c.mu.Unlock()
	return c.DocumentStore.FindByID(ctx, id)
}

// downStore simulates an unreachable document store.
type downStore struct{}

func (downStore) Upsert(context.Context, domain.Document) (uuid.UUID, error) {
	return uuid.Nil, apperr.ErrStoreUnavailable
}
func (downStore) FindByID(context.Context, uuid.UUID) (*domain.Document, error) {
	return nil, apperr.ErrStoreUnavailable
}
func (downStore) Search(context.Context, storage.SearchRequest) (*storage.SearchResult, error) {
	return nil, apperr.ErrStoreUnavailable
}
func (downStore) CountByType(context.Context) (map[domain.ProductType]int64, error) {
	return nil, apperr.ErrStoreUnavailable
}
func (downStore) LastFetchedAt(context.Context) (*time.Time, error) {
	return nil, apperr.ErrStoreUnavailable
}

func seedDoc(t *testing.T, store storage.DocumentStore, url, title, body string, pt domain.ProductType) domain.Document {
	t.Helper()
	doc := domain.Document{
		ProductType: pt,
		SourceURL:   url,
		Title:       title,
		BodyText:    body,
		FetchedAt:   time.Now().UTC(),
	}
	id, err := store.Upsert(context.Background(), doc)
	require.NoError(t, err)
	doc.ID = id
	return doc
}

func TestSearch_SecondCallIsACacheHit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	seedDoc(t, store, "https://vendor.example/gpu/", "A200 GPU", "tensor performance", domain.ProductGPU)

	ctrl := NewController(store, newFakeCache())

	first, err := ctrl.Search(ctx, SearchParams{Query: "tensor", Page: 1, Limit: 10})
	require.NoError(t, err)

	second, err := ctrl.Search(ctx, SearchParams{Query: "tensor", Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.searchCalls, "second call must be served from cache")
}

func TestSearch_InvalidationReflectsNewContent(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	seedDoc(t, store, "https://vendor.example/gpu/", "A200 GPU", "tensor performance", domain.ProductGPU)

	ctrl := NewController(store, newFakeCache())

	before, err := ctrl.Search(ctx, SearchParams{Query: "tensor", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, before.Items, 1)

	// Re-ingestion replaces the page content, then flushes the namespace.
	seedDoc(t, store, "https://vendor.example/gpu/", "A300 GPU", "tensor performance doubled", domain.ProductGPU)
	require.NoError(t, ctrl.InvalidateAll(ctx))

	after, err := ctrl.Search(ctx, SearchParams{Query: "tensor", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, "A300 GPU", after.Items[0].Title, "stale page must not survive invalidation")
	assert.Equal(t, 2, store.searchCalls)
}

func TestSearch_DegradesWhenCacheDown(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	seedDoc(t, store, "https://vendor.example/sw/", "SDK Guide", "install the toolkit", domain.ProductSoftware)

	cch := newFakeCache()
	cch.down = true
	ctrl := NewController(store, cch)

	for i := 0; i < 2; i++ {
		page, err := ctrl.Search(ctx, SearchParams{Query: "toolkit", Page: 1, Limit: 10})
		require.NoError(t, err, "cache outage must never fail the request")
		require.Len(t, page.Items, 1)
	}
	assert.Equal(t, 2, store.searchCalls, "every call falls through to the store")
}

func TestSearch_StoreUnavailableSurfaced(t *testing.T) {
	ctrl := NewController(downStore{}, newFakeCache())

	_, err := ctrl.Search(context.Background(), SearchParams{Query: "anything", Page: 1, Limit: 10})

	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestSearch_PaginationBoundary(t *testing.T) {
	ctx := context.Background()
	store := in_mem.NewInMemStore()
	for i := 0; i < 25; i++ {
		seedDoc(t, store, fmt.Sprintf("https://vendor.example/cables/%d", i), "cable guide", "fiber cable specs", domain.ProductCabling)
	}

	ctrl := NewController(store, newFakeCache())

	first, err := ctrl.Search(ctx, SearchParams{Query: "cable", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(25), first.Total)
	assert.True(t, first.HasMore)

	last, err := ctrl.Search(ctx, SearchParams{Query: "cable", Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.Equal(t, int64(25), last.Total)
	assert.False(t, last.HasMore)
}

func TestSearch_EquivalentQueriesShareTheCacheSlot(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	seedDoc(t, store, "https://vendor.example/nic/", "ConnectX", "adapter firmware", domain.ProductNetworkCard)

	ctrl := NewController(store, newFakeCache())

	_, err := ctrl.Search(ctx, SearchParams{Query: "Adapter   Firmware", Page: 1, Limit: 10})
	require.NoError(t, err)
	_, err = ctrl.Search(ctx, SearchParams{Query: "adapter firmware", Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, store.searchCalls)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	doc := seedDoc(t, store, "https://vendor.example/gpu/", "A200", "specs", domain.ProductGPU)

	ctrl := NewController(store, newFakeCache())

	t.Run("found and cached", func(t *testing.T) {
		got, err := ctrl.GetByID(ctx, doc.ID.String())
		require.NoError(t, err)
		assert.Equal(t, doc.SourceURL, got.SourceURL)

		_, err = ctrl.GetByID(ctx, doc.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 1, store.findCalls)
	})

	t.Run("missing id is NotFound", func(t *testing.T) {
		_, err := ctrl.GetByID(ctx, "00000000-0000-0000-0000-00000000beef")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("malformed id is NotFound, not a format error", func(t *testing.T) {
		_, err := ctrl.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestGetByID_DegradesWhenCacheDown(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: in_mem.NewInMemStore()}
	doc := seedDoc(t, store, "https://vendor.example/gpu/", "A200", "specs", domain.ProductGPU)

	cch := newFakeCache()
	cch.down = true
	ctrl := NewController(store, cch)

	for i := 0; i < 2; i++ {
		got, err := ctrl.GetByID(ctx, doc.ID.String())
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
	}
	assert.Equal(t, 2, store.findCalls)
}

func TestStats_AlwaysFresh(t *testing.T) {
	ctx := context.Background()
	store := in_mem.NewInMemStore()
	seedDoc(t, store, "https://vendor.example/gpu/1", "g1", "x", domain.ProductGPU)
	seedDoc(t, store, "https://vendor.example/gpu/2", "g2", "x", domain.ProductGPU)
	seedDoc(t, store, "https://vendor.example/sw/1", "s1", "x", domain.ProductSoftware)

	ctrl := NewController(store, newFakeCache())

	stats, err := ctrl.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalDocuments)
	assert.Equal(t, int64(2), stats.CountPerProductType[domain.ProductGPU])
	require.NotNil(t, stats.LastIngestedAt)

	// A new document is visible immediately: no cached statistics.
	seedDoc(t, store, "https://vendor.example/cable/1", "c1", "x", domain.ProductCabling)
	stats, err = ctrl.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalDocuments)
}

package in_mem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/storage"
)

// Relevance weights mirror the primary backends: a title hit counts ten times
// a body hit.
const (
	titleWeight = 10.0
	bodyWeight  = 1.0
)

// InMemStore keeps the corpus in a map. Used by tests and as a dependency-free
// development backend; search is naive term counting, not a real text index.
type InMemStore struct {
	mu    sync.RWMutex
	docs  map[uuid.UUID]domain.Document
	byURL map[string]uuid.UUID
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		docs:  make(map[uuid.UUID]domain.Document),
		byURL: make(map[string]uuid.UUID),
	}
}

func (s *InMemStore) Upsert(_ context.Context, doc domain.Document) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byURL[doc.SourceURL]; ok {
		doc.ID = existing
	} else if doc.ID == uuid.Nil {
		doc.ID = domain.DocumentID(doc.SourceURL)
	}

	s.docs[doc.ID] = doc
	s.byURL[doc.SourceURL] = doc.ID
	return doc.ID, nil
}

func (s *InMemStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &doc, nil
}

func (s *InMemStore) Search(_ context.Context, req storage.SearchRequest) (*storage.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(req.Query))

	var hits []domain.DocumentSearchResult
	for _, doc := range s.docs {
		if req.ProductType != nil && doc.ProductType != *req.ProductType {
			continue
		}
		rank := score(doc, terms)
		if len(terms) > 0 && rank == 0 {
			continue
		}
		hits = append(hits, domain.DocumentSearchResult{Document: doc, Rank: rank})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank > hits[j].Rank
		}
		if !hits[i].FetchedAt.Equal(hits[j].FetchedAt) {
			return hits[i].FetchedAt.After(hits[j].FetchedAt)
		}
		return hits[i].ID.String() < hits[j].ID.String()
	})

	total := int64(len(hits))
	if req.Offset >= len(hits) {
		hits = nil
	} else {
		end := req.Offset + req.Limit
		if end > len(hits) {
			end = len(hits)
		}
		hits = hits[req.Offset:end]
	}

	return &storage.SearchResult{Items: hits, Total: total}, nil
}

func (s *InMemStore) CountByType(_ context.Context) (map[domain.ProductType]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.ProductType]int64)
	for _, doc := range s.docs {
		counts[doc.ProductType]++
	}
	return counts, nil
}

func (s *InMemStore) LastFetchedAt(_ context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *time.Time
	for _, doc := range s.docs {
		if latest == nil || doc.FetchedAt.After(*latest) {
			t := doc.FetchedAt
			latest = &t
		}
	}
	return latest, nil
}

func (s *InMemStore) Healthy(_ context.Context) bool {
	return true
}

func score(doc domain.Document, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	title := strings.ToLower(doc.Title)
	body := strings.ToLower(doc.BodyText)

	var rank float64
	for _, term := range terms {
		rank += titleWeight * float64(strings.Count(title, term))
		rank += bodyWeight * float64(strings.Count(body, term))
	}
	return rank
}

package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/google/uuid"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/storage"
)

// Store implements storage.DocumentStore on Elasticsearch. Documents are
// indexed under their deterministic id, so re-indexing the same source URL
// replaces the document in place.
type Store struct {
	client    *elasticsearch.TypedClient
	indexName string
	config    ClientConfig
}

// docRecord is the document shape inside the index.
type docRecord struct {
	ID          string    `json:"id"`
	ProductType string    `json:"product_type"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title"`
	Headings    []string  `json:"headings,omitempty"`
	BodyText    string    `json:"body_text"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Relevance follows the original index weighting: title matches count ten
// times a body match.
var searchFields = []string{"title^10", "body_text"}

func NewStore(ctx context.Context, config ClientConfig) (*Store, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := &Store{
		client:    client,
		indexName: config.IndexName,
		config:    config,
	}

	if err := s.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return s, nil
}

func (s *Store) Upsert(ctx context.Context, doc domain.Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = domain.DocumentID(doc.SourceURL)
	}
	record := toRecord(doc)

	res, err := s.client.Index(s.indexName).Id(record.ID).Document(record).Do(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed to index document: %v", apperr.ErrStoreUnavailable, err)
	}

	slog.Debug("document indexed", "id", record.ID, "url", record.SourceURL, "result", res.Result)
	return doc.ID, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	res, err := s.client.Get(s.indexName, id.String()).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get document: %v", apperr.ErrStoreUnavailable, err)
	}
	if !res.Found {
		return nil, apperr.ErrNotFound
	}

	var record docRecord
	if err := json.Unmarshal(res.Source_, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	doc, err := fromRecord(record)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) Search(ctx context.Context, req storage.SearchRequest) (*storage.SearchResult, error) {
	query := s.buildQuery(req)

	searchReq := s.client.Search().
		Index(s.indexName).
		Query(query).
		From(req.Offset).
		Size(req.Limit).
		TrackTotalHits(true).
		TrackScores(true)

	sortDesc := sortorder.Desc
	sorts := make([]types.SortCombinations, 0, 2)
	if req.Query != "" {
		sorts = append(sorts, &types.SortOptions{
			SortOptions: map[string]types.FieldSort{"_score": {Order: &sortDesc}},
		})
	}
	sorts = append(sorts, &types.SortOptions{
		SortOptions: map[string]types.FieldSort{"fetched_at": {Order: &sortDesc}},
	})
	searchReq = searchReq.Sort(sorts...)

	res, err := searchReq.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute search: %v", apperr.ErrStoreUnavailable, err)
	}

	items := make([]domain.DocumentSearchResult, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var record docRecord
		if err := json.Unmarshal(hit.Source_, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hit: %w", err)
		}
		doc, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		var rank float64
		if hit.Score_ != nil {
			rank = float64(*hit.Score_)
		}
		items = append(items, domain.DocumentSearchResult{Document: *doc, Rank: rank})
	}

	var total int64
	if res.Hits.Total != nil {
		total = res.Hits.Total.Value
	}

	slog.Debug("es search completed",
		"query", req.Query,
		"total", total,
		"returned", len(items),
		"offset", req.Offset)

	return &storage.SearchResult{Items: items, Total: total}, nil
}

func (s *Store) CountByType(ctx context.Context) (map[domain.ProductType]int64, error) {
	counts := make(map[domain.ProductType]int64, len(domain.ProductTypes))

	for _, pt := range domain.ProductTypes {
		res, err := s.client.Count().
			Index(s.indexName).
			Query(&types.Query{
				Term: map[string]types.TermQuery{"product_type": {Value: pt.String()}},
			}).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to count documents: %v", apperr.ErrStoreUnavailable, err)
		}
		if res.Count > 0 {
			counts[pt] = res.Count
		}
	}

	return counts, nil
}

func (s *Store) LastFetchedAt(ctx context.Context) (*time.Time, error) {
	sortDesc := sortorder.Desc
	res, err := s.client.Search().
		Index(s.indexName).
		Query(&types.Query{MatchAll: &types.MatchAllQuery{}}).
		Size(1).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{"fetched_at": {Order: &sortDesc}},
		}).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch latest document: %v", apperr.ErrStoreUnavailable, err)
	}

	if len(res.Hits.Hits) == 0 {
		return nil, nil
	}

	var record docRecord
	if err := json.Unmarshal(res.Hits.Hits[0].Source_, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hit: %w", err)
	}
	return &record.FetchedAt, nil
}

func (s *Store) buildQuery(req storage.SearchRequest) *types.Query {
	var match types.Query
	if req.Query != "" {
		match = types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  req.Query,
				Fields: searchFields,
			},
		}
	} else {
		match = types.Query{MatchAll: &types.MatchAllQuery{}}
	}

	if req.ProductType == nil {
		return &match
	}

	return &types.Query{
		Bool: &types.BoolQuery{
			Must: []types.Query{match},
			Filter: []types.Query{
				{Term: map[string]types.TermQuery{"product_type": {Value: req.ProductType.String()}}},
			},
		},
	}
}

// Healthy reports whether the cluster answers and the index exists.
func (s *Store) Healthy(ctx context.Context) bool {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	return err == nil && exists
}

func (s *Store) EnsureIndex(ctx context.Context) error {
	existsRes, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to check if index exists: %v", apperr.ErrStoreUnavailable, err)
	}

	if existsRes {
		slog.Info("Index already exists", "index", s.indexName)
		return nil
	}

	mappings := types.TypeMapping{
		Properties: map[string]types.Property{
			"id":           types.NewKeywordProperty(),
			"product_type": types.NewKeywordProperty(),
			"source_url":   types.NewKeywordProperty(),
			"title":        types.NewTextProperty(),
			"headings":     types.NewKeywordProperty(),
			"body_text":    types.NewTextProperty(),
			"fetched_at":   types.NewDateProperty(),
		},
	}

	createRes, err := s.client.Indices.Create(s.indexName).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created", "index", s.indexName)
	return nil
}

func toRecord(doc domain.Document) docRecord {
	return docRecord{
		ID:          doc.ID.String(),
		ProductType: doc.ProductType.String(),
		SourceURL:   doc.SourceURL,
		Title:       doc.Title,
		Headings:    doc.Headings,
		BodyText:    doc.BodyText,
		FetchedAt:   doc.FetchedAt,
	}
}

func fromRecord(record docRecord) (*domain.Document, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document id: %w", err)
	}
	pt, err := domain.ParseProductType(record.ProductType)
	if err != nil {
		return nil, err
	}
	return &domain.Document{
		ID:          id,
		ProductType: pt,
		SourceURL:   record.SourceURL,
		Title:       record.Title,
		Headings:    record.Headings,
		BodyText:    record.BodyText,
		FetchedAt:   record.FetchedAt,
	}, nil
}

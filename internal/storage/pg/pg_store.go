package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/storage"
)

// Store implements storage.DocumentStore on PostgreSQL full-text search.
// The search_vector column weights the title (A) over the body text (B),
// matching the relevance policy of the other backends.
type Store struct {
	db *pgxpool.Pool
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    id            uuid PRIMARY KEY,
    product_type  text NOT NULL,
    source_url    text NOT NULL UNIQUE,
    title         text NOT NULL DEFAULT '',
    headings      text[] NOT NULL DEFAULT '{}',
    body_text     text NOT NULL,
    fetched_at    timestamptz NOT NULL,
    search_vector tsvector GENERATED ALWAYS AS (
        setweight(to_tsvector('english', coalesce(title, '')), 'A') ||
        setweight(to_tsvector('english', body_text), 'B')
    ) STORED
);
CREATE INDEX IF NOT EXISTS documents_search_idx ON documents USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS documents_product_type_idx ON documents (product_type);
CREATE INDEX IF NOT EXISTS documents_fetched_at_idx ON documents (fetched_at DESC);
`

func NewStore(ctx context.Context, pool *ConnectionPool) (*Store, error) {
	s := &Store{db: pool.conn}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: failed to ensure schema: %v", apperr.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, doc domain.Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = domain.DocumentID(doc.SourceURL)
	}

	// ON CONFLICT keeps the original id: only mutable fields are replaced.
	cmd := `
        INSERT INTO documents (id, product_type, source_url, title, headings, body_text, fetched_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (source_url) DO UPDATE SET
            product_type = EXCLUDED.product_type,
            title        = EXCLUDED.title,
            headings     = EXCLUDED.headings,
            body_text    = EXCLUDED.body_text,
            fetched_at   = EXCLUDED.fetched_at
        RETURNING id;
    `
	var id uuid.UUID
	err := s.db.QueryRow(
		ctx,
		cmd,
		doc.ID,
		doc.ProductType.String(),
		doc.SourceURL,
		doc.Title,
		doc.Headings,
		doc.BodyText,
		doc.FetchedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed to upsert document: %v", apperr.ErrStoreUnavailable, err)
	}

	return id, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `
        SELECT id, product_type, source_url, title, headings, body_text, fetched_at
        FROM documents
        WHERE id = $1
    `
	doc, err := scanDocument(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to query document: %v", apperr.ErrStoreUnavailable, err)
	}
	return doc, nil
}

func (s *Store) Search(ctx context.Context, req storage.SearchRequest) (*storage.SearchResult, error) {
	if req.Query == "" {
		return s.listRecent(ctx, req)
	}

	filter := "search_vector @@ plainto_tsquery('english', $1)"
	args := []interface{}{req.Query}
	if req.ProductType != nil {
		filter += " AND product_type = $2"
		args = append(args, req.ProductType.String())
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM documents WHERE " + filter
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: failed to count matches: %v", apperr.ErrStoreUnavailable, err)
	}

	searchSQL := fmt.Sprintf(`
        SELECT id, product_type, source_url, title, headings, body_text, fetched_at,
               ts_rank(search_vector, plainto_tsquery('english', $1)) AS rank
        FROM documents
        WHERE %s
        ORDER BY rank DESC, fetched_at DESC
        LIMIT $%d OFFSET $%d
    `, filter, len(args)+1, len(args)+2)
	args = append(args, req.Limit, req.Offset)

	rows, err := s.db.Query(ctx, searchSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute search: %v", apperr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var items []domain.DocumentSearchResult
	for rows.Next() {
		var doc domain.Document
		var rank float64
		if err := rows.Scan(
			&doc.ID,
			&doc.ProductType,
			&doc.SourceURL,
			&doc.Title,
			&doc.Headings,
			&doc.BodyText,
			&doc.FetchedAt,
			&rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		items = append(items, domain.DocumentSearchResult{Document: doc, Rank: rank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rows: %v", apperr.ErrStoreUnavailable, err)
	}

	slog.Debug("pg search completed", "query", req.Query, "total", total, "returned", len(items))

	return &storage.SearchResult{Items: items, Total: total}, nil
}

// listRecent handles the no-query case: browse by freshness.
func (s *Store) listRecent(ctx context.Context, req storage.SearchRequest) (*storage.SearchResult, error) {
	filter := "TRUE"
	args := []interface{}{}
	if req.ProductType != nil {
		filter = "product_type = $1"
		args = append(args, req.ProductType.String())
	}

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM documents WHERE "+filter, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: failed to count documents: %v", apperr.ErrStoreUnavailable, err)
	}

	listSQL := fmt.Sprintf(`
        SELECT id, product_type, source_url, title, headings, body_text, fetched_at
        FROM documents
        WHERE %s
        ORDER BY fetched_at DESC
        LIMIT $%d OFFSET $%d
    `, filter, len(args)+1, len(args)+2)
	args = append(args, req.Limit, req.Offset)

	rows, err := s.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list documents: %v", apperr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var items []domain.DocumentSearchResult
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.ProductType,
			&doc.SourceURL,
			&doc.Title,
			&doc.Headings,
			&doc.BodyText,
			&doc.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		items = append(items, domain.DocumentSearchResult{Document: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rows: %v", apperr.ErrStoreUnavailable, err)
	}

	return &storage.SearchResult{Items: items, Total: total}, nil
}

func (s *Store) CountByType(ctx context.Context) (map[domain.ProductType]int64, error) {
	rows, err := s.db.Query(ctx, "SELECT product_type, COUNT(*) FROM documents GROUP BY product_type")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count by product type: %v", apperr.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	counts := make(map[domain.ProductType]int64)
	for rows.Next() {
		var raw string
		var count int64
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		pt, err := domain.ParseProductType(raw)
		if err != nil {
			return nil, err
		}
		counts[pt] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rows: %v", apperr.ErrStoreUnavailable, err)
	}
	return counts, nil
}

func (s *Store) LastFetchedAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	err := s.db.QueryRow(ctx, "SELECT MAX(fetched_at) FROM documents").Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch max timestamp: %v", apperr.ErrStoreUnavailable, err)
	}
	return last, nil
}

// Healthy reports whether the pool can reach the database.
func (s *Store) Healthy(ctx context.Context) bool {
	return s.db.Ping(ctx) == nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(
		&doc.ID,
		&doc.ProductType,
		&doc.SourceURL,
		&doc.Title,
		&doc.Headings,
		&doc.BodyText,
		&doc.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

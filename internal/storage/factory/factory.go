package factory

import (
	"context"
	"fmt"

	"github.com/vendordocs/docscout/internal/storage"
	"github.com/vendordocs/docscout/internal/storage/es"
	"github.com/vendordocs/docscout/internal/storage/in_mem"
	"github.com/vendordocs/docscout/internal/storage/pg"
)

// NewDocumentStore creates a storage.DocumentStore for the configured backend.
func NewDocumentStore(ctx context.Context, cfg StorageConfig) (storage.DocumentStore, error) {
	switch cfg.Type {
	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("missing Elasticsearch configuration")
		}
		return es.NewStore(ctx, *cfg.Es)

	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("missing PostgreSQL configuration")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		return pg.NewStore(ctx, pool)

	case storage.InMem:
		return in_mem.NewInMemStore(), nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStore), cfg.Type)
	}
}

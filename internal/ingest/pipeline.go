package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vendordocs/docscout/internal/catalog"
	"github.com/vendordocs/docscout/internal/domain"
	"github.com/vendordocs/docscout/internal/extract"
	"github.com/vendordocs/docscout/internal/storage"
)

const defaultWorkers = 8

// Invalidator flushes derived read results after the corpus changes.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Pipeline runs one ingestion batch: every catalog entry is fetched and
// extracted by a bounded worker pool, successful documents are upserted into
// the store, and the query cache is flushed once at the end. Extraction
// failures are collected into the report; a store write failure aborts the
// whole run.
type Pipeline struct {
	catalog     *catalog.Catalog
	extractor   extract.Extractor
	store       storage.DocumentStore
	invalidator Invalidator
	config      *PipelineConfig
}

type PipelineConfig struct {
	Name    string
	Workers int
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.config.Workers = n
		}
	}
}

func NewPipeline(
	cat *catalog.Catalog,
	extractor extract.Extractor,
	store storage.DocumentStore,
	invalidator Invalidator,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		catalog:     cat,
		extractor:   extractor,
		store:       store,
		invalidator: invalidator,
		config: &PipelineConfig{
			Name:    "docs-pipeline",
			Workers: defaultWorkers,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

type extractResult struct {
	entry catalog.Entry
	doc   *domain.Document
	err   error
}

func (p *Pipeline) Run(ctx context.Context) (*domain.BatchReport, error) {
	start := time.Now().UTC()
	entries := p.catalog.Entries()

	workers := p.config.Workers
	if workers > len(entries) {
		workers = len(entries)
	}

	slog.Info("starting ingestion run",
		"pipeline", p.config.Name,
		"sources", len(entries),
		"workers", workers,
	)

	report := &domain.BatchReport{
		Attempted: len(entries),
		StartedAt: start,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan catalog.Entry)
	results := make(chan extractResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				doc, err := p.extractor.Extract(ctx, entry.URL, entry.ProductType)
				select {
				case results <- extractResult{entry: entry, doc: doc, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, entry := range entries {
			select {
			case jobs <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, toFailure(res.entry.URL, res.err))
			slog.Warn("source extraction failed",
				"pipeline", p.config.Name,
				"url", res.entry.URL,
				"error", res.err,
			)
			continue
		}

		if _, err := p.store.Upsert(ctx, *res.doc); err != nil {
			cancel()
			for range results {
				// drain so workers can exit
			}
			return nil, fmt.Errorf("ingestion aborted, store write failed: %w", err)
		}
		report.Succeeded++
		slog.Debug("document upserted",
			"pipeline", p.config.Name,
			"url", res.entry.URL,
			"product_type", res.entry.ProductType,
		)
	}

	// The corpus changed, so every cached query result is suspect. A cache
	// that cannot be flushed degrades to stale-until-TTL, never a failed run.
	if err := p.invalidator.InvalidateAll(ctx); err != nil {
		slog.Warn("cache invalidation failed after ingestion",
			"pipeline", p.config.Name,
			"error", err,
		)
	}

	report.Duration = time.Since(start)
	slog.Info("ingestion run completed",
		"pipeline", p.config.Name,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"duration", report.Duration,
	)

	return report, nil
}

func toFailure(url string, err error) domain.ExtractionFailure {
	var exErr *domain.ExtractionFailure
	if errors.As(err, &exErr) {
		return *exErr
	}
	return domain.ExtractionFailure{
		Kind:  domain.FailureFetch,
		URL:   url,
		Cause: err.Error(),
	}
}

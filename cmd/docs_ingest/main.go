// docs_ingest runs one ingestion batch from the command line and exits.
// Useful for seeding a fresh store without starting the API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vendordocs/docscout/internal/catalog"
	"github.com/vendordocs/docscout/internal/extract"
	"github.com/vendordocs/docscout/internal/ingest"
	"github.com/vendordocs/docscout/internal/storage/factory"
)

// noopInvalidator stands in for the query cache: a one-shot import has no
// running API process whose cache could go stale.
type noopInvalidator struct{}

func (noopInvalidator) InvalidateAll(context.Context) error { return nil }

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	store, err := factory.NewDocumentStore(ctx, cfg.StorageConfig)
	if err != nil {
		slog.Error("failed to create document store", "error", err, "type", cfg.StorageConfig.Type)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(cat, extract.NewPageExtractor(), store, noopInvalidator{})

	report, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("ingestion run failed", "error", err)
		os.Exit(1)
	}

	slog.Info("ingestion finished",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"duration", report.Duration,
	)
	for _, f := range report.Failed {
		slog.Warn("source failed", "kind", f.Kind, "url", f.URL, "cause", f.Cause)
	}
}

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/cache/redis"
	"github.com/vendordocs/docscout/internal/catalog"
	"github.com/vendordocs/docscout/internal/extract"
	"github.com/vendordocs/docscout/internal/ingest"
	"github.com/vendordocs/docscout/internal/query"
	"github.com/vendordocs/docscout/internal/refresh"
	"github.com/vendordocs/docscout/internal/router"
	"github.com/vendordocs/docscout/internal/server"
	"github.com/vendordocs/docscout/internal/storage/factory"
	pkgserver "github.com/vendordocs/docscout/pkg/server"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		var catErr *apperr.InvalidCatalogError
		if errors.As(err, &catErr) {
			slog.Error("Catalog rejected", "path", cfg.CatalogPath, "error", catErr)
		} else {
			slog.Error("Failed to load catalog", "path", cfg.CatalogPath, "error", err)
		}
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "path", cfg.CatalogPath, "sources", cat.Len())

	s := server.New(sCfg).
		SetupMiddlewares().
		SetupErrorHandler()

	store, err := factory.NewDocumentStore(s.Context(), cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create document store", "error", err, "type", cfg.StorageConfig.Type)
		os.Exit(1)
	}

	cch := redis.NewCache(s.Context(), cfg.RedisConfig)

	queries := query.NewController(store, cch, query.WithTTL(cfg.CacheTTL))

	pipeline := ingest.NewPipeline(
		cat,
		extract.NewPageExtractor(),
		store,
		queries,
		ingest.WithWorkers(cfg.Workers),
	)

	coordinator := refresh.NewCoordinator(pipeline, refresh.WithSchedule(cfg.RefreshHour, cfg.RefreshMinute))
	coordinator.Start(s.Context())

	s.SetupHealthChecks("/health",
		server.Dependency{Name: "store", Checker: storeChecker(store)},
		server.Dependency{Name: "cache", Checker: pkgserver.HealthCheckerFunc(cch.Available)},
	)

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "DocScout API is running")
	})

	docsRouter := router.NewDocsRouter(s.Echo, queries, coordinator)
	docsRouter.Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
		coordinator.Stop()
		if err := cch.Close(); err != nil {
			slog.Warn("Failed to close cache client", "error", err)
		}
	}()

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}

// storeChecker probes backends that expose a health method; backends without
// one are assumed healthy.
func storeChecker(store any) pkgserver.HealthChecker {
	if hc, ok := store.(pkgserver.HealthChecker); ok {
		return hc
	}
	return pkgserver.NewOkHealthChecker()
}

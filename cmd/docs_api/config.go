package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/vendordocs/docscout/internal/cache/redis"
	"github.com/vendordocs/docscout/internal/storage/factory"
	"github.com/vendordocs/docscout/pkg/config/env"
)

const (
	defaultCatalogPath = "configs/catalog.yml"
	defaultCacheTTL    = 10 * time.Minute
	defaultRefreshHour = 2
	defaultWorkers     = 8
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type DocsAPIConfig struct {
	StorageConfig factory.StorageConfig
	RedisConfig   redis.Config

	CatalogPath   string
	CacheTTL      time.Duration
	RefreshHour   int
	RefreshMinute int
	Workers       int
}

func (as *AppConfig) Load() (*DocsAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/docs_api/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	redisCfg, err := redis.LoadEnv()
	if err != nil {
		slog.Error("Failed to load Redis configuration from environment", "error", err)
		return nil, err
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = defaultCatalogPath
	}

	cacheTTL := defaultCacheTTL
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		cacheTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL value %q: %w", raw, err)
		}
	}

	refreshHour, err := intEnv("REFRESH_HOUR", defaultRefreshHour, 0, 23)
	if err != nil {
		return nil, err
	}
	refreshMinute, err := intEnv("REFRESH_MINUTE", 0, 0, 59)
	if err != nil {
		return nil, err
	}
	workers, err := intEnv("INGEST_WORKERS", defaultWorkers, 1, 64)
	if err != nil {
		return nil, err
	}

	return &DocsAPIConfig{
		StorageConfig: *storageCfg,
		RedisConfig:   *redisCfg,
		CatalogPath:   catalogPath,
		CacheTTL:      cacheTTL,
		RefreshHour:   refreshHour,
		RefreshMinute: refreshMinute,
		Workers:       workers,
	}, nil
}

func intEnv(name string, fallback, min, max int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, raw, err)
	}
	if val < min || val > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, val)
	}
	return val, nil
}

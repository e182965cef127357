package main

import (
	"log/slog"
	"os"

	"github.com/vendordocs/docscout/internal/storage/factory"
	"github.com/vendordocs/docscout/pkg/config/env"
)

const defaultCatalogPath = "configs/catalog.yml"

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type DocsIngestConfig struct {
	StorageConfig factory.StorageConfig
	CatalogPath   string
}

func (as *AppConfig) Load() (*DocsIngestConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/docs_ingest/.env")
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = defaultCatalogPath
	}

	return &DocsIngestConfig{
		StorageConfig: *storageCfg,
		CatalogPath:   catalogPath,
	}, nil
}

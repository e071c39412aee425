// Package backend assembles the persistence adapter from configuration:
// the current SQLite backend plus the ordered chain of legacy sources.
package backend

import (
	"fmt"
	"log/slog"

	"feetrack/internal/config"
	"feetrack/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result carries the assembled adapter and its cleanup function.
type Result struct {
	Adapter *storage.Adapter
	Cleanup CleanupFunc
}

// Config holds the on-disk locations of the current backend and of every
// retired format the migration path may still find data under.
type Config struct {
	DBPath         string
	LegacyDBPath   string
	LegacyKVPath   string
	LegacyKVPathV1 string
}

// FromAppConfig derives backend locations from the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	return Config{
		DBPath:         appConfig.DBPath,
		LegacyDBPath:   appConfig.LegacyDBPath,
		LegacyKVPath:   appConfig.LegacyKVPath,
		LegacyKVPathV1: appConfig.LegacyKVPath,
	}, nil
}

// Validate checks the backend configuration.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// Factory creates persistence adapters.
type Factory struct {
	logger *slog.Logger
}

// NewFactory returns a factory logging through the given logger.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateAdapter opens the current backend and wires the legacy chain,
// most recent format first. Legacy paths left empty disable that source.
func (f *Factory) CreateAdapter(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	current, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite backend: %w", err)
	}

	var legacy []storage.LegacySource
	if cfg.LegacyDBPath != "" {
		legacy = append(legacy, storage.NewLegacyDBSource(cfg.LegacyDBPath))
	}
	if cfg.LegacyKVPath != "" {
		legacy = append(legacy, storage.NewLegacyKVSourceV2(cfg.LegacyKVPath))
	}
	if cfg.LegacyKVPathV1 != "" {
		legacy = append(legacy, storage.NewLegacyKVSourceV1(cfg.LegacyKVPathV1))
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.DBPath,
		"legacy_sources", len(legacy))

	return &Result{
		Adapter: storage.NewAdapter(current, legacy, f.logger),
		Cleanup: current.Close,
	}, nil
}

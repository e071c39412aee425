// Package cli consolidates the initialization steps shared by command
// entry points: env file, logging, configuration, and engine wiring.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"feetrack/internal/backend"
	"feetrack/internal/config"
	"feetrack/internal/engine"
	"feetrack/internal/log"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging and installs it as default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.ParseLevel(level), "feetrack")
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitEngine assembles the persistence adapter and engine, or exits on
// failure. The returned cleanup must run before the process ends.
func InitEngine(logger *log.Logger, cfg *config.Config) (*engine.Engine, func()) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to derive backend config", "error", err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.Logger).CreateAdapter(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err)
		os.Exit(1)
	}

	eng := engine.New(result.Adapter, logger.Logger)
	cleanup := func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	}
	return eng, cleanup
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// Current backend
	DBPath string

	// Retired formats, probed by the migration path only. Empty disables.
	LegacyDBPath string
	LegacyKVPath string

	// Backup export destination
	BackupDir string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		DBPath:       getEnv("FEETRACK_DB_PATH", "./data/feetrack.db"),
		LegacyDBPath: getEnv("FEETRACK_LEGACY_DB_PATH", "./data/feetrack_legacy.db"),
		LegacyKVPath: getEnv("FEETRACK_LEGACY_KV_PATH", "./data/state.json"),
		BackupDir:    getEnv("FEETRACK_BACKUP_DIR", "./backups"),
		LogLevel:     getEnv("FEETRACK_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and creates the database directory if
// it does not exist yet.
func (c *Config) Validate() error {
	var errs []string

	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
			}
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package storage persists the AppData aggregate. The current backend is
// a SQLite key/value table; older on-disk formats are readable through
// legacy sources that the adapter migrates from exactly once.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"feetrack/internal/core"
)

// Keys inside the app_state table. The blob under dataKey is the same
// JSON document the backup codec produces.
const (
	dataKey  = "main_data"
	themeKey = "theme"
)

// SQLiteStore is the current backend of record: one app_state table with
// the serialized aggregate under dataKey and the theme under themeKey.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database and brings the
// schema up to date.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) getValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) putValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

// ReadData returns the stored aggregate, or (nil, nil) when the backend
// holds no data yet.
func (s *SQLiteStore) ReadData(ctx context.Context) (*core.AppData, error) {
	value, ok, err := s.getValue(ctx, dataKey)
	if err != nil || !ok {
		return nil, err
	}
	var data core.AppData
	if err := json.Unmarshal([]byte(value), &data); err != nil {
		return nil, fmt.Errorf("decode stored data: %w", err)
	}
	return &data, nil
}

// WriteData overwrites the stored aggregate wholesale. Safe to call
// repeatedly; there is exactly one record.
func (s *SQLiteStore) WriteData(ctx context.Context, data core.AppData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}
	if err := s.putValue(ctx, dataKey, string(blob)); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Snapshot persisted",
		"locations", len(data.Locations),
		"students", len(data.Students),
		"payments", len(data.Payments))
	return nil
}

// ReadTheme returns the stored theme, or ("", nil) when none is stored.
func (s *SQLiteStore) ReadTheme(ctx context.Context) (core.Theme, error) {
	value, ok, err := s.getValue(ctx, themeKey)
	if err != nil || !ok {
		return "", err
	}
	return core.Theme(value), nil
}

// WriteTheme stores the theme preference.
func (s *SQLiteStore) WriteTheme(ctx context.Context, theme core.Theme) error {
	return s.putValue(ctx, themeKey, string(theme))
}

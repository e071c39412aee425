package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"feetrack/internal/core"
)

// Keys used by retired on-disk formats. Only the migration path reads
// them; nothing writes these formats anymore.
const (
	legacyKVKeyV2 = "feetrack_data_v2"
	legacyKVKeyV1 = "feetrack_data"
	legacyDBTable = "app_data"
)

// LegacySource is one retired storage format. Sources are independent of
// each other: the adapter probes them in priority order and migrates from
// the first one that yields data. TryRead returning (nil, nil) means "this
// source has nothing"; errors are treated the same way by the adapter.
type LegacySource interface {
	Name() string
	TryRead(ctx context.Context) (*core.AppData, error)
	// Clear removes the legacy copy after a successful migration so only
	// the current backend remains authoritative.
	Clear(ctx context.Context) error
}

// LegacyDBSource reads the retired structured-database format: a SQLite
// file with a single app_data table holding the JSON blob under the fixed
// record key. It predates the schema-migration machinery of the current
// backend.
type LegacyDBSource struct {
	path string
}

func NewLegacyDBSource(path string) *LegacyDBSource {
	return &LegacyDBSource{path: path}
}

func (s *LegacyDBSource) Name() string { return "legacy-db" }

func (s *LegacyDBSource) TryRead(ctx context.Context) (*core.AppData, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	defer db.Close()

	var value string
	err = db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, legacyDBTable), dataKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy record: %w", err)
	}

	var data core.AppData
	if err := json.Unmarshal([]byte(value), &data); err != nil {
		return nil, fmt.Errorf("decode legacy record: %w", err)
	}
	return &data, nil
}

func (s *LegacyDBSource) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove legacy database: %w", err)
	}
	return nil
}

// LegacyKVSource reads the retired key/value-file formats: one JSON
// object file mapping string keys to raw JSON values, with the aggregate
// stored as a serialized string under a generation-specific key.
type LegacyKVSource struct {
	path string
	key  string
}

// NewLegacyKVSourceV2 reads the second-generation key/value file.
func NewLegacyKVSourceV2(path string) *LegacyKVSource {
	return &LegacyKVSource{path: path, key: legacyKVKeyV2}
}

// NewLegacyKVSourceV1 reads the first-generation key/value file.
func NewLegacyKVSourceV1(path string) *LegacyKVSource {
	return &LegacyKVSource{path: path, key: legacyKVKeyV1}
}

func (s *LegacyKVSource) Name() string { return "legacy-kv:" + s.key }

func (s *LegacyKVSource) TryRead(_ context.Context) (*core.AppData, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy kv file: %w", err)
	}

	var kv map[string]string
	if err := json.Unmarshal(raw, &kv); err != nil {
		return nil, fmt.Errorf("decode legacy kv file: %w", err)
	}
	blob, ok := kv[s.key]
	if !ok {
		return nil, nil
	}
	var data core.AppData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("decode legacy kv record: %w", err)
	}
	return &data, nil
}

// Clear deletes only this source's key; an older generation sharing the
// file keeps its own record until its own migration clears it.
func (s *LegacyKVSource) Clear(_ context.Context) error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read legacy kv file: %w", err)
	}
	var kv map[string]string
	if err := json.Unmarshal(raw, &kv); err != nil {
		// Unreadable file: remove it outright rather than leave a copy.
		return os.Remove(s.path)
	}
	delete(kv, s.key)
	if len(kv) == 0 {
		return os.Remove(s.path)
	}
	out, err := json.Marshal(kv)
	if err != nil {
		return fmt.Errorf("encode legacy kv file: %w", err)
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("rewrite legacy kv file: %w", err)
	}
	return nil
}

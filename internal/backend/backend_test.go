package backend

import (
	"context"
	"path/filepath"
	"testing"

	"feetrack/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DBPath:       "/tmp/feetrack.db",
		LegacyDBPath: "/tmp/legacy.db",
		LegacyKVPath: "/tmp/state.json",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.DBPath != "/tmp/feetrack.db" || cfg.LegacyDBPath != "/tmp/legacy.db" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil app config accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("empty db path accepted")
	}
	if err := (Config{DBPath: "x.db"}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestCreateAdapter(t *testing.T) {
	dir := t.TempDir()
	result, err := NewFactory(nil).CreateAdapter(Config{
		DBPath: filepath.Join(dir, "feetrack.db"),
		// Legacy paths left empty: no legacy chain configured.
	})
	if err != nil {
		t.Fatalf("CreateAdapter: %v", err)
	}
	defer result.Cleanup()

	// With a fresh database and no legacy sources, a load lands on seed.
	data := result.Adapter.Load(context.Background())
	if len(data.Locations) != 3 {
		t.Errorf("seed locations = %d, want 3", len(data.Locations))
	}
}

func TestCreateAdapterRejectsBadConfig(t *testing.T) {
	if _, err := NewFactory(nil).CreateAdapter(Config{}); err == nil {
		t.Error("empty config accepted")
	}
}

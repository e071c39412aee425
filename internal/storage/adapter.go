package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"feetrack/internal/core"
)

// Backend is the current backend of record. ReadData/ReadTheme return the
// zero result with a nil error when nothing is stored.
type Backend interface {
	ReadData(ctx context.Context) (*core.AppData, error)
	WriteData(ctx context.Context, data core.AppData) error
	ReadTheme(ctx context.Context) (core.Theme, error)
	WriteTheme(ctx context.Context, theme core.Theme) error
}

// Adapter loads and saves the aggregate against the current backend,
// absorbing data left behind by retired formats. Every read or write
// failure is degraded rather than propagated: a failing read acts as "no
// data here" and falls through the migration chain to seed data, a failing
// write leaves the previous durable value in place.
type Adapter struct {
	backend Backend
	legacy  []LegacySource // most recent first
	logger  *slog.Logger
	now     func() time.Time

	loads singleflight.Group

	// Saves are serialized, and a save carrying an older snapshot version
	// than one already applied is dropped so a slow write can never
	// clobber a newer snapshot.
	saveMu     sync.Mutex
	savedVer   uint64
	savedAny   bool
	lastSaveOK bool
}

// NewAdapter wires the current backend with the ordered legacy chain.
func NewAdapter(backend Backend, legacy []LegacySource, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		backend:    backend,
		legacy:     legacy,
		logger:     logger,
		now:        time.Now,
		lastSaveOK: true,
	}
}

// Load returns the authoritative aggregate. The current backend wins when
// it has data; otherwise the legacy chain is probed most recent first and
// the first hit is migrated into the current backend exactly once, with
// the legacy copy cleared. With nothing anywhere, the built-in seed
// dataset is returned without being persisted. Concurrent calls collapse
// into a single probe.
func (a *Adapter) Load(ctx context.Context) core.AppData {
	v, _, _ := a.loads.Do("load", func() (any, error) {
		return a.load(ctx), nil
	})
	return v.(core.AppData)
}

func (a *Adapter) load(ctx context.Context) core.AppData {
	data, err := a.backend.ReadData(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "Current backend read failed, falling back", "error", err)
	}
	if data != nil {
		return *data
	}

	if migrated := a.migrate(ctx); migrated != nil {
		return *migrated
	}

	a.logger.InfoContext(ctx, "No stored data found, using seed dataset")
	return SeedData(a.now())
}

// migrate walks the legacy chain and performs the one-shot move of the
// first dataset it finds. The legacy copy is cleared only after the write
// into the current backend succeeded, so a failed migration can be
// retried on the next load.
func (a *Adapter) migrate(ctx context.Context) *core.AppData {
	for _, src := range a.legacy {
		data, err := src.TryRead(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "Legacy source read failed, skipping",
				"source", src.Name(), "error", err)
			continue
		}
		if data == nil {
			continue
		}

		if err := a.backend.WriteData(ctx, *data); err != nil {
			a.logger.ErrorContext(ctx, "Migration write failed, keeping legacy copy",
				"source", src.Name(), "error", err)
			return data
		}
		if err := src.Clear(ctx); err != nil {
			a.logger.WarnContext(ctx, "Failed to clear migrated legacy source",
				"source", src.Name(), "error", err)
		}
		a.logger.InfoContext(ctx, "Migrated data from legacy source",
			"source", src.Name(),
			"locations", len(data.Locations),
			"students", len(data.Students),
			"payments", len(data.Payments))
		return data
	}
	return nil
}

// Save overwrites the stored aggregate with the snapshot at the given
// logical version. It reports whether the snapshot is durably stored;
// false covers both a dropped stale save and a write failure.
func (a *Adapter) Save(ctx context.Context, version uint64, data core.AppData) bool {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	if a.savedAny && version <= a.savedVer {
		a.logger.DebugContext(ctx, "Dropping stale save",
			"version", version, "latest", a.savedVer)
		return false
	}

	if err := a.backend.WriteData(ctx, data); err != nil {
		a.logger.ErrorContext(ctx, "Save failed, previous durable value kept",
			"version", version, "error", err)
		a.lastSaveOK = false
		return false
	}
	a.savedVer = version
	a.savedAny = true
	a.lastSaveOK = true
	return true
}

// LastSaveOK reports whether the most recent save attempt succeeded, for
// presentation to surface a warning. It starts out true.
func (a *Adapter) LastSaveOK() bool {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return a.lastSaveOK
}

// LoadTheme returns the stored theme preference, degrading to light on
// absence, failure, or an unknown value.
func (a *Adapter) LoadTheme(ctx context.Context) core.Theme {
	theme, err := a.backend.ReadTheme(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "Theme read failed, defaulting", "error", err)
		return core.ThemeLight
	}
	if !theme.Valid() {
		return core.ThemeLight
	}
	return theme
}

// SaveTheme stores the theme preference. Failures are logged only; the
// theme is cosmetic.
func (a *Adapter) SaveTheme(ctx context.Context, theme core.Theme) error {
	if !theme.Valid() {
		return core.ErrInvalidTheme
	}
	if err := a.backend.WriteTheme(ctx, theme); err != nil {
		a.logger.WarnContext(ctx, "Theme write failed", "error", err)
	}
	return nil
}

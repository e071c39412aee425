// Package engine is the surface the presentation layer talks to: it owns
// the record store, pushes every new snapshot through the persistence
// adapter, and exposes backup import/export. Persistence failures never
// surface as mutation errors; the mutation already succeeded in memory and
// the adapter keeps the previous durable value.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feetrack/internal/backup"
	"feetrack/internal/core"
	"feetrack/internal/storage"
	"feetrack/internal/store"
)

type Engine struct {
	store   *store.Store
	adapter *storage.Adapter
	logger  *slog.Logger
	now     func() time.Time
}

// New builds an engine over the given adapter. Call Load before use.
func New(adapter *storage.Adapter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		adapter: adapter,
		logger:  logger,
		now:     time.Now,
	}
}

// Load pulls the authoritative aggregate (current backend, migrated
// legacy data, or seed) into the store. It never fails: the adapter
// degrades every persistence problem to a usable default.
func (e *Engine) Load(ctx context.Context) core.AppData {
	data := e.adapter.Load(ctx)
	e.store = store.New(data)
	return data
}

// Snapshot returns the current aggregate.
func (e *Engine) Snapshot() core.AppData {
	return e.store.Snapshot()
}

// SaveOK reports whether the most recent save attempt reached storage,
// for presentation to surface a transient warning.
func (e *Engine) SaveOK() bool {
	return e.adapter.LastSaveOK()
}

func (e *Engine) persist(ctx context.Context) {
	data, version := e.store.State()
	e.adapter.Save(ctx, version, data)
}

// AddLocation creates a location and persists the new snapshot.
func (e *Engine) AddLocation(ctx context.Context, name, color string) (core.Location, error) {
	loc, err := e.store.AddLocation(name, color)
	if err != nil {
		return core.Location{}, err
	}
	e.persist(ctx)
	return loc, nil
}

// AddStudent enrolls a student and persists the new snapshot.
func (e *Engine) AddStudent(ctx context.Context, name, locationID string, defaultFee float64) (core.Student, error) {
	stu, err := e.store.AddStudent(name, locationID, defaultFee)
	if err != nil {
		return core.Student{}, err
	}
	e.persist(ctx)
	return stu, nil
}

// RecordPayment marks a student paid for the period and persists.
func (e *Engine) RecordPayment(ctx context.Context, studentID string, period core.Period, amount float64) (core.Payment, error) {
	pay, err := e.store.RecordPayment(studentID, period, amount)
	if err != nil {
		return core.Payment{}, err
	}
	e.persist(ctx)
	return pay, nil
}

// UndoPayment removes a payment by id and persists. Unknown ids no-op.
func (e *Engine) UndoPayment(ctx context.Context, paymentID string) {
	e.store.UndoPayment(paymentID)
	e.persist(ctx)
}

// UpdateDefaultFee changes a student's suggested fee and persists.
func (e *Engine) UpdateDefaultFee(ctx context.Context, studentID string, newFee float64) error {
	if err := e.store.UpdateDefaultFee(studentID, newFee); err != nil {
		return err
	}
	e.persist(ctx)
	return nil
}

// DeleteLocation cascades through students and payments, then persists.
func (e *Engine) DeleteLocation(ctx context.Context, locationID string) error {
	if err := e.store.DeleteLocation(locationID); err != nil {
		return err
	}
	e.persist(ctx)
	return nil
}

// SoftDeleteStudent deactivates a student, keeping history, then persists.
func (e *Engine) SoftDeleteStudent(ctx context.Context, studentID string) error {
	if err := e.store.SoftDeleteStudent(studentID); err != nil {
		return err
	}
	e.persist(ctx)
	return nil
}

// LoadTheme returns the persisted theme, defaulting to light.
func (e *Engine) LoadTheme(ctx context.Context) core.Theme {
	return e.adapter.LoadTheme(ctx)
}

// SaveTheme persists the theme preference.
func (e *Engine) SaveTheme(ctx context.Context, theme core.Theme) error {
	return e.adapter.SaveTheme(ctx, theme)
}

// Export encodes the current aggregate as backup text.
func (e *Engine) Export() ([]byte, error) {
	return backup.Encode(e.store.Snapshot())
}

// ExportToFile writes a dated backup file into dir and returns its path.
func (e *Engine) ExportToFile(dir string) (string, error) {
	path, err := backup.ExportToFile(e.store.Snapshot(), dir, e.now())
	if err != nil {
		return "", fmt.Errorf("export backup: %w", err)
	}
	e.logger.Info("Exported backup", "path", path)
	return path, nil
}

// Import replaces the whole aggregate with a decoded backup document and
// persists the result.
func (e *Engine) Import(ctx context.Context, text []byte) (core.AppData, error) {
	data, err := backup.Decode(text)
	if err != nil {
		return core.AppData{}, err
	}
	replaced := e.store.ReplaceAll(data)
	e.persist(ctx)
	e.logger.Info("Imported backup",
		"locations", len(replaced.Locations),
		"students", len(replaced.Students),
		"payments", len(replaced.Payments))
	return replaced, nil
}

// ImportFromFile is Import reading the document from a file.
func (e *Engine) ImportFromFile(ctx context.Context, path string) (core.AppData, error) {
	data, err := backup.ImportFromFile(path)
	if err != nil {
		return core.AppData{}, err
	}
	replaced := e.store.ReplaceAll(data)
	e.persist(ctx)
	return replaced, nil
}

// Summary computes the dashboard projection for the period.
func (e *Engine) Summary(period core.Period) core.PeriodSummary {
	return core.Summarize(e.store.Snapshot(), period)
}

// History returns the six-period payment history before ref for a student.
func (e *Engine) History(studentID string, ref core.Period) []core.HistoryEntry {
	return core.HistoryEntries(e.store.Snapshot(), studentID, ref)
}

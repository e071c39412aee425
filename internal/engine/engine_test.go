package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"feetrack/internal/core"
	"feetrack/internal/storage"
)

type memBackend struct {
	data     *core.AppData
	theme    core.Theme
	writeErr error
	writes   int
}

func (m *memBackend) ReadData(context.Context) (*core.AppData, error) {
	if m.data == nil {
		return nil, nil
	}
	d := m.data.Clone()
	return &d, nil
}

func (m *memBackend) WriteData(_ context.Context, data core.AppData) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	d := data.Clone()
	m.data = &d
	m.writes++
	return nil
}

func (m *memBackend) ReadTheme(context.Context) (core.Theme, error) { return m.theme, nil }

func (m *memBackend) WriteTheme(_ context.Context, theme core.Theme) error {
	m.theme = theme
	return nil
}

func newTestEngine(t *testing.T, backend *memBackend) *Engine {
	t.Helper()
	e := New(storage.NewAdapter(backend, nil, nil), nil)
	e.Load(context.Background())
	return e
}

func TestLoadSeedsWhenEmpty(t *testing.T) {
	e := newTestEngine(t, &memBackend{})
	snap := e.Snapshot()
	if len(snap.Locations) != 3 || len(snap.Students) != 6 || len(snap.Payments) != 3 {
		t.Errorf("seed shape = %d/%d/%d, want 3/6/3",
			len(snap.Locations), len(snap.Students), len(snap.Payments))
	}
}

func TestMutationsPersistSnapshots(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)
	ctx := context.Background()

	loc, err := e.AddLocation(ctx, "Studio B", "")
	if err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if backend.writes != 1 {
		t.Errorf("writes = %d, want 1", backend.writes)
	}
	if backend.data.Location(loc.ID) == nil {
		t.Error("durable copy missing the new location")
	}

	stu, err := e.AddStudent(ctx, "Greta", loc.ID, 120)
	if err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	pay, err := e.RecordPayment(ctx, stu.ID, core.Period{Month: 3, Year: 2026}, 120)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if backend.writes != 3 {
		t.Errorf("writes = %d, want one per mutation", backend.writes)
	}

	e.UndoPayment(ctx, pay.ID)
	if got := core.TotalCollected(*backend.data, core.Period{Month: 3, Year: 2026}); got != 0 {
		t.Errorf("durable total after undo = %v, want 0", got)
	}
}

func TestMutationErrorDoesNotPersist(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)

	if _, err := e.AddStudent(context.Background(), "Greta", "nope", 0); !errors.Is(err, core.ErrUnknownLocation) {
		t.Fatalf("err = %v, want ErrUnknownLocation", err)
	}
	if backend.writes != 0 {
		t.Errorf("writes = %d, want 0 after rejected mutation", backend.writes)
	}
}

func TestSaveFailureSurfacesAsStatusOnly(t *testing.T) {
	backend := &memBackend{writeErr: errors.New("disk full")}
	e := newTestEngine(t, backend)

	// The mutation itself succeeds in memory.
	if _, err := e.AddLocation(context.Background(), "Studio B", ""); err != nil {
		t.Fatalf("mutation failed on save error: %v", err)
	}
	if e.SaveOK() {
		t.Error("SaveOK = true after failed write")
	}
	if len(e.Snapshot().Locations) != 4 {
		t.Error("in-memory snapshot lost the mutation")
	}
}

func TestImportReplacesAndPersists(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)

	text := []byte(`{
  "locations": [{"id": "x1", "name": "Imported"}],
  "students": [],
  "payments": []
}`)
	got, err := e.Import(context.Background(), text)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(got.Locations) != 1 || got.Locations[0].Name != "Imported" {
		t.Errorf("imported %+v", got.Locations)
	}
	if backend.data == nil || len(backend.data.Locations) != 1 {
		t.Error("import not persisted")
	}
}

func TestImportRejectsBadDocument(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)

	if _, err := e.Import(context.Background(), []byte(`{"locations": []}`)); err == nil {
		t.Fatal("bad document accepted")
	}
	if len(e.Snapshot().Locations) != 3 {
		t.Error("rejected import modified the snapshot")
	}
	if backend.writes != 0 {
		t.Error("rejected import wrote to storage")
	}
}

func TestExportImportFileRoundTrip(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)
	ctx := context.Background()

	loc, _ := e.AddLocation(ctx, "Studio B", "")
	path, err := e.ExportToFile(t.TempDir())
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("unexpected export path %s", path)
	}

	// A fresh engine imports the file and ends up with the same data.
	e2 := newTestEngine(t, &memBackend{})
	got, err := e2.ImportFromFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFromFile: %v", err)
	}
	if got.Location(loc.ID) == nil {
		t.Error("round trip lost the exported location")
	}
}

func TestThemePassthrough(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)
	ctx := context.Background()

	if got := e.LoadTheme(ctx); got != core.ThemeLight {
		t.Errorf("default theme = %q", got)
	}
	if err := e.SaveTheme(ctx, core.ThemeDark); err != nil {
		t.Fatal(err)
	}
	if got := e.LoadTheme(ctx); got != core.ThemeDark {
		t.Errorf("theme = %q, want dark", got)
	}
}

func TestSummaryAndHistory(t *testing.T) {
	backend := &memBackend{}
	e := newTestEngine(t, backend)
	ctx := context.Background()

	loc, _ := e.AddLocation(ctx, "Studio B", "")
	stu, _ := e.AddStudent(ctx, "Greta", loc.ID, 120)
	period := core.Period{Month: 2, Year: 2026}
	if _, err := e.RecordPayment(ctx, stu.ID, period.Prev(), 120); err != nil {
		t.Fatal(err)
	}

	s := e.Summary(period.Prev())
	if s.TotalCollected != 120 {
		t.Errorf("TotalCollected = %v, want 120", s.TotalCollected)
	}

	hist := e.History(stu.ID, period)
	if len(hist) != 6 {
		t.Fatalf("history length = %d, want 6", len(hist))
	}
	if hist[0].Payment == nil || hist[0].Payment.Amount != 120 {
		t.Errorf("newest history entry = %+v, want the payment", hist[0].Payment)
	}
}

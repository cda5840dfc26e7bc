package checkpoint_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/screener/internal/checkpoint"
	"github.com/JaimeStill/screener/internal/compare"
	"github.com/JaimeStill/screener/internal/criteria"
	"github.com/JaimeStill/screener/internal/rules"
	"github.com/JaimeStill/screener/pkg/lifecycle"
	"github.com/JaimeStill/screener/pkg/storage"
)

func sample(runID string, completed int) *checkpoint.Checkpoint {
	set := criteria.NewSet(criteria.Assessment{
		Criterion:     criteria.LMIC,
		Verdict:       criteria.Affirm,
		Justification: "Bangladesh",
		Provenance:    criteria.Provenance{Pass: criteria.FirstPass, Classifier: "primary"},
	})

	return &checkpoint.Checkpoint{
		RunID: runID,
		Results: []compare.DualResult{{
			DocumentID: "d-1",
			Title:      "A paper",
			Primary: compare.Outcome{
				Classifier: "primary",
				Status:     compare.StatusOK,
				Result:     &rules.Result{Assessments: set, Decision: rules.Uncertain, Rule: rules.RuleSomeUnresolved},
				Duration:   1500 * time.Millisecond,
			},
			Secondary: compare.Outcome{
				Classifier: "secondary",
				Status:     compare.StatusError,
				Error:      "timeout",
			},
			Priority:    compare.PriorityMedium,
			ProcessedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		CompletedBatches: completed,
		TotalBatches:     4,
		UpdatedAt:        time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}
}

// exercise runs the behavior every store must share.
func exercise(t *testing.T, store checkpoint.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "run-a"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Fatalf("Load absent: err = %v, want ErrNotFound", err)
	}

	first := sample("run-a", 1)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "run-a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Errorf("loaded checkpoint mismatch (-want +got):\n%s", diff)
	}

	second := sample("run-a", 2)
	for range 2 {
		if err := store.Save(ctx, second); err != nil {
			t.Fatalf("overwrite Save: %v", err)
		}
	}
	got, err = store.Load(ctx, "run-a")
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if got.CompletedBatches != 2 {
		t.Errorf("CompletedBatches = %d, want 2", got.CompletedBatches)
	}

	if err := store.Save(ctx, sample("run-b", 1)); err != nil {
		t.Fatalf("Save run-b: %v", err)
	}

	if err := store.Delete(ctx, "run-a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "run-a"); !errors.Is(err, checkpoint.ErrNotFound) {
		t.Errorf("Load after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "run-a"); err != nil {
		t.Errorf("Delete absent: %v", err)
	}

	if _, err := store.Load(ctx, "run-b"); err != nil {
		t.Errorf("other run affected by delete: %v", err)
	}

	if err := store.Save(ctx, sample("../escape", 1)); !errors.Is(err, checkpoint.ErrInvalidRunID) {
		t.Errorf("Save invalid run id: err = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	store, err := checkpoint.NewFileStore(filepath.Join(t.TempDir(), "checkpoints"))
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, store)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := checkpoint.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 3 {
		if err := store.Save(context.Background(), sample("run", i)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "run.checkpoint.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v", names)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := checkpoint.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(store.Path("run"), []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background(), "run"); !errors.Is(err, checkpoint.ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}

func TestSQLStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")

	if err := checkpoint.Migrate("sqlite", "sqlite://"+path); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	exercise(t, checkpoint.NewSQLStore(db, "sqlite"))
}

func TestMigratorVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")

	mg, err := checkpoint.NewMigrator("sqlite", "sqlite://"+path)
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}
	defer mg.Close()

	if v, _, err := mg.Version(); err != nil || v != 0 {
		t.Fatalf("Version before up = %d, %v", v, err)
	}
	if err := mg.Up(); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mg.Up(); err != nil {
		t.Fatalf("second Up should be a no-op: %v", err)
	}
	if v, dirty, err := mg.Version(); err != nil || v != 1 || dirty {
		t.Errorf("Version after up = %d dirty=%v err=%v", v, dirty, err)
	}
}

func TestNewMigratorUnknownDriver(t *testing.T) {
	if _, err := checkpoint.NewMigrator("oracle", "oracle://x"); !errors.Is(err, checkpoint.ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
}

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (m *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func TestBlobStore(t *testing.T) {
	exercise(t, checkpoint.NewBlobStore(&memBlobs{data: map[string][]byte{}}))
}

func TestValidateRunID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"2026-01-02-run", true},
		{"0b8f3c1e-uuid", true},
		{"", false},
		{"  ", false},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := checkpoint.ValidateRunID(tt.id)
			if (err == nil) != tt.valid {
				t.Errorf("ValidateRunID(%q) = %v", tt.id, err)
			}
		})
	}
}

func TestCompleted(t *testing.T) {
	cp := sample("run", 1)
	done := cp.Completed()
	if _, ok := done["d-1"]; !ok || len(done) != 1 {
		t.Errorf("Completed = %v", done)
	}
}

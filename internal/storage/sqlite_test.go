package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
)

func setupTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()

	dir := t.TempDir()
	s, err := NewSQLiteStorage(filepath.Join(dir, "hunt.db"), dir, testLogger())
	if err != nil {
		t.Fatalf("Failed to open sqlite storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoadProgress(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	p.StepIndex = 5
	p.NarrationUnlocked = true

	if err := s.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	loaded, err := s.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load progress: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil progress")
	}

	if loaded.HuntFile != "manor_mystery.json" {
		t.Errorf("Expected hunt file manor_mystery.json, got %v", loaded.HuntFile)
	}
	if loaded.StepIndex != 5 {
		t.Errorf("Expected step index 5, got %d", loaded.StepIndex)
	}
	if !loaded.NarrationUnlocked {
		t.Error("Expected narration to be unlocked")
	}
}

func TestSQLiteStorage_UpdateOverwrites(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	if err := s.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save initial progress: %v", err)
	}

	p.StepIndex = 2
	p.Touch()
	if err := s.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to update progress: %v", err)
	}

	loaded, err := s.LoadProgress(ctx, id)
	if err != nil || loaded == nil {
		t.Fatal("Failed to load updated progress")
	}
	if loaded.StepIndex != 2 {
		t.Errorf("Expected step index 2, got %d", loaded.StepIndex)
	}
}

func TestSQLiteStorage_LoadMissingProgress(t *testing.T) {
	s := setupTestSQLite(t)

	loaded, err := s.LoadProgress(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing progress, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing progress")
	}
}

func TestSQLiteStorage_MalformedRowTreatedAsAbsent(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (id, data, updated_at) VALUES (?, ?, ?)`,
		id.String(), "{not json", time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to seed malformed row: %v", err)
	}

	loaded, err := s.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Expected malformed row to be treated as absent, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for malformed progress row")
	}
}

func TestSQLiteStorage_DeleteProgress(t *testing.T) {
	s := setupTestSQLite(t)
	ctx := context.Background()

	id := uuid.New()
	if err := s.SaveProgress(ctx, id, state.NewProgress("manor_mystery.json")); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	if err := s.DeleteProgress(ctx, id); err != nil {
		t.Fatalf("Failed to delete progress: %v", err)
	}

	loaded, err := s.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error after deletion: %v", err)
	}
	if loaded != nil {
		t.Error("Progress should be nil after deletion")
	}
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hunt.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(path, dir, testLogger())
	if err != nil {
		t.Fatalf("Failed to open sqlite storage: %v", err)
	}

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	p.StepIndex = 4
	if err := s.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Failed to close storage: %v", err)
	}

	reopened, err := NewSQLiteStorage(path, dir, testLogger())
	if err != nil {
		t.Fatalf("Failed to reopen sqlite storage: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load progress after reopen: %v", err)
	}
	if loaded == nil || loaded.StepIndex != 4 {
		t.Errorf("Expected step index 4 after reopen, got %+v", loaded)
	}
}

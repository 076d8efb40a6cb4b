package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
)

func TestMemoryStorage_SaveAndLoadProgress(t *testing.T) {
	ms := NewMemoryStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	p.StepIndex = 1

	if err := ms.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	loaded, err := ms.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load progress: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil progress")
	}
	if loaded.StepIndex != 1 {
		t.Errorf("Expected step index 1, got %d", loaded.StepIndex)
	}
}

func TestMemoryStorage_CopiesRecords(t *testing.T) {
	ms := NewMemoryStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	if err := ms.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	// Mutating the caller's pointer must not change the stored record.
	p.StepIndex = 99
	loaded, err := ms.LoadProgress(ctx, id)
	if err != nil || loaded == nil {
		t.Fatalf("Failed to load progress: %v", err)
	}
	if loaded.StepIndex != 0 {
		t.Errorf("Stored record was mutated through caller pointer: step index %d", loaded.StepIndex)
	}

	// Mutating a loaded record must not change the stored one either.
	loaded.StepIndex = 42
	again, err := ms.LoadProgress(ctx, id)
	if err != nil || again == nil {
		t.Fatalf("Failed to reload progress: %v", err)
	}
	if again.StepIndex != 0 {
		t.Errorf("Stored record was mutated through loaded pointer: step index %d", again.StepIndex)
	}
}

func TestMemoryStorage_LoadMissingProgress(t *testing.T) {
	ms := NewMemoryStorage(t.TempDir(), testLogger())

	loaded, err := ms.LoadProgress(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing progress, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing progress")
	}
}

func TestMemoryStorage_DeleteProgress(t *testing.T) {
	ms := NewMemoryStorage(t.TempDir(), testLogger())
	ctx := context.Background()

	id := uuid.New()
	if err := ms.SaveProgress(ctx, id, state.NewProgress("manor_mystery.json")); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	if err := ms.DeleteProgress(ctx, id); err != nil {
		t.Fatalf("Failed to delete progress: %v", err)
	}

	loaded, err := ms.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error after deletion: %v", err)
	}
	if loaded != nil {
		t.Error("Progress should be nil after deletion")
	}
}

func TestMemoryStorage_RejectsNilProgress(t *testing.T) {
	ms := NewMemoryStorage(t.TempDir(), testLogger())

	if err := ms.SaveProgress(context.Background(), uuid.New(), nil); err == nil {
		t.Error("Expected error for nil progress")
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/internal/services/events"
	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

func testHunt() *hunt.Hunt {
	return &hunt.Hunt{
		Name:     "Test Hunt",
		FileName: "test_hunt.json",
		Steps: []hunt.Step{
			{ID: 1, LocationID: "study", Title: "One", Riddle: "First riddle", Answer: "alpha"},
			{ID: 2, LocationID: "cellar", Title: "Two", Riddle: "Second riddle", Answer: "beta"},
			{ID: 3, LocationID: "garden", Title: "Three", Riddle: "Third riddle", Answer: "gamma"},
		},
		Locations: map[string]hunt.Location{
			"study":  {Name: "Study", Group: hunt.GroupUpperFloor},
			"cellar": {Name: "Cellar", Group: hunt.GroupLowerFloor},
			"garden": {Name: "Garden", Group: hunt.GroupOutdoor},
		},
		OutdoorUnlockStep: 3,
	}
}

func newTestManager(t *testing.T) (*SessionManager, *storage.MockStorage) {
	t.Helper()

	store := storage.NewMockStorage()
	store.AddHunt("test_hunt.json", testHunt())

	m := NewSessionManager(store, NewMockNarrator(), events.NewMemoryBroker(), SessionConfig{
		OverlayDwell: 5 * time.Millisecond,
		AdvanceDwell: 10 * time.Millisecond,
	}, testLogger())
	t.Cleanup(m.Close)
	return m, store
}

func TestSessionManager_Create(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	eng, err := m.Create(ctx, "test_hunt.json")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	view := eng.View()
	if view.StepID != 1 {
		t.Errorf("Expected new session on step 1, got %d", view.StepID)
	}

	// The fresh session is persisted immediately.
	p, err := store.LoadProgress(ctx, eng.ID())
	if err != nil || p == nil {
		t.Fatalf("Expected persisted progress for new session, got %v, %v", p, err)
	}
	if p.HuntFile != "test_hunt.json" {
		t.Errorf("Expected hunt file on progress, got %q", p.HuntFile)
	}
}

func TestSessionManager_CreateUnknownHunt(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Create(context.Background(), "missing_hunt.json")
	if !errors.Is(err, storage.ErrHuntNotFound) {
		t.Errorf("Expected ErrHuntNotFound, got %v", err)
	}
}

func TestSessionManager_GetReturnsLiveEngine(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	created, err := m.Create(ctx, "test_hunt.json")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	got, err := m.Get(ctx, created.ID())
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got != created {
		t.Error("Expected the same engine instance for a live session")
	}
}

func TestSessionManager_ResumesFromStorage(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	// Persisted progress from a previous process lifetime.
	id := uuid.New()
	p := state.NewProgress("test_hunt.json")
	p.StepIndex = 1
	p.NarrationUnlocked = true
	if err := store.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to seed progress: %v", err)
	}

	eng, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to resume session: %v", err)
	}

	view := eng.View()
	if view.StepIndex != 1 {
		t.Errorf("Expected resumed session on step index 1, got %d", view.StepIndex)
	}
	if !view.NarrationUnlocked {
		t.Error("Expected narration consent to survive resume")
	}
}

func TestSessionManager_GetUnknownSession(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManager_Delete(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	eng, err := m.Create(ctx, "test_hunt.json")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	id := eng.ID()

	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	if p, _ := store.LoadProgress(ctx, id); p != nil {
		t.Error("Expected progress to be deleted")
	}
	if _, err := m.Get(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}

	// The closed engine ignores further submissions.
	result := eng.SubmitAnswer("alpha")
	if result.Outcome != engine.OutcomeIgnored {
		t.Errorf("Expected closed engine to ignore submissions, got %s", result.Outcome)
	}
}

func TestSessionManager_DeleteUnknownSession(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Delete(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManager_DeletePersistedOnlySession(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	// Progress exists in storage but no engine is live.
	id := uuid.New()
	if err := store.SaveProgress(ctx, id, state.NewProgress("test_hunt.json")); err != nil {
		t.Fatalf("Failed to seed progress: %v", err)
	}

	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("Failed to delete persisted session: %v", err)
	}
	if p, _ := store.LoadProgress(ctx, id); p != nil {
		t.Error("Expected progress to be deleted")
	}
}

func TestSessionManager_CloseClosesEngines(t *testing.T) {
	m, _ := newTestManager(t)

	eng, err := m.Create(context.Background(), "test_hunt.json")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	m.Close()

	result := eng.SubmitAnswer("alpha")
	if result.Outcome != engine.OutcomeIgnored {
		t.Errorf("Expected closed engine to ignore submissions, got %s", result.Outcome)
	}

	if _, err := m.Create(context.Background(), "test_hunt.json"); err == nil {
		t.Error("Expected create to fail on a closed manager")
	}
}

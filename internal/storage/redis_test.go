package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	// Start miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rs := NewRedisStorage(mr.Addr(), t.TempDir(), testLogger())
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestRedisStorage_SaveAndLoadProgress(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	id := uuid.New()
	p := state.NewProgress("manor_mystery.json")
	p.StepIndex = 3
	p.NarrationUnlocked = true

	if err := rs.SaveProgress(ctx, id, p); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	loaded, err := rs.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load progress: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil progress")
	}

	if loaded.HuntFile != "manor_mystery.json" {
		t.Errorf("Expected hunt file manor_mystery.json, got %v", loaded.HuntFile)
	}
	if loaded.StepIndex != 3 {
		t.Errorf("Expected step index 3, got %d", loaded.StepIndex)
	}
	if !loaded.NarrationUnlocked {
		t.Error("Expected narration to be unlocked")
	}
}

func TestRedisStorage_LoadMissingProgress(t *testing.T) {
	rs, _ := setupTestRedis(t)

	loaded, err := rs.LoadProgress(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing progress, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing progress")
	}
}

func TestRedisStorage_MalformedProgressTreatedAsAbsent(t *testing.T) {
	rs, mr := setupTestRedis(t)

	id := uuid.New()
	if err := mr.Set("progress:"+id.String(), "{not json"); err != nil {
		t.Fatalf("Failed to seed malformed record: %v", err)
	}

	loaded, err := rs.LoadProgress(context.Background(), id)
	if err != nil {
		t.Fatalf("Expected malformed record to be treated as absent, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for malformed progress record")
	}
}

func TestRedisStorage_ProgressHasNoTTL(t *testing.T) {
	rs, mr := setupTestRedis(t)
	ctx := context.Background()

	id := uuid.New()
	if err := rs.SaveProgress(ctx, id, state.NewProgress("manor_mystery.json")); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	if ttl := mr.TTL("progress:" + id.String()); ttl != 0 {
		t.Errorf("Expected no TTL on progress key, got %v", ttl)
	}

	// An abandoned session must still load after a long idle period.
	mr.FastForward(90 * 24 * time.Hour)
	loaded, err := rs.LoadProgress(ctx, id)
	if err != nil || loaded == nil {
		t.Fatalf("Expected progress to survive idle period, got %v, %v", loaded, err)
	}
}

func TestRedisStorage_DeleteProgress(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	id := uuid.New()
	if err := rs.SaveProgress(ctx, id, state.NewProgress("manor_mystery.json")); err != nil {
		t.Fatalf("Failed to save progress: %v", err)
	}

	if err := rs.DeleteProgress(ctx, id); err != nil {
		t.Fatalf("Failed to delete progress: %v", err)
	}

	loaded, err := rs.LoadProgress(ctx, id)
	if err != nil {
		t.Fatalf("Unexpected error after deletion: %v", err)
	}
	if loaded != nil {
		t.Error("Progress should be nil after deletion")
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupTestRedis(t)

	if err := rs.Ping(context.Background()); err != nil {
		t.Fatalf("Expected ping to succeed: %v", err)
	}

	mr.Close()
	if err := rs.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after redis shutdown")
	}
}

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.OverlayDwell != 3600*time.Millisecond {
		t.Errorf("OverlayDwell = %v, want 3.6s", cfg.OverlayDwell)
	}
	if cfg.AdvanceDwell != 3800*time.Millisecond {
		t.Errorf("AdvanceDwell = %v, want 3.8s", cfg.AdvanceDwell)
	}
	if cfg.NarratorURL != "" {
		t.Errorf("NarratorURL = %q, want empty", cfg.NarratorURL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis-host:6380")
	t.Setenv("NARRATOR_URL", "http://narrator:5000")
	t.Setenv("NARRATOR_VOICE_HINTS", "Daniel,en-GB,en-")
	t.Setenv("REVEAL_OVERLAY_DWELL", "150ms")
	t.Setenv("REVEAL_ADVANCE_DWELL", "200ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.StorageBackend != BackendRedis {
		t.Errorf("StorageBackend = %q, want redis", cfg.StorageBackend)
	}
	if cfg.RedisURL != "redis-host:6380" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if len(cfg.NarratorVoiceHints) != 3 || cfg.NarratorVoiceHints[0] != "Daniel" {
		t.Errorf("NarratorVoiceHints = %v, want [Daniel en-GB en-]", cfg.NarratorVoiceHints)
	}
	if cfg.OverlayDwell != 150*time.Millisecond {
		t.Errorf("OverlayDwell = %v, want 150ms", cfg.OverlayDwell)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

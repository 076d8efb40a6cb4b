package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the environment-driven configuration of the API process.
// Every field has a working default so a bare `go run ./cmd/api` starts
// an in-memory instance.
type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	DataDir     string     `env:"DATA_DIR" envDefault:"./data"`

	// Progress persistence. The API degrades to the memory backend when
	// the configured one cannot be reached at startup.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"data/hunt.db"`

	// Narrator capability. An empty URL disables narration output
	// entirely (the engine runs muted).
	NarratorURL        string   `env:"NARRATOR_URL"`
	NarratorVoiceHints []string `env:"NARRATOR_VOICE_HINTS" envSeparator:","`
	NarratorRate       float64  `env:"NARRATOR_RATE" envDefault:"0.92"`
	NarratorPitch      float64  `env:"NARRATOR_PITCH" envDefault:"0.85"`
	NarratorVolume     float64  `env:"NARRATOR_VOLUME" envDefault:"1.0"`

	// Reveal choreography dwells. The advance dwell is raised to the
	// overlay dwell when configured lower, so the reveal is always shown
	// before the step changes.
	OverlayDwell time.Duration `env:"REVEAL_OVERLAY_DWELL" envDefault:"3600ms"`
	AdvanceDwell time.Duration `env:"REVEAL_ADVANCE_DWELL" envDefault:"3800ms"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	switch cfg.StorageBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: expected %s, %s or %s",
			cfg.StorageBackend, BackendMemory, BackendRedis, BackendSQLite)
	}
	return &cfg, nil
}

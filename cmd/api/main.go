package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jwebster45206/hunt-engine/internal/config"
	"github.com/jwebster45206/hunt-engine/internal/handlers"
	"github.com/jwebster45206/hunt-engine/internal/logger"
	"github.com/jwebster45206/hunt-engine/internal/middleware"
	"github.com/jwebster45206/hunt-engine/internal/services"
	"github.com/jwebster45206/hunt-engine/internal/services/events"
	internalstorage "github.com/jwebster45206/hunt-engine/internal/storage"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

func main() {
	// Load .env when present. Real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Hunt Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_backend", cfg.StorageBackend,
		"data_dir", cfg.DataDir)

	store, broker := setupStorage(cfg, log)
	narrator := setupNarrator(cfg, log)

	sessionManager := services.NewSessionManager(store, narrator, broker, services.SessionConfig{
		OverlayDwell: cfg.OverlayDwell,
		AdvanceDwell: cfg.AdvanceDwell,
		Utterance: services.Utterance{
			Rate:   cfg.NarratorRate,
			Pitch:  cfg.NarratorPitch,
			Volume: cfg.NarratorVolume,
		},
	}, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, narrator, log)
	mux.Handle("/health", healthHandler)

	huntsHandler := handlers.NewHuntsHandler(store, log)
	mux.Handle("/v1/hunts", huntsHandler)
	mux.Handle("/v1/hunts/", huntsHandler)

	sessionsHandler := handlers.NewSessionsHandler(sessionManager, broker, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	mux.HandleFunc("/openapi.json", handlers.HandleOpenAPI())
	docs := handlers.Docs()
	mux.Handle("/docs", docs)
	mux.Handle("/docs/", docs)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so SSE streams are not cut off.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Stop live engines first so final progress saves land in storage.
	sessionManager.Close()

	if err := broker.Close(); err != nil {
		log.Error("Error closing event broker", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// setupStorage builds the configured progress backend and the event
// broker that rides on it. An unreachable backend degrades to the
// in-memory store instead of refusing to start: progress then lives
// only as long as the process.
func setupStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, events.Broker) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisStorage := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := redisStorage.WaitForConnection(ctx); err != nil {
			log.Warn("Redis unreachable, degrading to in-memory storage", "error", err, "redis_url", cfg.RedisURL)
			if closeErr := redisStorage.Close(); closeErr != nil {
				log.Error("Failed to close Redis client", "error", closeErr)
			}
			return internalstorage.NewMemoryStorage(cfg.DataDir, log), events.NewMemoryBroker()
		}

		log.Info("Storage connection established successfully", "backend", config.BackendRedis)
		return redisStorage, events.NewRedisBroker(redisStorage.Client(), log)

	case config.BackendSQLite:
		sqliteStorage, err := internalstorage.NewSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			log.Warn("SQLite unavailable, degrading to in-memory storage", "error", err, "path", cfg.SQLitePath)
			return internalstorage.NewMemoryStorage(cfg.DataDir, log), events.NewMemoryBroker()
		}

		log.Info("Storage connection established successfully", "backend", config.BackendSQLite, "path", cfg.SQLitePath)
		return sqliteStorage, events.NewMemoryBroker()

	default:
		log.Info("Using in-memory storage", "backend", config.BackendMemory)
		return internalstorage.NewMemoryStorage(cfg.DataDir, log), events.NewMemoryBroker()
	}
}

// setupNarrator builds the narration client. No configured URL means
// narration is disabled and sessions run muted.
func setupNarrator(cfg *config.Config, log *slog.Logger) services.NarratorService {
	if cfg.NarratorURL == "" {
		log.Info("Narrator disabled: NARRATOR_URL not set")
		return services.NewNoopNarrator()
	}

	tts := services.NewTTSService(cfg.NarratorURL, cfg.NarratorVoiceHints, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if ready, err := tts.Ready(ctx); err != nil {
		// Narration is optional; the engine swallows speak errors.
		log.Warn("Narrator unreachable at startup, continuing without it", "error", err, "narrator_url", cfg.NarratorURL)
	} else if ready {
		log.Info("Narrator connected", "narrator_url", cfg.NarratorURL)
	}

	return tts
}

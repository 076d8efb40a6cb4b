package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/hunt-engine/internal/services"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	storage  storage.Storage
	narrator services.NarratorService
	logger   *slog.Logger
}

func NewHealthHandler(storage storage.Storage, narrator services.NarratorService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		narrator: narrator,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	// Test storage connection
	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	// Narration is optional: an unreachable or disabled narrator never
	// degrades the service, sessions just run silent.
	ready, err := h.narrator.Ready(ctx)
	switch {
	case err != nil:
		h.logger.Warn("Narrator health check failed", "error", err)
		components["narrator"] = "unreachable"
	case !ready:
		components["narrator"] = "disabled"
	default:
		components["narrator"] = "healthy"
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "hunt-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}

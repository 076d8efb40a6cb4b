package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// HuntsHandler serves the hunt definition catalog
type HuntsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewHuntsHandler(storage storage.Storage, logger *slog.Logger) *HuntsHandler {
	return &HuntsHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for hunt definitions
// Routes:
// GET /v1/hunts        - List available hunts (name -> filename)
// GET /v1/hunts/{file} - Read a hunt definition
func (h *HuntsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for hunts endpoint", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/hunts")
	if path == "" || path == "/" {
		h.handleList(w, r)
		return
	}

	filename := strings.Trim(path, "/")
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		h.logger.Warn("Invalid hunt filename", "filename", filename)
		writeError(w, http.StatusBadRequest, "Invalid hunt filename")
		return
	}
	h.handleGet(w, r, filename)
}

func (h *HuntsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	hunts, err := h.storage.ListHunts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list hunts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list hunts")
		return
	}

	writeJSON(w, http.StatusOK, hunts)
}

func (h *HuntsHandler) handleGet(w http.ResponseWriter, r *http.Request, filename string) {
	def, err := h.storage.GetHunt(r.Context(), filename)
	if err != nil {
		if errors.Is(err, storage.ErrHuntNotFound) {
			h.logger.Warn("Hunt not found", "filename", filename)
			writeError(w, http.StatusNotFound, "Hunt not found: "+filename)
			return
		}
		h.logger.Error("Failed to load hunt", "filename", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load hunt")
		return
	}

	writeJSON(w, http.StatusOK, def)
}

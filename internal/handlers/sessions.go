package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/internal/services"
	"github.com/jwebster45206/hunt-engine/internal/services/events"
	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// SessionsHandler is the control surface for hunt sessions
type SessionsHandler struct {
	sessions *services.SessionManager
	broker   events.Broker
	logger   *slog.Logger
}

func NewSessionsHandler(sessions *services.SessionManager, broker events.Broker, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		broker:   broker,
		logger:   logger,
	}
}

// CreateSessionRequest defines the request body for starting a session
type CreateSessionRequest struct {
	Hunt string `json:"hunt"` // Required: hunt filename
}

// SubmitAnswerRequest defines the request body for answer submission
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// ConfirmRequest guards destructive session actions
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// JumpRequest defines the request body for jumping to a step
type JumpRequest struct {
	Index   int  `json:"index"`
	Confirm bool `json:"confirm"`
}

// SessionResponse pairs the session id with the current step view
type SessionResponse struct {
	ID   uuid.UUID      `json:"id"`
	View state.StepView `json:"view"`
}

// normalizeID converts a string to lowercase snake_case for consistent
// filenames. It handles spaces, hyphens and dots.
func normalizeID(s string) string {
	if s == "" {
		return ""
	}

	var out strings.Builder
	prevUnderscore := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		switch {
		case r == '.':
			out.WriteRune('.')
			prevUnderscore = false

		case r == ' ' || r == '-' || r == '_':
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}

		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out.WriteRune(r)
			prevUnderscore = false

		default:
			// Ignore other characters
		}
	}
	return out.String()
}

// ensureJSONExtension adds .json extension if not present
func ensureJSONExtension(s string) string {
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, ".json") {
		return s + ".json"
	}
	return s
}

// Normalize normalizes the hunt filename to lowercase snake_case with a
// .json extension.
func (req *CreateSessionRequest) Normalize() {
	req.Hunt = normalizeID(req.Hunt)
	req.Hunt = ensureJSONExtension(req.Hunt)
}

// ServeHTTP handles HTTP requests for hunt sessions
// Routes:
// POST /v1/sessions                   - Start a new session
// GET /v1/sessions/{id}               - Read the session's current view
// DELETE /v1/sessions/{id}            - End a session and delete its progress
// POST /v1/sessions/{id}/submit       - Submit an answer for the current step
// POST /v1/sessions/{id}/whisper      - Request a hint whisper
// POST /v1/sessions/{id}/narration    - Unlock narration
// POST /v1/sessions/{id}/reset        - Return to the first step (confirmed)
// POST /v1/sessions/{id}/jump         - Jump to a step index (confirmed)
// GET /v1/sessions/{id}/events        - Stream render directives (SSE)
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions")
	if path == "" || path == "/" {
		if r.Method != http.MethodPost {
			h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST to start a session.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch len(parts) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}

	case 2:
		action := parts[1]
		if action == "events" {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
				return
			}
			h.handleEvents(w, r, sessionID)
			return
		}
		if r.Method != http.MethodPost {
			h.logger.Warn("Method not allowed for session action", "method", r.Method, "action", action)
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Session actions use POST.")
			return
		}
		switch action {
		case "submit":
			h.handleSubmit(w, r, sessionID)
		case "whisper":
			h.handleWhisper(w, r, sessionID)
		case "narration":
			h.handleNarration(w, r, sessionID)
		case "reset":
			h.handleReset(w, r, sessionID)
		case "jump":
			h.handleJump(w, r, sessionID)
		default:
			writeError(w, http.StatusNotFound, "Unknown session action: "+action)
		}

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// getEngine resolves the session or writes the error response.
func (h *SessionsHandler) getEngine(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) *engine.Engine {
	eng, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			h.logger.Warn("Session not found", "id", sessionID.String())
			writeError(w, http.StatusNotFound, "Session not found")
			return nil
		}
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return nil
	}
	return eng
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	var req CreateSessionRequest
	if err := readJSON(r, &req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	req.Normalize()
	if req.Hunt == "" {
		h.logger.Warn("Missing required field: hunt")
		writeError(w, http.StatusBadRequest, "hunt field is required")
		return
	}

	eng, err := h.sessions.Create(r.Context(), req.Hunt)
	if err != nil {
		if errors.Is(err, storage.ErrHuntNotFound) {
			h.logger.Warn("Hunt not found", "hunt", req.Hunt)
			writeError(w, http.StatusNotFound, "Hunt not found: "+req.Hunt)
			return
		}
		h.logger.Warn("Failed to start session", "hunt", req.Hunt, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to start session: "+err.Error())
		return
	}

	h.logger.Debug("Session created successfully", "id", eng.ID().String())
	writeJSON(w, http.StatusCreated, SessionResponse{ID: eng.ID(), View: eng.View()})
}

func (h *SessionsHandler) handleRead(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{ID: eng.ID(), View: eng.View()})
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			h.logger.Warn("Session not found for delete", "id", sessionID.String())
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to delete session", "error", err, "id", sessionID.String())
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleSubmit(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	var req SubmitAnswerRequest
	if err := readJSON(r, &req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	result := eng.SubmitAnswer(req.Answer)
	writeJSON(w, http.StatusOK, result)
}

func (h *SessionsHandler) handleWhisper(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	view := eng.RequestWhisper()
	writeJSON(w, http.StatusOK, SessionResponse{ID: eng.ID(), View: view})
}

func (h *SessionsHandler) handleNarration(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	view := eng.UnlockNarration()
	writeJSON(w, http.StatusOK, SessionResponse{ID: eng.ID(), View: view})
}

func (h *SessionsHandler) handleReset(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	var req ConfirmRequest
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusConflict, "Reset requires confirmation: send {\"confirm\": true}")
		return
	}

	view := eng.Reset()
	writeJSON(w, http.StatusOK, SessionResponse{ID: eng.ID(), View: view})
}

func (h *SessionsHandler) handleJump(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID) {
	eng := h.getEngine(w, r, sessionID)
	if eng == nil {
		return
	}

	var req JumpRequest
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusConflict, "Jump requires confirmation: send {\"confirm\": true}")
		return
	}

	view := eng.JumpTo(req.Index)
	writeJSON(w, http.StatusOK, SessionResponse{ID: eng.ID(), View: view})
}

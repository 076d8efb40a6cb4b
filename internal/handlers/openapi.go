package handlers

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/hunt"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Hunt Engine API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Single-player scavenger hunt progression engine.")

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.SetDescription("Returns the health of storage and the narrator sidecar.")
	getHealth.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealth.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealth)

	// GET /v1/hunts
	listHunts, _ := r.NewOperationContext(http.MethodGet, "/v1/hunts")
	listHunts.SetSummary("List hunts")
	listHunts.SetDescription("Returns available hunt names mapped to their definition filenames.")
	listHunts.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listHunts)

	// GET /v1/hunts/{file}
	getHunt, _ := r.NewOperationContext(http.MethodGet, "/v1/hunts/{file}")
	getHunt.SetSummary("Get hunt definition")
	getHunt.SetDescription("Returns one validated hunt definition by filename.")
	getHunt.AddRespStructure(hunt.Hunt{}, openapi.WithHTTPStatus(http.StatusOK))
	getHunt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getHunt.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHunt)

	// POST /v1/sessions
	createSession, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions")
	createSession.SetSummary("Start session")
	createSession.SetDescription("Starts a new hunt session and persists its initial progress.")
	createSession.AddReqStructure(CreateSessionRequest{})
	createSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(createSession)

	// GET /v1/sessions/{id}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/v1/sessions/{id}")
	getSession.SetSummary("Get session")
	getSession.SetDescription("Returns the session's current step view, resuming it from storage if needed.")
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// DELETE /v1/sessions/{id}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/v1/sessions/{id}")
	deleteSession.SetSummary("End session")
	deleteSession.SetDescription("Closes the session and deletes its persisted progress.")
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// POST /v1/sessions/{id}/submit
	submitAnswer, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions/{id}/submit")
	submitAnswer.SetSummary("Submit answer")
	submitAnswer.SetDescription("Evaluates an answer against the current step. A correct answer opens a timed reveal; on the final step submissions become whisper requests.")
	submitAnswer.AddReqStructure(SubmitAnswerRequest{})
	submitAnswer.AddRespStructure(engine.SubmitResult{}, openapi.WithHTTPStatus(http.StatusOK))
	submitAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	submitAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(submitAnswer)

	// POST /v1/sessions/{id}/whisper
	whisper, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions/{id}/whisper")
	whisper.SetSummary("Request whisper")
	whisper.SetDescription("Narrates a hint whisper for the current step. A no-op while narration is locked.")
	whisper.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	whisper.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(whisper)

	// POST /v1/sessions/{id}/narration
	narration, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions/{id}/narration")
	narration.SetSummary("Unlock narration")
	narration.SetDescription("Flips the one-way narration consent flag and plays the onboarding line.")
	narration.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	narration.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(narration)

	// POST /v1/sessions/{id}/reset
	reset, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions/{id}/reset")
	reset.SetSummary("Reset session")
	reset.SetDescription("Returns the session to the first step. Requires confirmation.")
	reset.AddReqStructure(ConfirmRequest{})
	reset.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	reset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	reset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(reset)

	// POST /v1/sessions/{id}/jump
	jump, _ := r.NewOperationContext(http.MethodPost, "/v1/sessions/{id}/jump")
	jump.SetSummary("Jump to step")
	jump.SetDescription("Moves the session to a step index, clamped to the hunt. Requires confirmation.")
	jump.AddReqStructure(JumpRequest{})
	jump.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	jump.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	jump.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(jump)

	// GET /v1/sessions/{id}/events
	sessionEvents, _ := r.NewOperationContext(http.MethodGet, "/v1/sessions/{id}/events")
	sessionEvents.SetSummary("SSE event stream")
	sessionEvents.SetDescription("Server-Sent Events stream of render directives: reveal.opened, reveal.closed, step.advanced, session.reset, session.jumped.")
	sessionEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	sessionEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(sessionEvents)

	return r.Spec
}

// HandleOpenAPI serves the OpenAPI document, reflected once at startup
func HandleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// Docs serves the interactive API documentation UI
func Docs() http.Handler {
	return v5emb.New("Hunt Engine API", "/openapi.json", "/docs")
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleOpenAPI(t *testing.T) {
	h := HandleOpenAPI()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	body := rec.Body.String()
	for _, path := range []string{
		`"/health"`,
		`"/v1/hunts"`,
		`"/v1/hunts/{file}"`,
		`"/v1/sessions"`,
		`"/v1/sessions/{id}"`,
		`"/v1/sessions/{id}/submit"`,
		`"/v1/sessions/{id}/reset"`,
		`"/v1/sessions/{id}/events"`,
	} {
		if !strings.Contains(body, path) {
			t.Errorf("body missing %s path", path)
		}
	}
	if !strings.Contains(body, "text/event-stream") {
		t.Errorf("body missing event-stream content type")
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

func TestHuntsHandler_List(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddHunt("test_hunt.json", testHunt())
	handler := NewHuntsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/hunts", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var hunts map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&hunts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if hunts["Test Hunt"] != "test_hunt.json" {
		t.Errorf("Expected Test Hunt -> test_hunt.json, got %v", hunts)
	}
}

func TestHuntsHandler_Get(t *testing.T) {
	store := storage.NewMockStorage()
	store.AddHunt("test_hunt.json", testHunt())
	handler := NewHuntsHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/hunts/test_hunt.json", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var def hunt.Hunt
	if err := json.NewDecoder(rr.Body).Decode(&def); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if def.Name != "Test Hunt" {
		t.Errorf("Expected hunt name Test Hunt, got %q", def.Name)
	}
	if len(def.Steps) != 3 {
		t.Errorf("Expected 3 steps, got %d", len(def.Steps))
	}
}

func TestHuntsHandler_GetNotFound(t *testing.T) {
	handler := NewHuntsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/hunts/missing_hunt.json", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestHuntsHandler_RejectsTraversal(t *testing.T) {
	handler := NewHuntsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/hunts/secret", nil)
	req.URL.Path = "/v1/hunts/../secret.json"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestHuntsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHuntsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/hunts", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/hunt-engine/internal/services"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func readyNarrator() *services.MockNarrator {
	n := services.NewMockNarrator()
	n.ReadyFunc = func(ctx context.Context) (bool, error) {
		return true, nil
	}
	return n
}

func TestHealthHandler_Healthy(t *testing.T) {
	store := storage.NewMockStorage()
	handler := NewHealthHandler(store, readyNarrator(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	var response HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", response.Status)
	}
	if response.Service != "hunt-engine" {
		t.Errorf("Expected service hunt-engine, got %q", response.Service)
	}
	if response.Components["storage"] != "healthy" {
		t.Errorf("Expected healthy storage component, got %v", response.Components["storage"])
	}
	if response.Components["narrator"] != "healthy" {
		t.Errorf("Expected healthy narrator component, got %v", response.Components["narrator"])
	}
}

func TestHealthHandler_StorageDownDegradesService(t *testing.T) {
	store := storage.NewMockStorage()
	store.SetPingError(errors.New("connection refused"))
	handler := NewHealthHandler(store, readyNarrator(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Status != "degraded" {
		t.Errorf("Expected degraded status, got %q", response.Status)
	}
	if response.Components["storage"] != "unhealthy" {
		t.Errorf("Expected unhealthy storage component, got %v", response.Components["storage"])
	}
}

func TestHealthHandler_NarratorNeverDegradesService(t *testing.T) {
	tests := []struct {
		name      string
		readyFunc func(ctx context.Context) (bool, error)
		expected  string
	}{
		{
			name: "unreachable narrator",
			readyFunc: func(ctx context.Context) (bool, error) {
				return false, errors.New("dial tcp: connection refused")
			},
			expected: "unreachable",
		},
		{
			name: "disabled narrator",
			readyFunc: func(ctx context.Context) (bool, error) {
				return false, nil
			},
			expected: "disabled",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			narrator := services.NewMockNarrator()
			narrator.ReadyFunc = tc.readyFunc
			handler := NewHealthHandler(storage.NewMockStorage(), narrator, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", rr.Code)
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != "healthy" {
				t.Errorf("Expected healthy status, got %q", response.Status)
			}
			if response.Components["narrator"] != tc.expected {
				t.Errorf("Expected narrator component %q, got %v", tc.expected, response.Components["narrator"])
			}
		})
	}
}

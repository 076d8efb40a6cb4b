package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

const (
	// PollInterval is how often to check the session for updates
	PollInterval = 250 * time.Millisecond
	// AdvanceTimeout is max time to wait for a scheduled advance to land.
	// The default advance dwell is under 4s; this leaves generous slack.
	AdvanceTimeout = 15 * time.Second
)

// Session is the API's session envelope.
type Session struct {
	ID   uuid.UUID      `json:"id"`
	View state.StepView `json:"view"`
}

// PostSubmit submits an answer and returns the synchronous result.
// Advancement is NOT reflected yet: a correct answer opens the reveal
// and schedules the index change for after the advance dwell.
func PostSubmit(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, answer string) (*engine.SubmitResult, error) {
	reqBody, err := json.Marshal(map[string]string{"answer": answer})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submit request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/submit", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send submit request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("submit endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var result engine.SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}

	return &result, nil
}

// GetSession retrieves the current session view
func GetSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*Session, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &session, nil
}

// PollForAdvance polls the session until the step index moves past
// fromIndex, i.e. until the reveal choreography has finished and the
// scheduled advancement landed.
func PollForAdvance(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, fromIndex int) (*Session, error) {
	timeout := time.After(AdvanceTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for step advance past index %d (waited %v)", fromIndex, AdvanceTimeout)
		case <-ticker.C:
			session, err := GetSession(ctx, client, baseURL, sessionID)
			if err != nil {
				// Log error but continue polling
				continue
			}

			if session.View.StepIndex > fromIndex {
				return session, nil
			}
		}
	}
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TTSService implements NarratorService against a local text-to-speech
// sidecar. The sidecar exposes GET /v1/voices and POST /v1/speak; speak
// returns once playback has finished, so one in-flight request equals
// one audible utterance.
type TTSService struct {
	baseURL    string
	voiceHints []string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	voice string // resolved voice id, cached after the first lookup
}

// TTSVoice describes one voice offered by the speech backend
type TTSVoice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale,omitempty"`
}

type ttsVoicesResponse struct {
	Voices []TTSVoice `json:"voices"`
}

// NewTTSService creates a new TTS narrator service. Voice hints are
// matched against the backend's voice list in priority order; no match
// leaves voice selection to the backend.
func NewTTSService(baseURL string, voiceHints []string, logger *slog.Logger) *TTSService {
	return &TTSService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		voiceHints: voiceHints,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ready checks that the backend answers the voice listing
func (t *TTSService) Ready(ctx context.Context) (bool, error) {
	if _, err := t.listVoices(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Speak synthesizes and plays one utterance. The voice is resolved from
// the configured hints on first use and cached.
func (t *TTSService) Speak(ctx context.Context, u Utterance) error {
	if u.Voice == "" {
		u.Voice = t.resolveVoice(ctx)
	}

	reqBody, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal speak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v1/speak", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("speak request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (t *TTSService) listVoices(ctx context.Context) ([]TTSVoice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var voicesResp ttsVoicesResponse
	if err := json.Unmarshal(body, &voicesResp); err != nil {
		return nil, fmt.Errorf("failed to parse voices response: %w", err)
	}

	return voicesResp.Voices, nil
}

// resolveVoice picks the first voice matching the highest-priority hint.
// Hints match case-insensitively against voice id, name and locale. An
// empty result means the backend chooses its own default.
func (t *TTSService) resolveVoice(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.voice != "" {
		return t.voice
	}

	voices, err := t.listVoices(ctx)
	if err != nil {
		t.logger.Warn("Failed to list voices, using backend default", "error", err)
		return ""
	}

	for _, hint := range t.voiceHints {
		hint = strings.ToLower(strings.TrimSpace(hint))
		if hint == "" {
			continue
		}
		for _, v := range voices {
			if strings.Contains(strings.ToLower(v.ID), hint) ||
				strings.Contains(strings.ToLower(v.Name), hint) ||
				strings.Contains(strings.ToLower(v.Locale), hint) {
				t.voice = v.ID
				t.logger.Info("Narrator voice selected", "voice", v.ID, "hint", hint)
				return t.voice
			}
		}
	}

	t.logger.Debug("No voice hint matched, using backend default", "hints", t.voiceHints)
	return ""
}

package services

import (
	"context"
	"sync"
)

// MockNarrator is a mock implementation of NarratorService for testing
type MockNarrator struct {
	SpeakFunc func(ctx context.Context, u Utterance) error
	ReadyFunc func(ctx context.Context) (bool, error)

	// Track calls for testing
	SpeakCalls []Utterance
	ReadyCalls int

	mu sync.Mutex // protects all fields above
}

// Ensure MockNarrator implements NarratorService interface
var _ NarratorService = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator service
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		SpeakCalls: make([]Utterance, 0),
	}
}

// Speak mocks speech playback
func (m *MockNarrator) Speak(ctx context.Context, u Utterance) error {
	m.mu.Lock()
	m.SpeakCalls = append(m.SpeakCalls, u)
	fn := m.SpeakFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, u)
	}

	// Default behavior - success
	return nil
}

// Ready mocks the readiness check
func (m *MockNarrator) Ready(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.ReadyCalls++
	fn := m.ReadyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}

	// Default behavior - ready
	return true, nil
}

// Spoken returns a copy of the recorded utterances
func (m *MockNarrator) Spoken() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.SpeakCalls))
	copy(out, m.SpeakCalls)
	return out
}

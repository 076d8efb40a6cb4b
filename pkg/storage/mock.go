package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu          sync.RWMutex
	progress    map[uuid.UUID]*state.Progress
	hunts       map[string]*hunt.Hunt
	pingError   error
	saveError   error
	loadError   error
	deleteError error
	saveCount   int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		progress: make(map[uuid.UUID]*state.Progress),
		hunts:    make(map[string]*hunt.Hunt),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveProgress with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetLoadError configures the mock to fail on LoadProgress with the given error
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// SetDeleteError configures the mock to fail on DeleteProgress with the given error
func (m *MockStorage) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	// Mock close doesn't need to do anything
	return nil
}

// SaveProgress mocks saving session progress
func (m *MockStorage) SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error {
	if p == nil {
		return errors.New("progress cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCount++
	if m.saveError != nil {
		return m.saveError
	}
	cp := *p
	m.progress[id] = &cp
	return nil
}

// LoadProgress mocks loading session progress
func (m *MockStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*state.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	p, exists := m.progress[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	cp := *p
	return &cp, nil
}

// DeleteProgress mocks deleting session progress
func (m *MockStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.progress, id)
	return nil
}

// SaveCount returns how many times SaveProgress was called,
// including calls that failed with an injected error.
func (m *MockStorage) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCount
}

// ListHunts mocks listing hunt definitions
func (m *MockStorage) ListHunts(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Build map of hunt names to filenames
	result := make(map[string]string)
	for filename, h := range m.hunts {
		result[h.Name] = filename
	}
	return result, nil
}

// GetHunt mocks getting a hunt definition by filename
func (m *MockStorage) GetHunt(ctx context.Context, filename string) (*hunt.Hunt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, exists := m.hunts[filename]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrHuntNotFound, filename)
	}
	return h, nil
}

// AddHunt adds a hunt definition to the mock storage (for testing)
func (m *MockStorage) AddHunt(filename string, h *hunt.Hunt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hunts[filename] = h
}

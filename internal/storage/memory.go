package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// MemoryStorage implements the Storage interface with an in-process map.
// It is the default backend and the fallback when a durable backend is
// unreachable at startup. Progress does not survive a restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	progress map[uuid.UUID]*state.Progress
	huntDir
}

// Ensure MemoryStorage implements Storage interface
var _ storage.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage instance
func NewMemoryStorage(dataDir string, logger *slog.Logger) *MemoryStorage {
	return &MemoryStorage{
		progress: make(map[uuid.UUID]*state.Progress),
		huntDir:  newHuntDir(dataDir, logger),
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// Progress operations. Records are stored and returned as copies so a
// caller mutating its pointer never changes what a later load sees.

func (m *MemoryStorage) SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error {
	if p == nil {
		return errors.New("progress cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.progress[id] = &cp
	return nil
}

func (m *MemoryStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*state.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.progress[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.progress, id)
	return nil
}

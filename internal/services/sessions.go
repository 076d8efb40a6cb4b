package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/internal/services/events"
	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

// ErrSessionNotFound is returned when no live engine and no persisted
// progress exists for a session id
var ErrSessionNotFound = errors.New("session not found")

// SessionConfig carries the defaults applied to every session's engine
// and speaker.
type SessionConfig struct {
	OverlayDwell time.Duration
	AdvanceDwell time.Duration
	Utterance    Utterance // narrator delivery defaults: voice, rate, pitch, volume
}

// SessionManager owns the live engines. Each session gets one engine,
// one speaker and one event relay; sessions are resumed from persisted
// progress on first access after a restart.
type SessionManager struct {
	store    storage.Storage
	narrator NarratorService
	broker   events.Broker
	cfg      SessionConfig
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	closed   bool
}

type session struct {
	engine  *engine.Engine
	speaker *Speaker
}

// NewSessionManager creates a new session manager
func NewSessionManager(store storage.Storage, narrator NarratorService, broker events.Broker, cfg SessionConfig, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		store:    store,
		narrator: narrator,
		broker:   broker,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Create starts a fresh session on the named hunt and persists its
// initial progress.
func (m *SessionManager) Create(ctx context.Context, huntFile string) (*engine.Engine, error) {
	h, err := m.store.GetHunt(ctx, huntFile)
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("session manager is closed")
	}
	eng, err := m.buildLocked(id, h, nil)
	if err != nil {
		return nil, err
	}

	// Persist the fresh session so it resolves after a restart. Failure
	// is logged, not returned: durability is best-effort.
	snapshot := eng.Progress()
	if err := m.store.SaveProgress(ctx, id, &snapshot); err != nil {
		m.logger.Warn("Failed to persist new session", "session", id, "error", err)
	}

	m.logger.Info("Session created", "session", id, "hunt", huntFile)
	return eng, nil
}

// Get returns the live engine for a session, resuming it from persisted
// progress if needed.
func (m *SessionManager) Get(ctx context.Context, id uuid.UUID) (*engine.Engine, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s.engine, nil
	}
	m.mu.Unlock()

	p, err := m.store.LoadProgress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if p == nil {
		return nil, ErrSessionNotFound
	}

	h, err := m.store.GetHunt(ctx, p.HuntFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load hunt %s for session: %w", p.HuntFile, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("session manager is closed")
	}
	// Another request may have resumed the session while we were loading.
	if s, ok := m.sessions[id]; ok {
		return s.engine, nil
	}

	eng, err := m.buildLocked(id, h, p)
	if err != nil {
		return nil, err
	}
	m.logger.Info("Session resumed", "session", id, "hunt", p.HuntFile, "step_index", p.StepIndex)
	return eng, nil
}

// Delete closes the session and removes its persisted progress.
func (m *SessionManager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.engine.Close()
		s.speaker.Close()
	} else {
		p, err := m.store.LoadProgress(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		if p == nil {
			return ErrSessionNotFound
		}
	}

	if err := m.store.DeleteProgress(ctx, id); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	m.logger.Info("Session deleted", "session", id)
	return nil
}

// Close shuts down all live sessions. In-flight reveal timers are
// discarded and in-flight narration is cancelled.
func (m *SessionManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*session)
	m.mu.Unlock()

	for id, s := range sessions {
		s.engine.Close()
		s.speaker.Close()
		m.logger.Debug("Session closed", "session", id)
	}
}

// buildLocked wires one engine with its speaker and event relay. The
// caller holds the manager lock.
func (m *SessionManager) buildLocked(id uuid.UUID, h *hunt.Hunt, p *state.Progress) (*engine.Engine, error) {
	speaker := NewSpeaker(m.narrator, m.cfg.Utterance, m.logger)
	eng, err := engine.New(id, engine.Config{
		Hunt:         h,
		Progress:     p,
		Store:        m.store,
		Narrator:     speaker,
		Sink:         events.NewRevealRelay(m.broker, id, m.logger),
		Logger:       m.logger,
		OverlayDwell: m.cfg.OverlayDwell,
		AdvanceDwell: m.cfg.AdvanceDwell,
	})
	if err != nil {
		speaker.Close()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	m.sessions[id] = &session{engine: eng, speaker: speaker}
	return eng, nil
}

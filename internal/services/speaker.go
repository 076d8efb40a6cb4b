package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Speaker adapts a NarratorService to the engine's fire-and-forget
// narration port. Each Narrate call supersedes the previous one: the
// in-flight utterance is cancelled so at most one line is audible at a
// time. Failures are logged and dropped; narration never blocks or
// fails progression.
type Speaker struct {
	narrator NarratorService
	opts     Utterance // delivery defaults: voice, rate, pitch, volume
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewSpeaker creates a speaker for one session
func NewSpeaker(narrator NarratorService, opts Utterance, logger *slog.Logger) *Speaker {
	return &Speaker{
		narrator: narrator,
		opts:     opts,
		logger:   logger,
	}
}

// Narrate requests playback of one line and returns immediately
func (s *Speaker) Narrate(line string) {
	if line == "" {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		// Supersede: a newer line always wins over a playing one.
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	u := s.opts
	u.Text = line

	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := s.narrator.Speak(ctx, u); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("Narration dropped", "error", err)
		}
	}()
}

// Close cancels any in-flight utterance and waits for its goroutine to
// drain. Subsequent Narrate calls are no-ops.
func (s *Speaker) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

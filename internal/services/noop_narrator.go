package services

import "context"

// NoopNarrator is the narrator used when no speech backend is
// configured. Every utterance is accepted and discarded.
type NoopNarrator struct{}

// Ensure NoopNarrator implements NarratorService interface
var _ NarratorService = (*NoopNarrator)(nil)

// NewNoopNarrator creates a narrator that discards all utterances
func NewNoopNarrator() *NoopNarrator {
	return &NoopNarrator{}
}

// Speak discards the utterance
func (n *NoopNarrator) Speak(ctx context.Context, u Utterance) error {
	return nil
}

// Ready reports false so health output shows narration as disabled
func (n *NoopNarrator) Ready(ctx context.Context) (bool, error) {
	return false, nil
}

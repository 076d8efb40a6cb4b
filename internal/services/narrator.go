package services

import (
	"context"
)

// Utterance is one narration request: the line to speak plus delivery
// parameters. Zero-valued parameters mean backend defaults.
type Utterance struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// NarratorService defines the interface for the speech backend
type NarratorService interface {
	// Speak synthesizes and plays a single utterance. It blocks until
	// playback finishes or the context is cancelled; cancelling stops
	// playback.
	Speak(ctx context.Context, u Utterance) error

	// Ready checks if the speech backend is reachable and has a usable voice
	Ready(ctx context.Context) (bool, error)
}

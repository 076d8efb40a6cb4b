package engine

import "github.com/jwebster45206/hunt-engine/pkg/state"

// Phase is the engine's position in the reveal cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"      // waiting for a submission
	PhaseRevealing Phase = "revealing" // overlay open, advancement scheduled
)

// Outcome classifies the engine's response to an answer submission.
type Outcome string

const (
	OutcomeAdvanced Outcome = "advanced" // correct answer, reveal opened
	OutcomeRejected Outcome = "rejected" // wrong answer, shake cue
	OutcomeIgnored  Outcome = "ignored"  // not evaluated: a reveal is in progress or the session is closed
	OutcomeWhisper  Outcome = "whisper"  // terminal step, submission became a whisper request
)

// SubmitResult is the synchronous response to an answer submission.
// Reveal and the dwells are set only on OutcomeAdvanced, so clients
// can mirror the overlay countdown.
type SubmitResult struct {
	Outcome        Outcome              `json:"outcome"`
	View           state.StepView       `json:"view"`
	Reveal         *state.RevealPayload `json:"reveal,omitempty"`
	OverlayDwellMS int64                `json:"overlay_dwell_ms,omitempty"`
	AdvanceDwellMS int64                `json:"advance_dwell_ms,omitempty"`
}

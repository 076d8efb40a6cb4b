package narration

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
)

// Selector picks narration lines for hunt events. Picks are uniform
// within a pool; the rand source is injected so tests can pin
// outcomes.
type Selector struct {
	hunt        *hunt.Hunt
	onboarding  []string
	wrongAnswer []string
	reveal      []string
	whisper     []string
	rng         *rand.Rand
}

// NewSelector builds a selector for a hunt, filling empty narration
// categories from the built-in defaults. A nil rng falls back to a
// time-seeded source. Construction fails when the hunt's narration
// content is invalid or a category ends up with no candidates.
func NewSelector(h *hunt.Hunt, rng *rand.Rand) (*Selector, error) {
	if h == nil {
		return nil, errors.New("hunt is required")
	}
	if err := h.Narration.Validate(h.Steps); err != nil {
		return nil, fmt.Errorf("invalid narration content: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Selector{
		hunt:        h,
		onboarding:  orDefault(h.Narration.Onboarding, defaultOnboarding),
		wrongAnswer: orDefault(h.Narration.WrongAnswer, defaultWrongAnswer),
		reveal:      orDefault(h.Narration.Reveal, defaultReveal),
		whisper:     orDefault(h.Narration.Whisper, defaultWhisper),
		rng:         rng,
	}
	for name, pool := range map[string][]string{
		"onboarding":   s.onboarding,
		"wrong_answer": s.wrongAnswer,
		"reveal":       s.reveal,
		"whisper":      s.whisper,
	} {
		if len(pool) == 0 {
			return nil, fmt.Errorf("narration pool %q is empty", name)
		}
	}
	return s, nil
}

func orDefault(pool, fallback []string) []string {
	if len(pool) > 0 {
		return pool
	}
	return fallback
}

func (s *Selector) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	if len(pool) == 1 {
		return pool[0]
	}
	return pool[s.rng.Intn(len(pool))]
}

// Onboarding returns the line played when narration is first unlocked.
func (s *Selector) Onboarding() string {
	return s.pick(s.onboarding)
}

// WrongAnswer returns a line for a rejected submission.
func (s *Selector) WrongAnswer() string {
	return s.pick(s.wrongAnswer)
}

// StepFlavor returns the flavor line for a step: the step's own
// narrated line when it has one, otherwise a generic reveal line.
func (s *Selector) StepFlavor(stepID int) string {
	if step, ok := s.hunt.StepByID(stepID); ok && step.NarratedLine != "" {
		return step.NarratedLine
	}
	return s.pick(s.reveal)
}

// RevealTransition returns the line narrated when a reveal opens
// toward the step with the given id. A beat pinned to the step always
// wins. Otherwise a non-empty direction pool matching the zone
// transition fully replaces the generic pool.
func (s *Selector) RevealTransition(stepID int, from, to hunt.Group) string {
	if line, ok := s.hunt.Narration.BeatLine(stepID); ok {
		return line
	}
	if lines := s.hunt.Narration.TransitionLines(from, to); len(lines) > 0 {
		return s.pick(lines)
	}
	return s.pick(s.reveal)
}

// Whisper returns a hint whisper for a step. The step's own narrated
// line is always eligible alongside the whisper pool.
func (s *Selector) Whisper(stepID int) string {
	pool := s.whisper
	if step, ok := s.hunt.StepByID(stepID); ok && step.NarratedLine != "" {
		merged := make([]string, 0, len(pool)+1)
		merged = append(merged, pool...)
		merged = append(merged, step.NarratedLine)
		pool = merged
	}
	return s.pick(pool)
}

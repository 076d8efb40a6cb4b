package hunt

import (
	"errors"
	"fmt"
)

// TransitionPool holds reveal lines for movement between two zone
// groups. GroupAny acts as a wildcard on either side. A non-empty pool
// that matches a transition fully replaces the generic reveal pool for
// that transition.
type TransitionPool struct {
	From  Group    `json:"from"`  // origin group, or "any"
	To    Group    `json:"to"`    // destination group, or "any"
	Lines []string `json:"lines"` // candidate lines, uniform pick
}

// Beat pins a step to a fixed reveal line. Beats mark scripted moments
// of the hunt and always win over pool selection.
type Beat struct {
	StepID int    `json:"step_id"`
	Line   string `json:"line"`
}

// NarrationSet is the narration content of a hunt definition. Empty
// categories fall back to the engine's built-in lines at selector
// construction.
type NarrationSet struct {
	Onboarding  []string         `json:"onboarding,omitempty"`   // played when narration is first unlocked
	WrongAnswer []string         `json:"wrong_answer,omitempty"` // played on a rejected submission
	Reveal      []string         `json:"reveal,omitempty"`       // generic reveal transition lines
	Whisper     []string         `json:"whisper,omitempty"`      // hint whispers, incl. terminal-step submissions
	Transitions []TransitionPool `json:"transitions,omitempty"`  // direction-specific reveal pools
	Beats       []Beat           `json:"beats,omitempty"`        // fixed lines for scripted steps
}

// Validate checks the narration content against the hunt's steps:
// transition pools must name valid groups and carry at least one line,
// and beats must reference existing steps with non-empty lines.
func (n *NarrationSet) Validate(steps []Step) error {
	var errs []error
	for i, tp := range n.Transitions {
		if !tp.From.Valid() && tp.From != GroupAny && tp.From != GroupUnknown {
			errs = append(errs, fmt.Errorf("transition %d: invalid from group %q", i, tp.From))
		}
		if !tp.To.Valid() && tp.To != GroupAny && tp.To != GroupUnknown {
			errs = append(errs, fmt.Errorf("transition %d: invalid to group %q", i, tp.To))
		}
		if len(tp.Lines) == 0 {
			errs = append(errs, fmt.Errorf("transition %d (%s to %s): no lines", i, tp.From, tp.To))
		}
	}
	ids := make(map[int]bool, len(steps))
	for _, s := range steps {
		ids[s.ID] = true
	}
	for i, b := range n.Beats {
		if !ids[b.StepID] {
			errs = append(errs, fmt.Errorf("beat %d: step id %d does not exist", i, b.StepID))
		}
		if b.Line == "" {
			errs = append(errs, fmt.Errorf("beat %d (step %d): empty line", i, b.StepID))
		}
	}
	return errors.Join(errs...)
}

// BeatLine returns the fixed line pinned to a step, if any.
func (n *NarrationSet) BeatLine(stepID int) (string, bool) {
	for _, b := range n.Beats {
		if b.StepID == stepID {
			return b.Line, true
		}
	}
	return "", false
}

// TransitionLines returns the most specific non-empty pool matching a
// group transition. Exact matches outrank wildcards; ties keep
// definition order.
func (n *NarrationSet) TransitionLines(from, to Group) []string {
	var best []string
	bestScore := -1
	for _, tp := range n.Transitions {
		if len(tp.Lines) == 0 || !from.matches(tp.From) || !to.matches(tp.To) {
			continue
		}
		score := 0
		if tp.From != GroupAny {
			score += 2
		}
		if tp.To != GroupAny {
			score++
		}
		if score > bestScore {
			best = tp.Lines
			bestScore = score
		}
	}
	return best
}

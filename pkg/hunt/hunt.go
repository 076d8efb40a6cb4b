package hunt

import (
	"errors"
	"fmt"
)

// Step is one riddle of a hunt. Steps are immutable at runtime.
type Step struct {
	ID           int    `json:"id"`                      // 1-based, unique, strictly increasing in hunt order
	LocationID   string `json:"location_id"`             // key into the hunt's location namespace
	Title        string `json:"title"`                   // short display title
	Riddle       string `json:"riddle"`                  // the riddle text shown to the player
	LocationHint string `json:"location_hint,omitempty"` // nudge toward the physical location
	Answer       string `json:"answer"`                  // expected code word, compared after normalization
	NarratedLine string `json:"narrated_line,omitempty"` // step-specific flavor line for the narrator
}

// Location is a named place in the hunt's location namespace.
type Location struct {
	Name  string `json:"name"`
	Group Group  `json:"group"`
}

// Hunt is a complete hunt definition, loaded from JSON and never
// mutated at runtime. Steps form the linear progression; Locations
// classify step locations into zone groups.
type Hunt struct {
	Name              string              `json:"name"`
	FileName          string              `json:"file_name"`               // file the hunt was loaded from
	Steps             []Step              `json:"steps"`
	Locations         map[string]Location `json:"locations"`
	OutdoorUnlockStep int                 `json:"outdoor_unlock_step,omitempty"` // step id that unlocks the outdoor map phase; 0 = never
	Narration         NarrationSet        `json:"narration,omitempty"`
}

// StepCount returns the number of steps in the hunt.
func (h *Hunt) StepCount() int {
	return len(h.Steps)
}

// ClampIndex clamps a step index into the valid range for this hunt.
// Out-of-range values come from stale persisted progress after a hunt
// definition shrank; they are never an error.
func (h *Hunt) ClampIndex(i int) int {
	if len(h.Steps) == 0 || i < 0 {
		return 0
	}
	if i >= len(h.Steps) {
		return len(h.Steps) - 1
	}
	return i
}

// StepAt returns the step at the clamped index.
func (h *Hunt) StepAt(i int) Step {
	if len(h.Steps) == 0 {
		return Step{}
	}
	return h.Steps[h.ClampIndex(i)]
}

// StepByID returns the step with the given id.
func (h *Hunt) StepByID(id int) (Step, bool) {
	for _, s := range h.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// IsTerminal reports whether the clamped index is the final step.
func (h *Hunt) IsTerminal(i int) bool {
	return len(h.Steps) > 0 && h.ClampIndex(i) == len(h.Steps)-1
}

// CurrentLocation returns the location id of the step at the clamped
// index.
func (h *Hunt) CurrentLocation(stepIndex int) string {
	return h.StepAt(stepIndex).LocationID
}

// VisitedLocations returns the location ids of steps 0 through upto
// (inclusive, clamped), de-duplicated by first occurrence with step
// order preserved.
func (h *Hunt) VisitedLocations(upto int) []string {
	if len(h.Steps) == 0 {
		return []string{}
	}
	upto = h.ClampIndex(upto)
	seen := make(map[string]bool, upto+1)
	visited := make([]string, 0, upto+1)
	for i := 0; i <= upto; i++ {
		id := h.Steps[i].LocationID
		if seen[id] {
			continue
		}
		seen[id] = true
		visited = append(visited, id)
	}
	return visited
}

// LocationGroup classifies a location id into its zone group. Ids
// missing from the namespace, and ids with an invalid group, classify
// to GroupUnknown.
func (h *Hunt) LocationGroup(id string) Group {
	if loc, ok := h.Locations[id]; ok && loc.Group.Valid() {
		return loc.Group
	}
	return GroupUnknown
}

// OutdoorUnlocked reports whether reaching the step with the given id
// unlocks the outdoor phase of the map.
func (h *Hunt) OutdoorUnlocked(stepID int) bool {
	return h.OutdoorUnlockStep > 0 && stepID >= h.OutdoorUnlockStep
}

// Validate checks the structural invariants of a hunt definition and
// returns every violation joined into one error. Location ids that are
// missing from the namespace are tolerated here (they classify to
// GroupUnknown at runtime); the validate command flags them for
// authors.
func (h *Hunt) Validate() error {
	var errs []error
	if h.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(h.Steps) == 0 {
		errs = append(errs, errors.New("at least one step is required"))
	}
	prevID := 0
	for i, s := range h.Steps {
		if s.ID < 1 {
			errs = append(errs, fmt.Errorf("step %d: id must be 1 or greater, got %d", i, s.ID))
		} else if s.ID <= prevID {
			errs = append(errs, fmt.Errorf("step %d: id %d must be greater than previous id %d", i, s.ID, prevID))
		}
		prevID = s.ID
		if s.LocationID == "" {
			errs = append(errs, fmt.Errorf("step %d: location_id is required", i))
		}
		if s.Riddle == "" {
			errs = append(errs, fmt.Errorf("step %d: riddle is required", i))
		}
		if Normalize(s.Answer) == "" {
			errs = append(errs, fmt.Errorf("step %d: answer is empty after normalization", i))
		}
	}
	for id, loc := range h.Locations {
		if !loc.Group.Valid() {
			errs = append(errs, fmt.Errorf("location %q: invalid group %q", id, loc.Group))
		}
	}
	if h.OutdoorUnlockStep < 0 {
		errs = append(errs, fmt.Errorf("outdoor_unlock_step must not be negative, got %d", h.OutdoorUnlockStep))
	} else if h.OutdoorUnlockStep > prevID {
		errs = append(errs, fmt.Errorf("outdoor_unlock_step %d is beyond the last step id %d", h.OutdoorUnlockStep, prevID))
	}
	if err := h.Narration.Validate(h.Steps); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

package state

// RevealPayload is the render directive handed to the map renderer
// when a reveal opens. It is computed from the pre-advance position but
// already includes the destination step's location in the visited set,
// so the map can show where the player is headed while the overlay is
// up. Never persisted.
type RevealPayload struct {
	CurrentLocationID  string   `json:"current_location_id"`  // where the player is being directed
	VisitedLocationIDs []string `json:"visited_location_ids"` // first-occurrence order, destination included
	TerminalUnlock     bool     `json:"terminal_unlock"`      // outdoor map phase unlocked
}

// StepView is the read-only projection of the current step for
// clients. All fields derive from the hunt definition and the clamped
// step index.
type StepView struct {
	Hunt              string  `json:"hunt"`      // hunt display name
	HuntFile          string  `json:"hunt_file"` // definition filename, resolvable via the hunts endpoint
	StepID            int     `json:"step_id"`
	StepIndex         int     `json:"step_index"`
	StepCount         int     `json:"step_count"`
	Title             string  `json:"title"`
	Riddle            string  `json:"riddle"`
	LocationHint      string  `json:"location_hint,omitempty"`
	LocationID        string  `json:"location_id"`
	ProgressFraction  float64 `json:"progress_fraction"` // 0 at the first step, 1 at the terminal step
	IsTerminal        bool    `json:"is_terminal"`
	NarrationUnlocked bool    `json:"narration_unlocked"`
}

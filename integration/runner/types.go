package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions. A step with no action submits its answer.
const (
	ActionSubmit    = "submit"
	ActionReset     = "reset"
	ActionJump      = "jump"
	ActionWhisper   = "whisper"
	ActionNarration = "narration"
)

// TestSuite defines a scripted playthrough against a running hunt-engine API.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Hunt  string     `json:"hunt,omitempty"`  // hunt definition file for regular tests
	Steps []TestStep `json:"steps,omitempty"` // used for regular tests
	Cases []string   `json:"cases,omitempty"` // used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single player interaction and its expected outcomes.
type TestStep struct {
	Name   string `json:"name,omitempty"`
	Action string `json:"action,omitempty"` // submit (default), reset, jump, whisper, narration
	Answer string `json:"answer,omitempty"` // submitted text for submit steps
	Index  int    `json:"index,omitempty"`  // target step index for jump steps

	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes.
// Outcome and the reveal fields are checked against the submit
// response; the view fields are checked after any scheduled
// advancement has settled.
type Expectations struct {
	Outcome *string `json:"outcome,omitempty"` // advanced, rejected, ignored, whisper

	// StepView properties - aligned with pkg/state/view.go
	StepID            *int    `json:"step_id,omitempty"`
	StepIndex         *int    `json:"step_index,omitempty"`
	LocationID        *string `json:"location_id,omitempty"`
	IsTerminal        *bool   `json:"is_terminal,omitempty"`
	NarrationUnlocked *bool   `json:"narration_unlocked,omitempty"`

	// Reveal payload properties (submit steps that advance)
	RevealDestination    *string  `json:"reveal_destination,omitempty"`
	RevealVisited        []string `json:"reveal_visited,omitempty"` // exact order
	RevealTerminalUnlock *bool    `json:"reveal_terminal_unlock,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName  string
	StepName  string
	Success   bool
	Error     error
	Duration  time.Duration
	Outcome   string
	IsControl bool // true for reset/jump steps (operator actions, not play)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // ID of the session used for this test
}

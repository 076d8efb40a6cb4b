package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/engine"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running hunt-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	// If this is not a sequence, return it as-is
	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	// This is a sequence - load all referenced cases
	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against a fresh session.
// The session is deleted at the end so repeated runs start clean.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	session, err := r.createSession(ctx, suite.Hunt)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = session.ID

	defer func() {
		if err := r.deleteSession(context.Background(), session.ID); err != nil {
			r.Logger("    warning: failed to delete session %s: %v", session.ID, err)
		}
	}()

	// Execute each test step
	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, session.ID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			// Break only if error handling mode is "exit"
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// executeStep performs one scripted interaction and checks expectations
func (r *Runner) executeStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	action := step.Action
	if action == "" {
		action = ActionSubmit
	}

	switch action {
	case ActionSubmit:
		// Current index before submitting, so a scheduled advance can
		// be waited out.
		pre, err := GetSession(ctx, r.Client, r.BaseURL, sessionID)
		if err != nil {
			result.Error = fmt.Errorf("failed to get session before submit: %w", err)
			break
		}

		res, err := PostSubmit(ctx, r.Client, r.BaseURL, sessionID, step.Answer)
		if err != nil {
			result.Error = fmt.Errorf("failed to submit answer: %w", err)
			break
		}
		result.Outcome = string(res.Outcome)

		if err := checkOutcome(step.Expectations, res); err != nil {
			result.Error = err
			break
		}

		view := res.View
		if res.Outcome == engine.OutcomeAdvanced {
			settled, err := PollForAdvance(ctx, r.Client, r.BaseURL, sessionID, pre.View.StepIndex)
			if err != nil {
				result.Error = err
				break
			}
			view = settled.View
		}

		result.Error = checkView(step.Expectations, view)

	case ActionReset:
		result.IsControl = true
		session, err := r.postAction(ctx, sessionID, "reset", map[string]interface{}{"confirm": true})
		if err != nil {
			result.Error = fmt.Errorf("failed to reset session: %w", err)
			break
		}
		result.Error = checkView(step.Expectations, session.View)

	case ActionJump:
		result.IsControl = true
		session, err := r.postAction(ctx, sessionID, "jump", map[string]interface{}{"index": step.Index, "confirm": true})
		if err != nil {
			result.Error = fmt.Errorf("failed to jump: %w", err)
			break
		}
		result.Error = checkView(step.Expectations, session.View)

	case ActionWhisper:
		session, err := r.postAction(ctx, sessionID, "whisper", nil)
		if err != nil {
			result.Error = fmt.Errorf("failed to request whisper: %w", err)
			break
		}
		result.Error = checkView(step.Expectations, session.View)

	case ActionNarration:
		session, err := r.postAction(ctx, sessionID, "narration", nil)
		if err != nil {
			result.Error = fmt.Errorf("failed to unlock narration: %w", err)
			break
		}
		result.Error = checkView(step.Expectations, session.View)

	default:
		result.Error = fmt.Errorf("unknown step action %q", step.Action)
	}

	result.Success = result.Error == nil
	result.Duration = time.Since(start)
	return result
}

// createSession starts a new session for the given hunt
func (r *Runner) createSession(ctx context.Context, huntFile string) (*Session, error) {
	reqBody, err := json.Marshal(map[string]string{"hunt": huntFile})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.BaseURL+"/v1/sessions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create session returned %d: %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode created session: %w", err)
	}

	return &session, nil
}

// postAction posts to a session sub-resource (reset, jump, whisper,
// narration) and decodes the refreshed session envelope.
func (r *Runner) postAction(ctx context.Context, sessionID uuid.UUID, action string, body map[string]interface{}) (*Session, error) {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", action, err)
		}
		reader = bytes.NewReader(reqBody)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/%s", r.BaseURL, sessionID.String(), action)
	req, err := http.NewRequestWithContext(ctx, "POST", url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s request: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s returned %d: %s", action, resp.StatusCode, string(body))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", action, err)
	}

	return &session, nil
}

// deleteSession closes the engine and removes persisted progress
func (r *Runner) deleteSession(ctx context.Context, sessionID uuid.UUID) error {
	url := fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute DELETE request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("DELETE returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// checkOutcome validates the submit response: outcome and reveal payload
func checkOutcome(exp Expectations, res *engine.SubmitResult) error {
	if exp.Outcome != nil {
		if string(res.Outcome) != *exp.Outcome {
			return fmt.Errorf("expected outcome %s, got %s", *exp.Outcome, res.Outcome)
		}
	}

	if exp.RevealDestination != nil || len(exp.RevealVisited) > 0 || exp.RevealTerminalUnlock != nil {
		if res.Reveal == nil {
			return fmt.Errorf("expected a reveal payload, got none (outcome %s)", res.Outcome)
		}
	}
	if res.Reveal == nil {
		return nil
	}

	if exp.RevealDestination != nil {
		if res.Reveal.CurrentLocationID != *exp.RevealDestination {
			return fmt.Errorf("expected reveal destination %s, got %s", *exp.RevealDestination, res.Reveal.CurrentLocationID)
		}
	}

	// Visited order is part of the contract: first-occurrence step order
	if len(exp.RevealVisited) > 0 {
		if !slices.Equal(res.Reveal.VisitedLocationIDs, exp.RevealVisited) {
			return fmt.Errorf("expected visited %v, got %v", exp.RevealVisited, res.Reveal.VisitedLocationIDs)
		}
	}

	if exp.RevealTerminalUnlock != nil {
		if res.Reveal.TerminalUnlock != *exp.RevealTerminalUnlock {
			return fmt.Errorf("expected terminal_unlock to be %t, got %t", *exp.RevealTerminalUnlock, res.Reveal.TerminalUnlock)
		}
	}

	return nil
}

// checkView validates the step view expectations against the settled view
func checkView(exp Expectations, view state.StepView) error {
	if exp.StepID != nil {
		if view.StepID != *exp.StepID {
			return fmt.Errorf("expected step_id %d, got %d", *exp.StepID, view.StepID)
		}
	}

	if exp.StepIndex != nil {
		if view.StepIndex != *exp.StepIndex {
			return fmt.Errorf("expected step_index %d, got %d", *exp.StepIndex, view.StepIndex)
		}
	}

	if exp.LocationID != nil {
		if view.LocationID != *exp.LocationID {
			return fmt.Errorf("expected location %s, got %s", *exp.LocationID, view.LocationID)
		}
	}

	if exp.IsTerminal != nil {
		if view.IsTerminal != *exp.IsTerminal {
			return fmt.Errorf("expected is_terminal to be %t, got %t", *exp.IsTerminal, view.IsTerminal)
		}
	}

	if exp.NarrationUnlocked != nil {
		if view.NarrationUnlocked != *exp.NarrationUnlocked {
			return fmt.Errorf("expected narration_unlocked to be %t, got %t", *exp.NarrationUnlocked, view.NarrationUnlocked)
		}
	}

	return nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/narration"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

const (
	// DefaultOverlayDwell is how long the reveal overlay stays up
	// before it auto-dismisses.
	DefaultOverlayDwell = 3600 * time.Millisecond

	// DefaultAdvanceDwell is how long a reveal lasts before the step
	// formally advances. Always at least the overlay dwell, so the
	// reveal is shown before the step changes.
	DefaultAdvanceDwell = 3800 * time.Millisecond

	saveTimeout = 5 * time.Second
)

// Config carries the collaborators of one engine instance. Hunt is
// required; everything else has a working zero value.
type Config struct {
	Hunt         *hunt.Hunt
	Progress     *state.Progress     // nil starts a fresh session
	Store        ProgressSaver       // nil disables persistence
	Narrator     Narrator            // nil disables narration output
	Sink         RevealSink          // nil disables render directives
	Selector     *narration.Selector // nil builds one from the hunt
	Scheduler    Scheduler           // nil uses wall-clock timers
	Logger       *slog.Logger        // nil uses slog.Default
	OverlayDwell time.Duration       // 0 uses DefaultOverlayDwell
	AdvanceDwell time.Duration       // 0 uses DefaultAdvanceDwell
}

// Engine runs the progression of one hunt session: it validates
// submitted answers, choreographs the timed reveal between steps,
// requests narration, and persists progress. All methods are safe for
// concurrent use; state transitions are serialized by the engine lock.
type Engine struct {
	id       uuid.UUID
	hunt     *hunt.Hunt
	selector *narration.Selector
	store    ProgressSaver
	narrator Narrator
	sink     RevealSink
	sched    Scheduler
	logger   *slog.Logger

	overlayDwell time.Duration
	advanceDwell time.Duration

	mu           sync.Mutex
	progress     *state.Progress
	phase        Phase
	pendingIndex int    // destination step index while revealing
	generation   uint64 // bumped on reset, jump and close to disarm stale timers
	closed       bool
	overlayTimer Timer
	advanceTimer Timer
}

// New builds an engine for one session. The loaded progress index is
// clamped against the hunt, so stale persisted indexes from a shorter
// definition resolve to the last step instead of failing.
func New(id uuid.UUID, cfg Config) (*Engine, error) {
	if cfg.Hunt == nil {
		return nil, errors.New("hunt is required")
	}
	if cfg.Hunt.StepCount() == 0 {
		return nil, errors.New("hunt has no steps")
	}

	selector := cfg.Selector
	if selector == nil {
		var err error
		selector, err = narration.NewSelector(cfg.Hunt, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build narration selector: %w", err)
		}
	}

	progress := cfg.Progress
	if progress == nil {
		progress = state.NewProgress(cfg.Hunt.FileName)
	}
	progress.StepIndex = cfg.Hunt.ClampIndex(progress.StepIndex)

	sched := cfg.Scheduler
	if sched == nil {
		sched = NewScheduler()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	overlay := cfg.OverlayDwell
	if overlay <= 0 {
		overlay = DefaultOverlayDwell
	}
	advance := cfg.AdvanceDwell
	if advance <= 0 {
		advance = DefaultAdvanceDwell
	}
	if advance < overlay {
		advance = overlay
	}

	return &Engine{
		id:           id,
		hunt:         cfg.Hunt,
		selector:     selector,
		store:        cfg.Store,
		narrator:     cfg.Narrator,
		sink:         cfg.Sink,
		sched:        sched,
		logger:       logger,
		overlayDwell: overlay,
		advanceDwell: advance,
		progress:     progress,
		phase:        PhaseIdle,
	}, nil
}

// ID returns the session id the engine runs under.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Hunt returns the immutable hunt definition.
func (e *Engine) Hunt() *hunt.Hunt {
	return e.hunt
}

// Phase returns the engine's current reveal phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Progress returns a copy of the current progress snapshot.
func (e *Engine) Progress() state.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.progress
}

// View returns the read-only projection of the current step.
func (e *Engine) View() state.StepView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// SubmitAnswer evaluates a submitted answer against the current step.
// A wrong answer leaves the step unchanged. A correct answer opens the
// reveal and schedules both the overlay dismissal and the formal
// advancement; the step never changes before the reveal is shown. On
// the terminal step submissions are not evaluated at all and become
// whisper requests.
func (e *Engine) SubmitAnswer(raw string) SubmitResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.phase == PhaseRevealing {
		return SubmitResult{Outcome: OutcomeIgnored, View: e.viewLocked()}
	}

	idx := e.hunt.ClampIndex(e.progress.StepIndex)
	step := e.hunt.StepAt(idx)

	if e.hunt.IsTerminal(idx) {
		if e.progress.NarrationUnlocked {
			e.narrateLocked(e.selector.Whisper(step.ID))
		}
		return SubmitResult{Outcome: OutcomeWhisper, View: e.viewLocked()}
	}

	if !hunt.Match(raw, step.Answer) {
		if e.progress.NarrationUnlocked {
			e.narrateLocked(e.selector.WrongAnswer())
		}
		e.logger.Debug("Answer rejected", "session", e.id, "step_id", step.ID)
		return SubmitResult{Outcome: OutcomeRejected, View: e.viewLocked()}
	}

	return e.beginRevealLocked(idx)
}

// beginRevealLocked opens the reveal toward the next step. The payload
// is computed from the pre-advance position but already counts the
// destination as visited, so the map shows where the player is headed.
func (e *Engine) beginRevealLocked(idx int) SubmitResult {
	next := e.hunt.ClampIndex(idx + 1)
	dest := e.hunt.StepAt(next)

	payload := state.RevealPayload{
		CurrentLocationID:  dest.LocationID,
		VisitedLocationIDs: e.hunt.VisitedLocations(next),
		TerminalUnlock:     e.hunt.OutdoorUnlocked(dest.ID),
	}

	e.phase = PhaseRevealing
	e.pendingIndex = next

	if e.sink != nil {
		e.sink.RevealOpened(payload)
	}
	if e.progress.NarrationUnlocked {
		from := e.hunt.LocationGroup(e.hunt.CurrentLocation(idx))
		to := e.hunt.LocationGroup(dest.LocationID)
		e.narrateLocked(e.selector.RevealTransition(dest.ID, from, to))
	}

	gen := e.generation
	e.overlayTimer = e.sched.AfterFunc(e.overlayDwell, func() { e.dismissOverlay(gen) })
	e.advanceTimer = e.sched.AfterFunc(e.advanceDwell, func() { e.completeAdvance(gen) })

	e.logger.Info("Reveal opened",
		"session", e.id,
		"from_index", idx,
		"to_index", next,
		"location", dest.LocationID)

	return SubmitResult{
		Outcome:        OutcomeAdvanced,
		View:           e.viewLocked(),
		Reveal:         &payload,
		OverlayDwellMS: e.overlayDwell.Milliseconds(),
		AdvanceDwellMS: e.advanceDwell.Milliseconds(),
	}
}

// dismissOverlay runs at the overlay dwell. A stale generation means
// the session was reset, jumped or closed since the reveal opened.
func (e *Engine) dismissOverlay(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.generation || e.phase != PhaseRevealing {
		return
	}
	e.overlayTimer = nil
	if e.sink != nil {
		e.sink.RevealClosed()
	}
}

// completeAdvance runs at the advance dwell and commits the step
// change.
func (e *Engine) completeAdvance(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.generation || e.phase != PhaseRevealing {
		return
	}
	e.advanceTimer = nil
	e.phase = PhaseIdle
	e.progress.StepIndex = e.pendingIndex
	e.saveLocked()

	step := e.hunt.StepAt(e.progress.StepIndex)
	if e.sink != nil {
		e.sink.StepAdvanced(e.viewLocked())
	}
	if e.progress.NarrationUnlocked {
		e.narrateLocked(e.selector.StepFlavor(step.ID))
	}
	e.logger.Info("Step advanced", "session", e.id, "step_index", e.progress.StepIndex, "step_id", step.ID)
}

// RequestWhisper narrates a hint whisper for the current step. A no-op
// while narration is locked.
func (e *Engine) RequestWhisper() state.StepView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed && e.progress.NarrationUnlocked {
		step := e.hunt.StepAt(e.progress.StepIndex)
		e.narrateLocked(e.selector.Whisper(step.ID))
	}
	return e.viewLocked()
}

// UnlockNarration flips the one-way narration consent flag and plays
// the onboarding line. Repeat calls are no-ops.
func (e *Engine) UnlockNarration() state.StepView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.progress.NarrationUnlocked {
		return e.viewLocked()
	}
	e.progress.NarrationUnlocked = true
	e.saveLocked()
	e.narrateLocked(e.selector.Onboarding())
	e.logger.Info("Narration unlocked", "session", e.id)
	return e.viewLocked()
}

// Reset returns the session to the first step. Narration consent is
// preserved, an open reveal is closed and scheduled work is discarded.
// Confirmation is a precondition of the calling surface, not checked
// here.
func (e *Engine) Reset() state.StepView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.viewLocked()
	}
	view := e.rewindLocked(0)
	if e.sink != nil {
		e.sink.SessionReset(view)
	}
	e.logger.Info("Session reset", "session", e.id)
	return view
}

// JumpTo moves the session to an arbitrary step index, clamped to the
// hunt. Side effects match Reset.
func (e *Engine) JumpTo(index int) state.StepView {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.viewLocked()
	}
	view := e.rewindLocked(index)
	if e.sink != nil {
		e.sink.SessionJumped(view)
	}
	e.logger.Info("Session jumped", "session", e.id, "step_index", e.progress.StepIndex)
	return view
}

// rewindLocked discards any in-flight reveal and moves the session to
// the clamped index.
func (e *Engine) rewindLocked(index int) state.StepView {
	e.generation++
	e.stopTimersLocked()
	if e.phase == PhaseRevealing {
		e.phase = PhaseIdle
		if e.sink != nil {
			e.sink.RevealClosed()
		}
	}
	e.progress.StepIndex = e.hunt.ClampIndex(index)
	e.saveLocked()
	return e.viewLocked()
}

// Close detaches the engine. Timers are discarded and callbacks
// scheduled before Close never mutate state afterward.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.generation++
	e.stopTimersLocked()
}

func (e *Engine) stopTimersLocked() {
	if e.overlayTimer != nil {
		e.overlayTimer.Stop()
		e.overlayTimer = nil
	}
	if e.advanceTimer != nil {
		e.advanceTimer.Stop()
		e.advanceTimer = nil
	}
}

// saveLocked persists the current progress snapshot. Failures are
// logged and swallowed: durability is best-effort and never gates
// progression.
func (e *Engine) saveLocked() {
	if e.store == nil {
		return
	}
	e.progress.Touch()
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.store.SaveProgress(ctx, e.id, e.progress); err != nil {
		e.logger.Warn("Failed to save progress", "session", e.id, "error", err)
	}
}

func (e *Engine) narrateLocked(line string) {
	if e.narrator == nil || line == "" {
		return
	}
	e.narrator.Narrate(line)
}

func (e *Engine) viewLocked() state.StepView {
	idx := e.hunt.ClampIndex(e.progress.StepIndex)
	step := e.hunt.StepAt(idx)
	fraction := 1.0
	if n := e.hunt.StepCount(); n > 1 {
		fraction = float64(idx) / float64(n-1)
	}
	return state.StepView{
		Hunt:              e.hunt.Name,
		HuntFile:          e.hunt.FileName,
		StepID:            step.ID,
		StepIndex:         idx,
		StepCount:         e.hunt.StepCount(),
		Title:             step.Title,
		Riddle:            step.Riddle,
		LocationHint:      step.LocationHint,
		LocationID:        step.LocationID,
		ProgressFraction:  fraction,
		IsTerminal:        e.hunt.IsTerminal(idx),
		NarrationUnlocked: e.progress.NarrationUnlocked,
	}
}

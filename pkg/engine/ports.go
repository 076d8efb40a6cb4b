package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
)

// ProgressSaver persists progress snapshots. Saves are best-effort:
// the engine logs and swallows failures, so implementations never gate
// progression.
type ProgressSaver interface {
	SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error
}

// Narrator voices a narration line. Calls happen under the engine lock
// and must hand off immediately rather than block.
type Narrator interface {
	Narrate(line string)
}

// RevealSink receives map render directives and progression events.
// Calls happen under the engine lock; implementations must be fast or
// hand off.
type RevealSink interface {
	RevealOpened(payload state.RevealPayload)
	RevealClosed()
	StepAdvanced(view state.StepView)
	SessionReset(view state.StepView)
	SessionJumped(view state.StepView)
}

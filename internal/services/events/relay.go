package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/state"
)

// publishTimeout bounds a single publish. The engine emits directives
// while holding its lock, so a hung broker must not hang the session.
const publishTimeout = 2 * time.Second

// RevealRelay forwards engine render directives to the event broker as
// typed events. It satisfies the engine's RevealSink port. Publishes
// are synchronous to preserve directive order; failures are logged and
// dropped since renderers resync from the session view.
type RevealRelay struct {
	broker    Broker
	sessionID uuid.UUID
	logger    *slog.Logger
}

// NewRevealRelay creates a relay for one session
func NewRevealRelay(broker Broker, sessionID uuid.UUID, logger *slog.Logger) *RevealRelay {
	return &RevealRelay{
		broker:    broker,
		sessionID: sessionID,
		logger:    logger,
	}
}

// RevealOpened publishes a reveal.opened event
func (r *RevealRelay) RevealOpened(payload state.RevealPayload) {
	r.publish(EventTypeRevealOpened, payload)
}

// RevealClosed publishes a reveal.closed event
func (r *RevealRelay) RevealClosed() {
	r.publish(EventTypeRevealClosed, nil)
}

// StepAdvanced publishes a step.advanced event
func (r *RevealRelay) StepAdvanced(view state.StepView) {
	r.publish(EventTypeStepAdvanced, view)
}

// SessionReset publishes a session.reset event
func (r *RevealRelay) SessionReset(view state.StepView) {
	r.publish(EventTypeSessionReset, view)
}

// SessionJumped publishes a session.jumped event
func (r *RevealRelay) SessionJumped(view state.StepView) {
	r.publish(EventTypeSessionJumped, view)
}

func (r *RevealRelay) publish(eventType EventType, data any) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := Event{
		Type:      eventType,
		SessionID: r.sessionID.String(),
		Data:      data,
	}
	if err := r.broker.Publish(ctx, r.sessionID, event); err != nil {
		r.logger.Warn("Failed to publish event", "session", r.sessionID, "event_type", eventType, "error", err)
	}
}

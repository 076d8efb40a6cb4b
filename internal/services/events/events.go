package events

import (
	"context"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRevealOpened  EventType = "reveal.opened"
	EventTypeRevealClosed  EventType = "reveal.closed"
	EventTypeStepAdvanced  EventType = "step.advanced"
	EventTypeSessionReset  EventType = "session.reset"
	EventTypeSessionJumped EventType = "session.jumped"
)

// Event is one render directive pushed to session subscribers. Data
// carries the event payload: a reveal payload for reveal.opened, a step
// view for the step change events, nothing for reveal.closed.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Broker distributes events to the subscribers of a session. Publish
// never blocks on slow subscribers: renderers that fall behind miss
// events and resync from the session view.
type Broker interface {
	// Publish sends an event to all subscribers of the session
	Publish(ctx context.Context, sessionID uuid.UUID, event Event) error

	// Subscribe returns a channel of events for the session and a
	// cancel function that releases the subscription
	Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan Event, func(), error)

	// Close releases all subscriptions
	Close() error
}

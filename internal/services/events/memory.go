package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// subscriber channels hold a short backlog so a render burst (reveal
// opened, closed, step advanced) never blocks the engine.
const subscriberBuffer = 16

// MemoryBroker is an in-process pub/sub for session events, keyed by
// session id. It is the broker for single-process deployments and
// tests.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[chan Event]struct{}
	closed bool
}

// Ensure MemoryBroker implements Broker interface
var _ Broker = (*MemoryBroker)(nil)

// NewMemoryBroker creates a new in-process event broker
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Publish sends an event to all subscribers of the session. Slow
// subscribers are skipped, never waited on.
func (b *MemoryBroker) Publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- event:
		default:
			// Drop if subscriber is slow.
		}
	}
	return nil
}

// Subscribe registers a new subscriber channel for the session
func (b *MemoryBroker) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}, nil
	}
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[sessionID][ch]; ok {
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// Close releases every subscription
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
	}
	b.subs = make(map[uuid.UUID]map[chan Event]struct{})
	return nil
}

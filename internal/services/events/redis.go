package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBroker distributes session events over Redis Pub/Sub, so SSE
// subscribers can hang off any API replica. Channels are per session.
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisBroker implements Broker interface
var _ Broker = (*RedisBroker)(nil)

// NewRedisBroker creates a broker on an existing Redis connection. The
// connection is shared with storage and not closed by the broker.
func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		logger: logger,
	}
}

// sessionChannel returns the pub/sub channel for a session
func sessionChannel(sessionID uuid.UUID) string {
	return fmt.Sprintf("hunt-events:%s", sessionID.String())
}

// Publish sends an event to the session channel
func (b *RedisBroker) Publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := sessionChannel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

// Subscribe opens a pub/sub subscription on the session channel and
// pumps decoded events into the returned channel until cancelled.
func (b *RedisBroker) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan Event, func(), error) {
	channel := sessionChannel(sessionID)
	pubsub := b.client.Subscribe(ctx, channel)

	// Force the subscription to be established before returning, so a
	// publish right after Subscribe is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("Discarding malformed event", "channel", channel, "error", err)
				continue
			}
			select {
			case out <- event:
			default:
				// Drop if subscriber is slow.
			}
		}
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			b.logger.Debug("Failed to close pubsub", "channel", channel, "error", err)
		}
	}
	return out, cancel, nil
}

// Close is a no-op: the shared Redis connection is owned by storage
func (b *RedisBroker) Close() error {
	return nil
}

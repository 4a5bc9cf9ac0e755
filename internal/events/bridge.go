package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire form of an event: a type tag plus the variant's own
// payload, flattened.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge publishes session events to Redis Pub/Sub channels scoped by tenant
// and session. Publishing is best-effort: failures are logged and swallowed so
// a notification problem can never roll back a committed state change.
type Bridge struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewBridge creates a bridge over the given Redis options.
func NewBridge(opts *redis.Options, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		rdb:    redis.NewClient(opts),
		logger: logger,
	}
}

// Close closes the Redis connection. Implements io.Closer.
func (b *Bridge) Close() error {
	return b.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (b *Bridge) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// ChannelName returns the Pub/Sub channel for a session's events.
func ChannelName(tenantID, sessionID string) string {
	return fmt.Sprintf("idealab:events:%s:%s", tenantID, sessionID)
}

// Publish sends an event to the session's channel. Fire-and-forget: errors
// are logged, never returned.
func (b *Bridge) Publish(ctx context.Context, tenantID, sessionID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("marshal event", "type", event.EventType(), "error", err)
		return
	}
	env, err := json.Marshal(Envelope{Type: event.EventType(), Payload: payload})
	if err != nil {
		b.logger.Error("marshal event envelope", "type", event.EventType(), "error", err)
		return
	}

	channel := ChannelName(tenantID, sessionID)
	if err := b.rdb.Publish(ctx, channel, env).Err(); err != nil {
		b.logger.Error("publish event",
			"channel", channel,
			"type", event.EventType(),
			"error", err,
		)
	}
}

// Subscription is an active Pub/Sub subscription to one session's events.
// Caller must call Close when done; context cancellation also stops it.
type Subscription struct {
	events <-chan Envelope
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of event envelopes. It is closed when the
// subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan Envelope {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors (malformed
// messages are skipped, not fatal).
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe starts listening to a session's events. Envelopes are delivered
// on a buffered channel; Redis Pub/Sub is at-most-once, so slow consumers may
// miss messages and should re-fetch state rather than rely on the stream.
func (b *Bridge) Subscribe(ctx context.Context, tenantID, sessionID string) (*Subscription, error) {
	channel := ChannelName(tenantID, sessionID)
	pubsub := b.rdb.Subscribe(ctx, channel)

	// Force the subscription to be established before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", channel, err)
	}

	eventsChan := make(chan Envelope, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					select {
					case errorsChan <- fmt.Errorf("unmarshal event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- env:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

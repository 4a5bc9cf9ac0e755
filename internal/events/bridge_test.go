package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kutahiru/idea-labo-sub002/internal/events"
)

func newTestBridge(t *testing.T) *events.Bridge {
	t.Helper()

	mr := miniredis.RunT(t)
	bridge := events.NewBridge(&redis.Options{Addr: mr.Addr()}, nil)
	t.Cleanup(func() { bridge.Close() })
	return bridge
}

func TestBridge_PublishSubscribe(t *testing.T) {
	bridge := newTestBridge(t)
	ctx := context.Background()

	sub, err := bridge.Subscribe(ctx, "t1", "sess1")
	require.NoError(t, err)
	defer sub.Close()

	bridge.Publish(ctx, "t1", "sess1", events.ParticipantJoined{
		SessionID: "sess1",
		UserID:    "alice",
	})

	select {
	case env := <-sub.Events():
		require.Equal(t, events.TypeParticipantJoined, env.Type)

		var payload events.ParticipantJoined
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		require.Equal(t, "alice", payload.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBridge_ChannelIsolation(t *testing.T) {
	bridge := newTestBridge(t)
	ctx := context.Background()

	sub, err := bridge.Subscribe(ctx, "t1", "sess1")
	require.NoError(t, err)
	defer sub.Close()

	// Same session id under a different tenant lands on a different channel.
	bridge.Publish(ctx, "t2", "sess1", events.SessionStarted{SessionID: "sess1", SheetCount: 3})
	bridge.Publish(ctx, "t1", "sess1", events.SessionStarted{SessionID: "sess1", SheetCount: 2})

	select {
	case env := <-sub.Events():
		require.Equal(t, events.TypeSessionStarted, env.Type)

		var payload events.SessionStarted
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		require.Equal(t, 2, payload.SheetCount)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBridge_SubscriptionClosesOnCancel(t *testing.T) {
	bridge := newTestBridge(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bridge.Subscribe(ctx, "t1", "sess1")
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-sub.Events():
		require.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestBridge_PublishIsFireAndForget(t *testing.T) {
	mr := miniredis.RunT(t)
	bridge := events.NewBridge(&redis.Options{Addr: mr.Addr()}, nil)
	t.Cleanup(func() { bridge.Close() })

	mr.Close()

	// Redis being down must not panic or surface an error to the caller.
	bridge.Publish(context.Background(), "t1", "sess1", events.ParticipantJoined{
		SessionID: "sess1", UserID: "alice",
	})
}

func TestChannelName(t *testing.T) {
	require.Equal(t, "idealab:events:t1:sess1", events.ChannelName("t1", "sess1"))
}

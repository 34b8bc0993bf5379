package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"riptide/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewNotifier(rdb)
}

func TestNotifier_PostCreatedRoundTrip(t *testing.T) {
	notifier := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartSubscriber(ctx, func(payload string) {
		received <- payload
	}))

	notifier.PostCreated(ctx, &models.Post{ID: 9, UserID: 3, Title: "fresh"})

	select {
	case payload := <-received:
		var event Event
		require.NoError(t, json.Unmarshal([]byte(payload), &event))
		assert.Equal(t, EventPostCreated, event.Type)
		assert.Equal(t, uint(9), event.PostID)
		assert.Equal(t, uint(3), event.UserID)
		assert.Equal(t, "fresh", event.Title)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.CreatedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestNotifier_VoteCastRoundTrip(t *testing.T) {
	notifier := newTestNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartSubscriber(ctx, func(payload string) {
		received <- payload
	}))

	notifier.VoteCast(ctx, 5, 7, -1)

	select {
	case payload := <-received:
		var event Event
		require.NoError(t, json.Unmarshal([]byte(payload), &event))
		assert.Equal(t, EventVoteCast, event.Type)
		assert.Equal(t, uint(5), event.PostID)
		assert.Equal(t, uint(7), event.UserID)
		assert.Equal(t, -1, event.VoteValue)
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	ctx := context.Background()

	// Neither publishing nor subscribing may fail without a broker.
	notifier.PostCreated(ctx, &models.Post{ID: 1})
	notifier.VoteCast(ctx, 1, 2, 1)
	assert.NoError(t, notifier.StartSubscriber(ctx, func(string) {}))
}

func TestHub_StartWiringForwardsEvents(t *testing.T) {
	notifier := newTestNotifier(t)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.StartWiring(ctx, notifier))

	notifier.PostCreated(ctx, &models.Post{ID: 21, UserID: 4, Title: "wired"})

	select {
	case payload := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, EventPostCreated, event.Type)
		assert.Equal(t, uint(21), event.PostID)
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the hub client")
	}
}

package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"

	"riptide/internal/models"
	"riptide/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes feed events into Redis. A nil Redis client turns every
// publish into a no-op so tests and single-binary setups need no broker.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PostCreated announces a freshly created post to the feed stream.
func (n *Notifier) PostCreated(ctx context.Context, post *models.Post) {
	event := newEvent(EventPostCreated, post.ID)
	event.UserID = post.UserID
	event.Title = post.Title
	n.publish(ctx, event)
}

// VoteCast announces a vote that changed a post's points. Idempotent
// repeats never reach this method.
func (n *Notifier) VoteCast(ctx context.Context, postID, userID uint, value int) {
	event := newEvent(EventVoteCast, postID)
	event.UserID = userID
	event.VoteValue = value
	n.publish(ctx, event)
}

// publish is best effort: a broker failure is logged and dropped, never
// surfaced to the request that produced the event.
func (n *Notifier) publish(ctx context.Context, event Event) {
	if n.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("marshal feed event %s: %v", event.Type, err)
		return
	}

	if err := n.rdb.Publish(ctx, FeedChannel, payload).Err(); err != nil {
		log.Printf("publish feed event %s: %v", event.Type, err)
		return
	}
	observability.FeedEventsTotal.WithLabelValues(event.Type).Inc()
}

// StartSubscriber subscribes to the feed channel and calls onMessage for
// every raw payload until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}

	sub := n.rdb.Subscribe(ctx, FeedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}

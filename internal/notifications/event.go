// Package notifications fans feed events out to websocket subscribers
// through a Redis channel, so every server instance sees every event.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Feed event types.
const (
	EventPostCreated = "post_created"
	EventVoteCast    = "vote_cast"
)

// FeedChannel is the Redis pub/sub channel all feed events flow through.
const FeedChannel = "feed:events"

// Event is one entry in the feed event stream.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	VoteValue int       `json:"vote_value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newEvent(eventType string, postID uint) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
}

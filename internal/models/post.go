package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Riptide feed.
//
// Points is the denormalized sum of all vote values for the post. It starts
// at 0 and is only ever written by the vote ledger; every other writer must
// treat it as read-only.
type Post struct {
	ID      uint   `gorm:"primaryKey;index:idx_posts_feed,priority:2,sort:desc" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	Points  int    `gorm:"not null;default:0" json:"points"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	// CreatedAt carries a composite index with ID so the keyset feed query
	// stays an index scan even when timestamps collide.
	CreatedAt time.Time      `gorm:"index:idx_posts_feed,priority:1,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostView is the feed representation of a post: post metadata, a
// word-boundary-safe snippet instead of the body, the resolved creator, and
// the requesting viewer's own vote value (nil when anonymous or not voted).
type PostView struct {
	ID          uint        `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Title       string      `json:"title"`
	TextSnippet string      `json:"text_snippet"`
	Points      int         `json:"points"`
	Creator     UserSummary `json:"creator"`
	VoteStatus  *int        `json:"vote_status"`
}

// FeedPage is one page of the reverse-chronological feed.
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

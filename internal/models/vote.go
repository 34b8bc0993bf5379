package models

import "time"

// Vote values after normalization.
const (
	Upvote   = 1
	Downvote = -1
)

// Vote records a single user's vote on a single post.
// The combination of PostID and UserID must be unique; a missing row means
// the user has not voted. Rows are updated in place on a flip and never
// deleted.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"user_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post Post `gorm:"foreignKey:PostID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// VoteKey identifies one (post, user) vote pair for bulk lookups.
type VoteKey struct {
	PostID uint
	UserID uint
}

// NormalizeVoteValue coerces an arbitrary client value into the two legal
// vote values. Anything that is not exactly -1 counts as an upvote; this
// mirrors the product behavior the clients were built against.
func NormalizeVoteValue(raw int) int {
	if raw != Downvote {
		return Upvote
	}
	return Downvote
}

// Package seed provides helpers to create demo data for the feed database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"riptide/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a fake identity and a bcrypt-hashed
// password.
func (f *Factory) CreateUser(password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	user := &models.User{
		Username: strings.ToLower(fmt.Sprintf("%s%s%d", first, last, f.rng.Intn(10000))),
		Email:    strings.ToLower(fmt.Sprintf("%s.%s%d@%s", first, last, f.rng.Intn(10000), gofakeit.DomainName())),
		Password: string(hash),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildPost constructs a post with fake content and a created_at spread
// over the past maxDays so the feed paginates realistically.
func (f *Factory) BuildPost(user *models.User, maxDays int) *models.Post {
	if maxDays <= 0 {
		maxDays = 90
	}

	post := &models.Post{
		Title:   gofakeit.Sentence(5),
		Content: gofakeit.Paragraph(2, 4, 8, "\n"),
		UserID:  user.ID,
	}

	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CastRandomVotes records votes from random users on random posts through
// the same ledger the API uses, keeping points consistent with vote rows.
// The ratio of upvotes to downvotes skews positive like a real feed.
func (f *Factory) CastRandomVotes(users []*models.User, posts []*models.Post, count int, cast func(postID, userID uint, value int) error) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		user := users[f.rng.Intn(len(users))]
		post := posts[f.rng.Intn(len(posts))]

		value := models.Upvote
		if f.rng.Intn(100) < 25 {
			value = models.Downvote
		}

		if err := cast(post.ID, user.ID, value); err != nil {
			return fmt.Errorf("cast vote: %w", err)
		}
	}
	return nil
}

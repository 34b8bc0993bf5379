package repository

import (
	"context"
	"errors"
	"time"

	"riptide/internal/cache"
	"riptide/internal/models"
	"riptide/internal/observability"

	"gorm.io/gorm"
)

// FeedCursor marks the keyset position of the last post on the previous
// page. A nil cursor means the newest page.
type FeedCursor struct {
	CreatedAt time.Time
	ID        uint
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	FeedPage(ctx context.Context, after *FeedCursor, limit int) ([]models.Post, bool, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint, userID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return storeError(err)
	}
	return nil
}

// GetByID returns the post or (nil, nil) when no such post exists. The row
// goes through the cache with a short TTL because points change often.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return storeError(err)
		}
		return nil
	})

	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FeedPage returns one reverse-chronological page. It probes for limit+1
// rows so the caller learns whether an older page exists without a second
// query. Rows sharing a timestamp are tie-broken by ID so every post is
// returned exactly once across pages.
func (r *postRepository) FeedPage(ctx context.Context, after *FeedCursor, limit int) ([]models.Post, bool, error) {
	start := time.Now()

	tx := r.db.WithContext(ctx).Model(&models.Post{})
	if after != nil {
		tx = tx.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			after.CreatedAt, after.CreatedAt, after.ID,
		)
	}

	var posts []models.Post
	err := tx.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&posts).Error
	observability.ObserveQuery("feed_page", "posts", start)
	if err != nil {
		return nil, false, storeError(err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	return posts, hasMore, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return storeError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post only when userID owns it. It reports whether a
// row was actually deleted so the handler can distinguish 404 from 403.
func (r *postRepository) Delete(ctx context.Context, id uint, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Post{})
	if res.Error != nil {
		return false, storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidatePost(ctx, id)
	return true, nil
}

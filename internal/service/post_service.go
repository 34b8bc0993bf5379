package service

import (
	"context"
	"strings"

	"riptide/internal/models"
	"riptide/internal/repository"
)

const (
	maxTitleLength   = 300
	maxContentLength = 50000
)

// PostNotifier receives post lifecycle events. Delivery is best effort.
type PostNotifier interface {
	PostCreated(ctx context.Context, post *models.Post)
}

// PostService owns the post lifecycle outside the feed: create, read one,
// edit, delete.
type PostService struct {
	posts    repository.PostRepository
	notifier PostNotifier
}

// NewPostService returns a new PostService. notifier may be nil.
func NewPostService(posts repository.PostRepository, notifier PostNotifier) *PostService {
	return &PostService{posts: posts, notifier: notifier}
}

// CreatePostInput carries the fields a viewer submits for a new post.
type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return models.NewValidationError("title is too long")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content is required")
	}
	if len([]rune(content)) > maxContentLength {
		return models.NewValidationError("content is too long")
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	if input.UserID == 0 {
		return nil, models.NewUnauthorizedError("authentication required to post")
	}
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		UserID:  input.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PostCreated(ctx, post)
	}
	return post, nil
}

// Get returns one post with its creator loaded, or a not-found error.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// UpdatePostInput carries an edit to an existing post.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

// Update edits a post's title and content. Only the creator may edit;
// points and authorship never change through this path.
func (s *PostService) Update(ctx context.Context, input UpdatePostInput) (*models.Post, error) {
	if input.UserID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	if err := validatePostFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != input.UserID {
		return nil, models.NewUnauthorizedError("only the creator can edit a post")
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post the viewer owns. Deleting someone else's post, or
// a post that no longer exists, is a not-found error either way so the API
// does not leak which posts exist.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) error {
	if userID == 0 {
		return models.NewUnauthorizedError("authentication required")
	}

	deleted, err := s.posts.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

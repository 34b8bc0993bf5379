package service

import (
	"context"

	"riptide/internal/models"
	"riptide/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn   func(context.Context, *models.Post) error
	getByIDFn  func(context.Context, uint) (*models.Post, error)
	feedPageFn func(context.Context, *repository.FeedCursor, int) ([]models.Post, bool, error)
	updateFn   func(context.Context, *models.Post) error
	deleteFn   func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) FeedPage(ctx context.Context, after *repository.FeedCursor, limit int) ([]models.Post, bool, error) {
	return s.feedPageFn(ctx, after, limit)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint, userID uint) (bool, error) {
	return s.deleteFn(ctx, id, userID)
}

// voteRepoStub is a stub for repository.VoteRepository.
type voteRepoStub struct {
	castFn      func(context.Context, uint, uint, int) (string, error)
	getFn       func(context.Context, uint, uint) (*models.Vote, error)
	getByKeysFn func(context.Context, []models.VoteKey) (map[models.VoteKey]*models.Vote, error)
}

func (s *voteRepoStub) Cast(ctx context.Context, postID, userID uint, value int) (string, error) {
	return s.castFn(ctx, postID, userID, value)
}
func (s *voteRepoStub) Get(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	return s.getFn(ctx, postID, userID)
}
func (s *voteRepoStub) GetByKeys(ctx context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
	return s.getByKeysFn(ctx, keys)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByIDsFn      func(context.Context, []uint) (map[uint]*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

// notifierStub records the events a service publishes.
type notifierStub struct {
	created []uint
	votes   []uint
}

func (s *notifierStub) PostCreated(_ context.Context, post *models.Post) {
	s.created = append(s.created, post.ID)
}
func (s *notifierStub) VoteCast(_ context.Context, postID, _ uint, _ int) {
	s.votes = append(s.votes, postID)
}

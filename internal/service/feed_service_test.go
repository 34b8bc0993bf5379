package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"riptide/internal/loader"
	"riptide/internal/models"
	"riptide/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedFixture(n int) []models.Post {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = models.Post{
			ID:        uint(100 - i),
			Title:     "title",
			Content:   strings.Repeat("word ", 30),
			Points:    i,
			UserID:    uint(1 + i%2),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func fixtureBundle(t *testing.T, users *userRepoStub, votes *voteRepoStub) *loader.Bundle {
	t.Helper()
	if users.getByIDsFn == nil {
		users.getByIDsFn = func(_ context.Context, ids []uint) (map[uint]*models.User, error) {
			out := make(map[uint]*models.User, len(ids))
			for _, id := range ids {
				out[id] = &models.User{ID: id, Username: "user"}
			}
			return out, nil
		}
	}
	if votes.getByKeysFn == nil {
		votes.getByKeysFn = func(_ context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
			return map[models.VoteKey]*models.Vote{}, nil
		}
	}
	return loader.NewBundle(users, votes)
}

func TestFeedService_FetchPage_Anonymous(t *testing.T) {
	t.Parallel()

	posts := feedFixture(3)
	var gotLimit int
	repo := &postRepoStub{
		feedPageFn: func(_ context.Context, after *repository.FeedCursor, limit int) ([]models.Post, bool, error) {
			assert.Nil(t, after)
			gotLimit = limit
			return posts, false, nil
		},
	}

	votesCalled := false
	votes := &voteRepoStub{
		getByKeysFn: func(_ context.Context, _ []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
			votesCalled = true
			return nil, nil
		},
	}
	bundle := fixtureBundle(t, &userRepoStub{}, votes)

	svc := NewFeedService(repo)
	page, err := svc.FetchPage(context.Background(), bundle, 0, 0, "")
	require.NoError(t, err)

	assert.Equal(t, 20, gotLimit, "missing limit falls back to the default")
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
	require.Len(t, page.Posts, 3)

	for _, view := range page.Posts {
		assert.Nil(t, view.VoteStatus, "anonymous viewers have no vote status")
		assert.Equal(t, "user", view.Creator.Username)
		assert.True(t, strings.HasSuffix(view.TextSnippet, " ..."), "long bodies are truncated")
	}
	assert.False(t, votesCalled, "anonymous pages never touch the vote table")
}

func TestFeedService_FetchPage_AuthenticatedVoteStatus(t *testing.T) {
	t.Parallel()

	posts := feedFixture(3)
	repo := &postRepoStub{
		feedPageFn: func(_ context.Context, _ *repository.FeedCursor, _ int) ([]models.Post, bool, error) {
			return posts, false, nil
		},
	}

	const viewerID = uint(7)
	var voteCalls int
	votes := &voteRepoStub{
		getByKeysFn: func(_ context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
			voteCalls++
			require.Len(t, keys, len(posts), "one batch covers the whole page")
			for _, k := range keys {
				assert.Equal(t, viewerID, k.UserID)
			}
			return map[models.VoteKey]*models.Vote{
				{PostID: posts[0].ID, UserID: viewerID}: {PostID: posts[0].ID, UserID: viewerID, Value: 1},
				{PostID: posts[2].ID, UserID: viewerID}: {PostID: posts[2].ID, UserID: viewerID, Value: -1},
			}, nil
		},
	}

	var userCalls int
	users := &userRepoStub{
		getByIDsFn: func(_ context.Context, ids []uint) (map[uint]*models.User, error) {
			userCalls++
			assert.Len(t, ids, 2, "duplicate creators collapse into one batch slot")
			out := make(map[uint]*models.User, len(ids))
			for _, id := range ids {
				out[id] = &models.User{ID: id, Username: "u"}
			}
			return out, nil
		},
	}
	bundle := loader.NewBundle(users, votes)

	svc := NewFeedService(repo)
	page, err := svc.FetchPage(context.Background(), bundle, viewerID, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 3)

	require.NotNil(t, page.Posts[0].VoteStatus)
	assert.Equal(t, 1, *page.Posts[0].VoteStatus)
	assert.Nil(t, page.Posts[1].VoteStatus, "no vote row means nil, not zero")
	require.NotNil(t, page.Posts[2].VoteStatus)
	assert.Equal(t, -1, *page.Posts[2].VoteStatus)

	assert.Equal(t, 1, voteCalls)
	assert.Equal(t, 1, userCalls)
}

func TestFeedService_FetchPage_NextCursor(t *testing.T) {
	t.Parallel()

	posts := feedFixture(2)
	repo := &postRepoStub{
		feedPageFn: func(_ context.Context, _ *repository.FeedCursor, _ int) ([]models.Post, bool, error) {
			return posts, true, nil
		},
	}
	bundle := fixtureBundle(t, &userRepoStub{}, &voteRepoStub{})

	svc := NewFeedService(repo)
	page, err := svc.FetchPage(context.Background(), bundle, 0, 2, "")
	require.NoError(t, err)

	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := DecodeCursor(page.NextCursor)
	require.NoError(t, err)
	last := posts[len(posts)-1]
	assert.Equal(t, last.ID, cursor.ID)
	assert.True(t, cursor.CreatedAt.Equal(last.CreatedAt))
}

func TestFeedService_FetchPage_CursorPassedThrough(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &postRepoStub{
		feedPageFn: func(_ context.Context, after *repository.FeedCursor, _ int) ([]models.Post, bool, error) {
			require.NotNil(t, after)
			assert.Equal(t, uint(55), after.ID)
			assert.True(t, after.CreatedAt.Equal(at))
			return nil, false, nil
		},
	}
	bundle := fixtureBundle(t, &userRepoStub{}, &voteRepoStub{})

	svc := NewFeedService(repo)
	page, err := svc.FetchPage(context.Background(), bundle, 0, 5, EncodeCursor(at, 55))
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasMore)
}

func TestFeedService_FetchPage_InvalidCursor(t *testing.T) {
	t.Parallel()

	repo := &postRepoStub{
		feedPageFn: func(_ context.Context, _ *repository.FeedCursor, _ int) ([]models.Post, bool, error) {
			t.Fatal("feed query must not run for a bad cursor")
			return nil, false, nil
		},
	}
	bundle := fixtureBundle(t, &userRepoStub{}, &voteRepoStub{})

	svc := NewFeedService(repo)
	_, err := svc.FetchPage(context.Background(), bundle, 0, 5, "%%%garbage%%%")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 20, clampLimit(-3))
	assert.Equal(t, 1, clampLimit(1))
	assert.Equal(t, 50, clampLimit(50))
	assert.Equal(t, 50, clampLimit(500))
}

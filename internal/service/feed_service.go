package service

import (
	"context"

	"riptide/internal/loader"
	"riptide/internal/models"
	"riptide/internal/observability"
	"riptide/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 50
)

// FeedService assembles pages of the reverse-chronological feed.
type FeedService struct {
	posts repository.PostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(posts repository.PostRepository) *FeedService {
	return &FeedService{posts: posts}
}

// clampLimit folds any requested page size into [1, maxFeedLimit], with a
// default when the client sends nothing.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}

// FetchPage serves one feed page for viewerID (0 means anonymous). The
// cursor is the opaque token from the previous page's NextCursor, empty for
// the first page. Creators and the viewer's votes resolve through the
// request's loader bundle so the whole page costs one query per concern.
func (s *FeedService) FetchPage(ctx context.Context, loaders *loader.Bundle, viewerID uint, limit int, cursor string) (*models.FeedPage, error) {
	span, ctx := observability.NewSpan(ctx, "feed.fetch_page")
	defer span.End()

	limit = clampLimit(limit)
	span.AddAttributes(attribute.Int("feed.limit", limit))

	after, err := DecodeCursor(cursor)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	posts, hasMore, err := s.posts.FeedPage(ctx, after, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	// Queue every key before resolving anything so the loaders flush as
	// one batch per concern.
	userThunks := make([]loader.Thunk[*models.User], len(posts))
	voteThunks := make([]loader.Thunk[*models.Vote], len(posts))
	for i := range posts {
		userThunks[i] = loaders.Users.Load(ctx, posts[i].UserID)
		if viewerID != 0 {
			voteThunks[i] = loaders.Votes.Load(ctx, models.VoteKey{PostID: posts[i].ID, UserID: viewerID})
		}
	}

	views := make([]models.PostView, len(posts))
	for i := range posts {
		creator, err := userThunks[i]()
		if err != nil {
			return nil, err
		}

		var voteStatus *int
		if viewerID != 0 {
			vote, err := voteThunks[i]()
			if err != nil {
				return nil, err
			}
			if vote != nil {
				v := vote.Value
				voteStatus = &v
			}
		}

		views[i] = buildPostView(&posts[i], creator, voteStatus)
	}

	page := &models.FeedPage{
		Posts:   views,
		HasMore: hasMore,
	}
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		page.NextCursor = EncodeCursor(last.CreatedAt, last.ID)
	}

	viewerKind := "anonymous"
	if viewerID != 0 {
		viewerKind = "authenticated"
	}
	observability.FeedPagesTotal.WithLabelValues(viewerKind).Inc()

	return page, nil
}

// buildPostView projects a post row into its feed shape. A creator row can
// be missing when the account was hard-deleted after the post was written;
// the view then carries an empty summary rather than failing the page.
func buildPostView(post *models.Post, creator *models.User, voteStatus *int) models.PostView {
	view := models.PostView{
		ID:          post.ID,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		Title:       post.Title,
		TextSnippet: Snippet(post.Content),
		Points:      post.Points,
		VoteStatus:  voteStatus,
	}
	if creator != nil {
		view.Creator = creator.Summary()
	}
	return view
}

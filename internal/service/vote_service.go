package service

import (
	"context"

	"riptide/internal/models"
	"riptide/internal/observability"
	"riptide/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// VoteNotifier receives vote events after they commit. Delivery is best
// effort; a slow or absent notifier never fails the vote.
type VoteNotifier interface {
	VoteCast(ctx context.Context, postID, userID uint, value int)
}

// VoteService applies viewer votes through the vote ledger.
type VoteService struct {
	votes    repository.VoteRepository
	notifier VoteNotifier
}

// NewVoteService returns a new VoteService. notifier may be nil.
func NewVoteService(votes repository.VoteRepository, notifier VoteNotifier) *VoteService {
	return &VoteService{votes: votes, notifier: notifier}
}

// Cast records viewerID's vote on postID. The raw value is normalized
// before it reaches the ledger: anything other than -1 counts as an
// upvote. Anonymous viewers cannot vote.
func (s *VoteService) Cast(ctx context.Context, postID, viewerID uint, rawValue int) error {
	if viewerID == 0 {
		return models.NewUnauthorizedError("authentication required to vote")
	}
	if postID == 0 {
		return models.NewValidationError("post id is required")
	}

	span, ctx := observability.NewSpan(ctx, "vote.cast")
	defer span.End()

	value := models.NormalizeVoteValue(rawValue)

	outcome, err := s.votes.Cast(ctx, postID, viewerID, value)
	observability.VotesCastTotal.WithLabelValues(outcome).Inc()
	span.AddAttributes(attribute.String("vote.outcome", outcome))
	if err != nil {
		span.SetError(err)
		return err
	}

	if s.notifier != nil && outcome != observability.VoteOutcomeNoop {
		s.notifier.VoteCast(ctx, postID, viewerID, value)
	}
	return nil
}

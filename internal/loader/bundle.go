package loader

import (
	"context"

	"riptide/internal/models"
	"riptide/internal/repository"
)

// Bundle holds the two loaders one feed request needs: creators by user ID
// and the viewer's votes by (post, user) pair. Build one per request via
// NewBundle and throw it away when the request finishes.
type Bundle struct {
	Users *Loader[uint, *models.User]
	Votes *Loader[models.VoteKey, *models.Vote]
}

// NewBundle wires a fresh pair of loaders onto the given repositories.
func NewBundle(users repository.UserRepository, votes repository.VoteRepository) *Bundle {
	return &Bundle{
		Users: New("users", func(ctx context.Context, ids []uint) (map[uint]*models.User, error) {
			return users.GetByIDs(ctx, ids)
		}),
		Votes: New("votes", func(ctx context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
			return votes.GetByKeys(ctx, keys)
		}),
	}
}

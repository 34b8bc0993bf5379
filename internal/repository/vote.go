package repository

import (
	"context"
	"errors"
	"strings"

	"riptide/internal/cache"
	"riptide/internal/models"
	"riptide/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository is the write ledger for votes. Cast is the only mutation;
// it keeps the votes table and the denormalized posts.points column in sync
// inside a single transaction.
type VoteRepository interface {
	Cast(ctx context.Context, postID, userID uint, value int) (string, error)
	Get(ctx context.Context, postID, userID uint) (*models.Vote, error)
	GetByKeys(ctx context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository returns a new VoteRepository implementation.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Cast records userID's vote on postID and adjusts the post's points.
// value must already be normalized to +1 or -1.
//
// The three outcomes:
//   - no prior vote: insert the row, points += value
//   - prior vote with the opposite value: flip the row, points += 2*value
//     (remove the old contribution, add the new one)
//   - prior vote with the same value: change nothing
//
// The insert uses ON CONFLICT DO NOTHING on the (post_id, user_id) unique
// index and the flip is a conditional UPDATE, so two concurrent casts for
// the same pair serialize on the row without an explicit lock.
func (r *voteRepository) Cast(ctx context.Context, postID, userID uint, value int) (string, error) {
	defer observability.TrackQuery("cast", "votes")()
	outcome := observability.VoteOutcomeNoop

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.Vote{PostID: postID, UserID: userID, Value: value}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&vote)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return models.NewNotFoundError("Post", postID)
			}
			return storeError(res.Error)
		}

		if res.RowsAffected == 1 {
			outcome = observability.VoteOutcomeNew
			return applyPoints(tx, postID, value)
		}

		// The row already exists. Flip it only when the stored value
		// differs; zero rows affected means the idempotent repeat.
		flip := tx.Model(&models.Vote{}).
			Where("post_id = ? AND user_id = ? AND value <> ?", postID, userID, value).
			Update("value", value)
		if flip.Error != nil {
			return storeError(flip.Error)
		}
		if flip.RowsAffected == 1 {
			outcome = observability.VoteOutcomeFlip
			return applyPoints(tx, postID, 2*value)
		}
		return nil
	})

	if err != nil {
		return observability.VoteOutcomeFailed, err
	}
	if outcome != observability.VoteOutcomeNoop {
		cache.InvalidatePost(ctx, postID)
	}
	return outcome, nil
}

// applyPoints adds delta to the post's points as a relative update so
// concurrent casts never clobber each other's increments.
func applyPoints(tx *gorm.DB, postID uint, delta int) error {
	res := tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

func (r *voteRepository) Get(ctx context.Context, postID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return &vote, nil
}

// GetByKeys bulk-fetches votes for a set of (post, user) pairs. In
// practice every key on a feed page shares one viewer, so the pairs are
// grouped by user into user_id = ? AND post_id IN (...) clauses.
func (r *voteRepository) GetByKeys(ctx context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.Vote, error) {
	out := make(map[models.VoteKey]*models.Vote, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	byUser := make(map[uint][]uint)
	for _, k := range keys {
		byUser[k.UserID] = append(byUser[k.UserID], k.PostID)
	}

	tx := r.db.WithContext(ctx).Model(&models.Vote{})
	var cond *gorm.DB
	for userID, postIDs := range byUser {
		pred := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs)
		if cond == nil {
			cond = pred
		} else {
			cond = cond.Or(pred)
		}
	}

	var votes []models.Vote
	if err := tx.Where(cond).Find(&votes).Error; err != nil {
		return nil, storeError(err)
	}
	for i := range votes {
		out[models.VoteKey{PostID: votes[i].PostID, UserID: votes[i].UserID}] = &votes[i]
	}
	return out, nil
}

// isForeignKeyViolation reports whether err is a referential integrity
// failure, which for Cast means the target post does not exist.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE 23503 foreign_key_violation
		return pgErr.Code == "23503"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}

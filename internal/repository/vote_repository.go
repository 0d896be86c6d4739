package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stanstork/pollroom-api/internal/models"
)

type VoteRepository interface {
	InsertVote(ctx context.Context, vote models.Vote) (bool, error)
	HasVoted(ctx context.Context, pollID, userID string) (bool, error)
	CountByOption(ctx context.Context, pollID string) (map[string]int, error)
}

type voteRepository struct {
	db Querier
}

func NewVoteRepository(db Querier) VoteRepository {
	return &voteRepository{db: db}
}

// InsertVote records a ballot. UNIQUE (poll_id, user_id) makes the store the
// arbiter between concurrent votes; a conflicting insert returns false
// instead of an error.
func (r *voteRepository) InsertVote(ctx context.Context, vote models.Vote) (bool, error) {
	const query = `
		INSERT INTO votes (id, poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (poll_id, user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, vote.ID, vote.PollID, vote.OptionID, vote.UserID, vote.CreatedAt.UTC())
	if err != nil {
		return false, errors.Wrap(err, "insert vote")
	}
	return rowsAffected(res)
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2)`

	var voted bool
	if err := r.db.QueryRowContext(ctx, query, pollID, userID).Scan(&voted); err != nil {
		return false, errors.Wrap(err, "check vote")
	}
	return voted, nil
}

// CountByOption returns the number of votes per option id. Options without
// votes are absent from the map.
func (r *voteRepository) CountByOption(ctx context.Context, pollID string) (map[string]int, error) {
	const query = `
		SELECT option_id, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY option_id`

	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, errors.Wrap(err, "count votes")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			optionID string
			n        int
		)
		if err := rows.Scan(&optionID, &n); err != nil {
			return nil, errors.Wrap(err, "scan vote count")
		}
		counts[optionID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate vote counts")
	}
	return counts, nil
}

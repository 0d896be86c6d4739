package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type MembershipRepository interface {
	AddMember(ctx context.Context, pollID, userID string, joinedAt time.Time) (bool, error)
	RemoveMember(ctx context.Context, pollID, userID string) (bool, error)
	IsMember(ctx context.Context, pollID, userID string) (bool, error)
}

type membershipRepository struct {
	db Querier
}

func NewMembershipRepository(db Querier) MembershipRepository {
	return &membershipRepository{db: db}
}

// AddMember inserts the (poll, user) link. It returns false when the user
// was already a member.
func (r *membershipRepository) AddMember(ctx context.Context, pollID, userID string, joinedAt time.Time) (bool, error) {
	const query = `
		INSERT INTO poll_members (poll_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, pollID, userID, joinedAt.UTC())
	if err != nil {
		return false, errors.Wrap(err, "insert poll member")
	}
	return rowsAffected(res)
}

func (r *membershipRepository) RemoveMember(ctx context.Context, pollID, userID string) (bool, error) {
	const query = `DELETE FROM poll_members WHERE poll_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, pollID, userID)
	if err != nil {
		return false, errors.Wrap(err, "delete poll member")
	}
	return rowsAffected(res)
}

func (r *membershipRepository) IsMember(ctx context.Context, pollID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM poll_members WHERE poll_id = $1 AND user_id = $2)`

	var member bool
	if err := r.db.QueryRowContext(ctx, query, pollID, userID).Scan(&member); err != nil {
		return false, errors.Wrap(err, "check poll member")
	}
	return member, nil
}

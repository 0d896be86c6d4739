package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// InviteCodeRepository is the registry of every invite code ever issued.
// Codes are never removed, so a code cannot be handed out twice even after
// its poll is deleted.
type InviteCodeRepository interface {
	Reserve(ctx context.Context, code string, issuedAt time.Time) (bool, error)
}

type inviteCodeRepository struct {
	db Querier
}

func NewInviteCodeRepository(db Querier) InviteCodeRepository {
	return &inviteCodeRepository{db: db}
}

// Reserve records code as issued. It returns false when the code was
// already taken; a conflict does not abort the surrounding transaction.
func (r *inviteCodeRepository) Reserve(ctx context.Context, code string, issuedAt time.Time) (bool, error) {
	const query = `
		INSERT INTO invite_codes (code, issued_at)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, code, issuedAt.UTC())
	if err != nil {
		return false, errors.Wrap(err, "reserve invite code")
	}
	return rowsAffected(res)
}

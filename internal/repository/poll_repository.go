package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/stanstork/pollroom-api/internal/models"
)

type PollRepository interface {
	CreatePoll(ctx context.Context, poll models.Poll) error
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	GetPollByInviteCode(ctx context.Context, code string) (models.Poll, error)
	ListPollsForMember(ctx context.Context, userID string) ([]models.Poll, error)
	MarkInactive(ctx context.Context, pollID string, endedAt time.Time) (bool, error)
	DeletePoll(ctx context.Context, pollID string) error
}

type pollRepository struct {
	db Querier
}

func NewPollRepository(db Querier) PollRepository {
	return &pollRepository{db: db}
}

const pollColumns = `p.id, p.title, p.owner_id, p.invite_code, p.expires_at, p.results_visible_live, p.is_active, p.created_at, p.ended_at`

// CreatePoll inserts the poll row and its options. Callers run it inside a
// transaction together with the invite code reservation and owner membership.
func (r *pollRepository) CreatePoll(ctx context.Context, poll models.Poll) error {
	const pollQuery = `
		INSERT INTO polls (id, title, owner_id, invite_code, expires_at, results_visible_live, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, pollQuery,
		poll.ID,
		poll.Title,
		poll.OwnerID,
		poll.InviteCode,
		poll.ExpiresAt.UTC(),
		poll.ResultsVisibleLive,
		poll.IsActive,
		poll.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "insert poll")
	}

	const optionQuery = `
		INSERT INTO poll_options (id, poll_id, text, sort_order)
		VALUES ($1, $2, $3, $4)`
	for _, opt := range poll.Options {
		if _, err := r.db.ExecContext(ctx, optionQuery, opt.ID, poll.ID, opt.Text, opt.Position); err != nil {
			return errors.Wrapf(err, "insert option %d", opt.Position)
		}
	}
	return nil
}

func (r *pollRepository) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	const query = `SELECT ` + pollColumns + ` FROM polls p WHERE p.id = $1`
	return r.getPoll(ctx, query, pollID)
}

func (r *pollRepository) GetPollByInviteCode(ctx context.Context, code string) (models.Poll, error) {
	const query = `SELECT ` + pollColumns + ` FROM polls p WHERE p.invite_code = $1`
	return r.getPoll(ctx, query, code)
}

func (r *pollRepository) getPoll(ctx context.Context, query string, arg string) (models.Poll, error) {
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return models.Poll{}, err
	}

	const optionQuery = `
		SELECT id, poll_id, text, sort_order
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, optionQuery, poll.ID)
	if err != nil {
		return models.Poll{}, errors.Wrap(err, "query options")
	}
	defer rows.Close()

	for rows.Next() {
		opt, err := scanOption(rows)
		if err != nil {
			return models.Poll{}, err
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, errors.Wrap(err, "iterate options")
	}
	return poll, nil
}

// ListPollsForMember returns every poll userID belongs to, newest first,
// with options attached.
func (r *pollRepository) ListPollsForMember(ctx context.Context, userID string) ([]models.Poll, error) {
	const pollQuery = `
		SELECT ` + pollColumns + `
		FROM polls p
		JOIN poll_members m ON m.poll_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC, p.id`

	rows, err := r.db.QueryContext(ctx, pollQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query member polls")
	}

	var polls []models.Poll
	index := make(map[string]int)
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[poll.ID] = len(polls)
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "iterate member polls")
	}
	rows.Close()

	if len(polls) == 0 {
		return polls, nil
	}

	const optionQuery = `
		SELECT o.id, o.poll_id, o.text, o.sort_order
		FROM poll_options o
		JOIN poll_members m ON m.poll_id = o.poll_id
		WHERE m.user_id = $1
		ORDER BY o.poll_id, o.sort_order`

	optRows, err := r.db.QueryContext(ctx, optionQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query member poll options")
	}
	defer optRows.Close()

	for optRows.Next() {
		opt, err := scanOption(optRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[opt.PollID]; ok {
			polls[i].Options = append(polls[i].Options, opt)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate member poll options")
	}
	return polls, nil
}

// MarkInactive flips is_active to false. The update is conditional on the
// poll still being active, so it reports true only for the call that made
// the transition and never revives an ended poll.
func (r *pollRepository) MarkInactive(ctx context.Context, pollID string, endedAt time.Time) (bool, error) {
	const query = `
		UPDATE polls
		SET is_active = $1, ended_at = $2
		WHERE id = $3 AND is_active = $4`

	res, err := r.db.ExecContext(ctx, query, false, endedAt.UTC(), pollID, true)
	if err != nil {
		return false, errors.Wrap(err, "mark poll inactive")
	}
	return rowsAffected(res)
}

// DeletePoll removes the poll together with its votes, memberships and
// options. It returns sql.ErrNoRows when the poll does not exist.
func (r *pollRepository) DeletePoll(ctx context.Context, pollID string) error {
	cascade := []struct {
		table string
		query string
	}{
		{"votes", `DELETE FROM votes WHERE poll_id = $1`},
		{"poll_members", `DELETE FROM poll_members WHERE poll_id = $1`},
		{"poll_options", `DELETE FROM poll_options WHERE poll_id = $1`},
	}
	for _, step := range cascade {
		if _, err := r.db.ExecContext(ctx, step.query, pollID); err != nil {
			return errors.Wrapf(err, "delete %s", step.table)
		}
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, pollID)
	if err != nil {
		return errors.Wrap(err, "delete poll")
	}
	deleted, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !deleted {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPoll(scanner rowScanner) (models.Poll, error) {
	var (
		poll    models.Poll
		endedAt sql.NullTime
	)
	err := scanner.Scan(
		&poll.ID,
		&poll.Title,
		&poll.OwnerID,
		&poll.InviteCode,
		&poll.ExpiresAt,
		&poll.ResultsVisibleLive,
		&poll.IsActive,
		&poll.CreatedAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Poll{}, sql.ErrNoRows
		}
		return models.Poll{}, errors.Wrap(err, "scan poll")
	}

	poll.ExpiresAt = poll.ExpiresAt.UTC()
	poll.CreatedAt = poll.CreatedAt.UTC()
	if endedAt.Valid {
		t := endedAt.Time.UTC()
		poll.EndedAt = &t
	}
	return poll, nil
}

func scanOption(scanner rowScanner) (models.Option, error) {
	var opt models.Option
	if err := scanner.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Position); err != nil {
		return models.Option{}, errors.Wrap(err, "scan option")
	}
	return opt, nil
}

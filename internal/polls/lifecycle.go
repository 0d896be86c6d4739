package polls

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
)

type CreatePollInput struct {
	Title              string
	Options            []string
	ExpiresAt          time.Time
	ResultsVisibleLive bool
}

func (in CreatePollInput) validate(now time.Time) (CreatePollInput, error) {
	out := CreatePollInput{
		Title:              strings.TrimSpace(in.Title),
		ExpiresAt:          in.ExpiresAt.UTC(),
		ResultsVisibleLive: in.ResultsVisibleLive,
	}

	if out.Title == "" {
		return out, invalidInput("title is required")
	}
	if utf8.RuneCountInString(out.Title) > models.MaxTitleLength {
		return out, invalidInput(fmt.Sprintf("title must be at most %d characters", models.MaxTitleLength))
	}
	if len(in.Options) == 0 {
		return out, invalidInput("at least one option is required")
	}
	for i, raw := range in.Options {
		text := strings.TrimSpace(raw)
		if text == "" {
			return out, invalidInput(fmt.Sprintf("option %d is empty", i+1))
		}
		if utf8.RuneCountInString(text) > models.MaxOptionLength {
			return out, invalidInput(fmt.Sprintf("option %d must be at most %d characters", i+1, models.MaxOptionLength))
		}
		out.Options = append(out.Options, text)
	}
	if !out.ExpiresAt.After(now) {
		return out, invalidInput("expiry date must be in the future")
	}
	return out, nil
}

// CreatePoll validates the request and stores the poll, its options, a fresh
// invite code and the owner's membership in one transaction.
func (s *Service) CreatePoll(ctx context.Context, ownerID string, in CreatePollInput) (models.PollView, error) {
	now := s.clock.Now()
	in, err := in.validate(now)
	if err != nil {
		return models.PollView{}, err
	}

	poll := models.Poll{
		ID:                 uuid.NewString(),
		Title:              in.Title,
		OwnerID:            ownerID,
		ExpiresAt:          in.ExpiresAt,
		ResultsVisibleLive: in.ResultsVisibleLive,
		IsActive:           true,
		CreatedAt:          now,
	}
	for i, text := range in.Options {
		poll.Options = append(poll.Options, models.Option{
			ID:       uuid.NewString(),
			PollID:   poll.ID,
			Text:     text,
			Position: i,
		})
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		code, err := s.reserveInviteCode(ctx, repos.InviteCodes, now)
		if err != nil {
			return err
		}
		poll.InviteCode = code

		if err := repos.Polls.CreatePoll(ctx, poll); err != nil {
			return err
		}
		if _, err := repos.Members.AddMember(ctx, poll.ID, ownerID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return models.PollView{}, errors.Wrap(err, "create poll")
	}

	s.logger.Info().
		Str("poll_id", poll.ID).
		Str("owner_id", ownerID).
		Int("options", len(poll.Options)).
		Time("expires_at", poll.ExpiresAt).
		Msg("poll created")

	// The creator has not voted yet and sees zero counts on a fresh poll,
	// whatever the live-visibility setting.
	view := newView(poll, ownerID)
	for i := range view.Options {
		view.Options[i].VoteCount = 0
		view.Options[i].Hidden = false
	}
	return view, nil
}

func (s *Service) reserveInviteCode(ctx context.Context, codes repository.InviteCodeRepository, now time.Time) (string, error) {
	for attempt := 1; attempt <= s.cfg.InviteCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		reserved, err := codes.Reserve(ctx, code, now)
		if err != nil {
			return "", err
		}
		if reserved {
			return code, nil
		}
		s.logger.Debug().Int("attempt", attempt).Msg("invite code collision, retrying")
	}
	return "", errors.Errorf("no unique invite code after %d attempts", s.cfg.InviteCodeAttempts)
}

// EvaluateExpiry ends an active poll whose deadline is before now and returns
// the poll as it is after the check. It is idempotent and never reactivates a
// poll.
func (s *Service) EvaluateExpiry(ctx context.Context, poll models.Poll, now time.Time) (models.Poll, error) {
	if !poll.IsActive || !poll.IsExpired(now) {
		return poll, nil
	}

	changed, err := s.store.Polls.MarkInactive(ctx, poll.ID, poll.ExpiresAt)
	if err != nil {
		return models.Poll{}, err
	}
	if !changed {
		// Another request ended it first; report what the store holds.
		current, err := s.store.Polls.GetPoll(ctx, poll.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Poll{}, ErrPollNotFound
			}
			return models.Poll{}, err
		}
		return current, nil
	}

	endedAt := poll.ExpiresAt
	poll.IsActive = false
	poll.EndedAt = &endedAt
	s.logger.Debug().Str("poll_id", poll.ID).Time("expires_at", poll.ExpiresAt).Msg("poll expired")
	return poll, nil
}

// EndPoll closes voting on a poll at the owner's request.
func (s *Service) EndPoll(ctx context.Context, pollID, requesterID string) error {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if !poll.IsOwnedBy(requesterID) {
		return ErrNotOwner
	}

	now := s.clock.Now()
	poll, err = s.EvaluateExpiry(ctx, poll, now)
	if err != nil {
		return err
	}
	if !poll.IsActive {
		return ErrAlreadyEnded
	}

	changed, err := s.store.Polls.MarkInactive(ctx, poll.ID, now)
	if err != nil {
		return err
	}
	if !changed {
		return ErrAlreadyEnded
	}

	s.logger.Info().Str("poll_id", poll.ID).Msg("poll ended by owner")
	return nil
}

// DeletePoll removes a poll with all of its options, votes and memberships.
func (s *Service) DeletePoll(ctx context.Context, pollID, requesterID string) error {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if !poll.IsOwnedBy(requesterID) {
		return ErrNotOwner
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		return repos.Polls.DeletePoll(ctx, poll.ID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPollNotFound
		}
		return errors.Wrap(err, "delete poll")
	}

	s.logger.Info().Str("poll_id", poll.ID).Msg("poll deleted")
	return nil
}

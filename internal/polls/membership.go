package polls

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/stanstork/pollroom-api/internal/models"
)

// JoinByInviteCode adds userID to the poll that owns code and returns the
// poll id.
func (s *Service) JoinByInviteCode(ctx context.Context, code, userID string) (string, error) {
	code = NormalizeInviteCode(code)
	if code == "" {
		return "", invalidInput("invite code is required")
	}
	if len(code) > models.MaxInviteCodeLength {
		return "", invalidInput("invite code is too long")
	}

	poll, err := s.store.Polls.GetPollByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInviteNotFound
		}
		return "", err
	}

	poll, err = s.EvaluateExpiry(ctx, poll, s.clock.Now())
	if err != nil {
		return "", err
	}
	if !poll.IsActive {
		return "", ErrPollEnded
	}

	added, err := s.store.Members.AddMember(ctx, poll.ID, userID, s.clock.Now())
	if err != nil {
		return "", err
	}
	if !added {
		return "", ErrAlreadyMember
	}

	s.logger.Info().Str("poll_id", poll.ID).Str("user_id", userID).Msg("user joined poll")
	return poll.ID, nil
}

// LeavePoll removes a non-owner from the poll. Leaving a poll one does not
// belong to succeeds without changes.
func (s *Service) LeavePoll(ctx context.Context, pollID, userID string) error {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.IsOwnedBy(userID) {
		return ErrOwnerCannotLeave
	}

	removed, err := s.store.Members.RemoveMember(ctx, poll.ID, userID)
	if err != nil {
		return err
	}
	if removed {
		s.logger.Info().Str("poll_id", poll.ID).Str("user_id", userID).Msg("user left poll")
	}
	return nil
}

// IsMember reports whether userID may see and vote on the poll.
func (s *Service) IsMember(ctx context.Context, pollID, userID string) (bool, error) {
	return s.store.Members.IsMember(ctx, pollID, userID)
}

// ListJoinedPolls returns the viewer's polls, newest first, each brought up
// to date with its expiry and projected for the viewer.
func (s *Service) ListJoinedPolls(ctx context.Context, userID string) ([]models.PollView, error) {
	polls, err := s.store.Polls.ListPollsForMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]models.PollView, 0, len(polls))
	for _, poll := range polls {
		poll, err := s.EvaluateExpiry(ctx, poll, now)
		if err != nil {
			if errors.Is(err, ErrPollNotFound) {
				continue
			}
			return nil, err
		}
		view, err := s.ProjectResults(ctx, poll, userID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetPoll returns a single poll projected for a member.
func (s *Service) GetPoll(ctx context.Context, pollID, viewerID string) (models.PollView, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.PollView{}, err
	}

	member, err := s.store.Members.IsMember(ctx, poll.ID, viewerID)
	if err != nil {
		return models.PollView{}, err
	}
	if !member {
		return models.PollView{}, ErrNotMember
	}

	poll, err = s.EvaluateExpiry(ctx, poll, s.clock.Now())
	if err != nil {
		return models.PollView{}, err
	}
	return s.ProjectResults(ctx, poll, viewerID)
}

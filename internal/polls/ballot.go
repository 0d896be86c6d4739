package polls

import (
	"context"

	"github.com/google/uuid"
	"github.com/stanstork/pollroom-api/internal/models"
)

// CastVote records userID's single vote in the poll. Checks run from the
// most general failure to the most specific one.
func (s *Service) CastVote(ctx context.Context, pollID, userID, optionID string) (models.Vote, error) {
	poll, err := s.loadCurrentPoll(ctx, pollID)
	if err != nil {
		return models.Vote{}, err
	}
	if !poll.IsActive {
		return models.Vote{}, ErrPollEnded
	}

	member, err := s.store.Members.IsMember(ctx, poll.ID, userID)
	if err != nil {
		return models.Vote{}, err
	}
	if !member {
		return models.Vote{}, ErrForbidden
	}

	if !poll.HasOption(optionID) {
		return models.Vote{}, ErrInvalidOption
	}

	vote := models.Vote{
		ID:        uuid.NewString(),
		PollID:    poll.ID,
		OptionID:  optionID,
		UserID:    userID,
		CreatedAt: s.clock.Now(),
	}
	inserted, err := s.store.Votes.InsertVote(ctx, vote)
	if err != nil {
		return models.Vote{}, err
	}
	if !inserted {
		return models.Vote{}, ErrAlreadyVoted
	}

	s.logger.Info().Str("poll_id", poll.ID).Str("user_id", userID).Msg("vote cast")
	return vote, nil
}

package polls

import (
	"context"

	"github.com/stanstork/pollroom-api/internal/models"
)

// ResultsVisible reports whether true counts may be shown for poll.
func ResultsVisible(poll models.Poll) bool {
	return poll.ResultsVisibleLive || !poll.IsActive
}

// ProjectResults builds the viewer's read model of poll. While results are
// sealed every option carries models.HiddenCount instead of a count. It only
// reads from the store.
func (s *Service) ProjectResults(ctx context.Context, poll models.Poll, viewerID string) (models.PollView, error) {
	view := newView(poll, viewerID)

	voted, err := s.store.Votes.HasVoted(ctx, poll.ID, viewerID)
	if err != nil {
		return models.PollView{}, err
	}
	view.UserVoted = voted

	if !ResultsVisible(poll) {
		return view, nil
	}

	counts, err := s.store.Votes.CountByOption(ctx, poll.ID)
	if err != nil {
		return models.PollView{}, err
	}
	for i := range view.Options {
		view.Options[i].VoteCount = counts[view.Options[i].ID]
		view.Options[i].Hidden = false
	}
	return view, nil
}

// newView copies poll into a fresh view with every count hidden.
func newView(poll models.Poll, viewerID string) models.PollView {
	view := models.PollView{
		ID:                 poll.ID,
		Title:              poll.Title,
		OwnerID:            poll.OwnerID,
		IsOwner:            poll.IsOwnedBy(viewerID),
		InviteCode:         poll.InviteCode,
		ExpiresAt:          poll.ExpiresAt,
		ResultsVisibleLive: poll.ResultsVisibleLive,
		IsActive:           poll.IsActive,
		CreatedAt:          poll.CreatedAt,
		Options:            make([]models.OptionResult, len(poll.Options)),
	}
	if poll.EndedAt != nil {
		endedAt := *poll.EndedAt
		view.EndedAt = &endedAt
	}
	for i, opt := range poll.Options {
		view.Options[i] = models.OptionResult{
			ID:        opt.ID,
			PollID:    opt.PollID,
			Text:      opt.Text,
			VoteCount: models.HiddenCount,
			Hidden:    true,
		}
	}
	return view
}

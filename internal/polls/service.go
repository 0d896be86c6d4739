// Package polls implements the poll lifecycle and voting rules: who may see
// and vote on a poll, when a poll stops accepting votes, and what result
// counts a viewer is allowed to see.
package polls

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/clock"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
)

type Config struct {
	InviteCodeLength   int
	InviteCodeAttempts int
}

type Service struct {
	store   *repository.Store
	clock   clock.Clock
	cfg     Config
	newCode func() (string, error)
	logger  zerolog.Logger
}

type ServiceOption func(*Service)

// WithCodeGenerator replaces the random invite code source.
func WithCodeGenerator(gen func() (string, error)) ServiceOption {
	return func(s *Service) {
		s.newCode = gen
	}
}

func NewService(store *repository.Store, clk clock.Clock, cfg Config, logger zerolog.Logger, opts ...ServiceOption) *Service {
	if cfg.InviteCodeLength < minInviteCodeLength || cfg.InviteCodeLength > models.MaxInviteCodeLength {
		cfg.InviteCodeLength = DefaultInviteCodeLength
	}
	if cfg.InviteCodeAttempts <= 0 {
		cfg.InviteCodeAttempts = DefaultInviteCodeAttempts
	}

	s := &Service{
		store:  store,
		clock:  clk,
		cfg:    cfg,
		logger: logger.With().Str("component", "polls").Logger(),
	}
	s.newCode = func() (string, error) {
		return GenerateInviteCode(s.cfg.InviteCodeLength)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadPoll fetches a poll and maps a missing row to ErrPollNotFound.
func (s *Service) loadPoll(ctx context.Context, pollID string) (models.Poll, error) {
	if pollID == "" {
		return models.Poll{}, ErrPollNotFound
	}
	poll, err := s.store.Polls.GetPoll(ctx, pollID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Poll{}, ErrPollNotFound
		}
		return models.Poll{}, err
	}
	return poll, nil
}

// loadCurrentPoll fetches a poll and applies any pending expiry before the
// caller looks at its state.
func (s *Service) loadCurrentPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := s.loadPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, err
	}
	return s.EvaluateExpiry(ctx, poll, s.clock.Now())
}

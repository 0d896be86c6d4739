package polls

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
	"github.com/stanstork/pollroom-api/internal/testutil"
)

type fixture struct {
	store *repository.Store
	clock *clockwork.FakeClock
	svc   *Service
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()

	store := testutil.SetupTestStore(t)
	clk := clockwork.NewFakeClockAt(testutil.Epoch)
	svc := NewService(store, clk, Config{}, zerolog.Nop(), opts...)
	return &fixture{store: store, clock: clk, svc: svc}
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	return testutil.CreateTestUser(t, f.store, name+"@example.com")
}

// createPoll creates a poll expiring in one hour.
func (f *fixture) createPoll(t *testing.T, owner models.User, live bool, options ...string) models.PollView {
	t.Helper()

	if len(options) == 0 {
		options = []string{"A", "B"}
	}
	view, err := f.svc.CreatePoll(context.Background(), owner.ID, CreatePollInput{
		Title:              "Lunch?",
		Options:            options,
		ExpiresAt:          f.clock.Now().Add(time.Hour),
		ResultsVisibleLive: live,
	})
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	return view
}

func (f *fixture) join(t *testing.T, view models.PollView, user models.User) {
	t.Helper()
	if _, err := f.svc.JoinByInviteCode(context.Background(), view.InviteCode, user.ID); err != nil {
		t.Fatalf("JoinByInviteCode(%s) error = %v", user.Email, err)
	}
}

func (f *fixture) vote(t *testing.T, view models.PollView, user models.User, option int) {
	t.Helper()
	if _, err := f.svc.CastVote(context.Background(), view.ID, user.ID, view.Options[option].ID); err != nil {
		t.Fatalf("CastVote(%s) error = %v", user.Email, err)
	}
}

func (f *fixture) poll(t *testing.T, pollID string) models.Poll {
	t.Helper()
	poll, err := f.store.Polls.GetPoll(context.Background(), pollID)
	if err != nil {
		t.Fatalf("GetPoll(%s) error = %v", pollID, err)
	}
	return poll
}

// sequenceCodes returns a generator that yields codes in order and then
// keeps repeating the last one.
func sequenceCodes(codes ...string) func() (string, error) {
	var (
		mu sync.Mutex
		i  int
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(codes) == 0 {
			return "", fmt.Errorf("no codes")
		}
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

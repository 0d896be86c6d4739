package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stanstork/pollroom-api/internal/models"
	"github.com/stanstork/pollroom-api/internal/repository"
	"github.com/stanstork/pollroom-api/internal/testutil"
)

func newPoll(ownerID, code string) models.Poll {
	poll := models.Poll{
		ID:                 uuid.NewString(),
		Title:              "Lunch?",
		OwnerID:            ownerID,
		InviteCode:         code,
		ExpiresAt:          testutil.Epoch.Add(time.Hour),
		ResultsVisibleLive: true,
		IsActive:           true,
		CreatedAt:          testutil.Epoch,
	}
	for i, text := range []string{"A", "B"} {
		poll.Options = append(poll.Options, models.Option{ID: uuid.NewString(), PollID: poll.ID, Text: text, Position: i})
	}
	return poll
}

func insertPoll(t *testing.T, store *repository.Store, poll models.Poll) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.InviteCodes.Reserve(ctx, poll.InviteCode, testutil.Epoch); err != nil {
		t.Fatal(err)
	}
	if err := store.Polls.CreatePoll(ctx, poll); err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, store, "alice@example.com")
	if user.PasswordHash == testutil.TestPassword || user.PasswordHash == "" {
		t.Fatal("password not hashed")
	}

	if _, err := store.Users.CreateUser(ctx, "alice@example.com", testutil.TestPassword, testutil.Epoch); !errors.Is(err, repository.ErrEmailTaken) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrEmailTaken", err)
	}

	got, err := store.Users.AuthenticateUser(ctx, "alice@example.com", testutil.TestPassword)
	if err != nil || got.ID != user.ID {
		t.Fatalf("AuthenticateUser() = %+v, %v", got, err)
	}
	if !got.CreatedAt.Equal(testutil.Epoch) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testutil.Epoch)
	}
	if _, err := store.Users.AuthenticateUser(ctx, "alice@example.com", "Wrong1!pw"); !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := store.Users.AuthenticateUser(ctx, "bob@example.com", testutil.TestPassword); !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
	if _, err := store.Users.GetUserByID(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUserByID(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestInviteCodeRegistry(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	reserved, err := store.InviteCodes.Reserve(ctx, "ABCD2345", testutil.Epoch)
	if err != nil || !reserved {
		t.Fatalf("Reserve() = %v, %v", reserved, err)
	}
	reserved, err = store.InviteCodes.Reserve(ctx, "ABCD2345", testutil.Epoch)
	if err != nil || reserved {
		t.Fatalf("second Reserve() = %v, %v; want false", reserved, err)
	}

	if n := testutil.CountRows(t, store.DB(), "invite_codes", "code", "ABCD2345"); n != 1 {
		t.Errorf("invite_codes rows for ABCD2345 = %d, want 1", n)
	}
	if n := testutil.CountRows(t, store.DB(), "invite_codes", "code", "ZZZZ2345"); n != 0 {
		t.Errorf("invite_codes rows for ZZZZ2345 = %d, want 0", n)
	}
}

func TestPollRoundTrip(t *testing.T) {
	store := testutil.SetupTestStore(t)
	owner := testutil.CreateTestUser(t, store, "owner@example.com")
	ctx := context.Background()

	poll := newPoll(owner.ID, "ABCD2345")
	insertPoll(t, store, poll)

	got, err := store.Polls.GetPollByInviteCode(ctx, "ABCD2345")
	if err != nil {
		t.Fatalf("GetPollByInviteCode() error = %v", err)
	}
	if got.ID != poll.ID || !got.ExpiresAt.Equal(poll.ExpiresAt) || !got.IsActive || got.EndedAt != nil {
		t.Errorf("GetPollByInviteCode() = %+v", got)
	}
	if got.ExpiresAt.Location() != time.UTC {
		t.Errorf("ExpiresAt location = %v, want UTC", got.ExpiresAt.Location())
	}
	if len(got.Options) != 2 || got.Options[0].Text != "A" || got.Options[1].Position != 1 {
		t.Errorf("options = %+v", got.Options)
	}

	endedAt := testutil.Epoch.Add(30 * time.Minute)
	changed, err := store.Polls.MarkInactive(ctx, poll.ID, endedAt)
	if err != nil || !changed {
		t.Fatalf("MarkInactive() = %v, %v", changed, err)
	}
	changed, err = store.Polls.MarkInactive(ctx, poll.ID, endedAt.Add(time.Hour))
	if err != nil || changed {
		t.Fatalf("second MarkInactive() = %v, %v; want false", changed, err)
	}

	got, err = store.Polls.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetPoll() error = %v", err)
	}
	if got.IsActive || got.EndedAt == nil || !got.EndedAt.Equal(endedAt) {
		t.Errorf("after MarkInactive: active=%v ended_at=%v", got.IsActive, got.EndedAt)
	}

	if _, err := store.Polls.GetPoll(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetPoll(missing) error = %v, want sql.ErrNoRows", err)
	}
	if err := store.Polls.DeletePoll(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("DeletePoll(missing) error = %v, want sql.ErrNoRows", err)
	}
}

func TestMembershipAndVotes(t *testing.T) {
	store := testutil.SetupTestStore(t)
	owner := testutil.CreateTestUser(t, store, "owner@example.com")
	guest := testutil.CreateTestUser(t, store, "guest@example.com")
	ctx := context.Background()

	poll := newPoll(owner.ID, "ABCD2345")
	insertPoll(t, store, poll)

	for _, id := range []string{owner.ID, guest.ID} {
		added, err := store.Members.AddMember(ctx, poll.ID, id, testutil.Epoch)
		if err != nil || !added {
			t.Fatalf("AddMember() = %v, %v", added, err)
		}
	}
	if added, err := store.Members.AddMember(ctx, poll.ID, guest.ID, testutil.Epoch); err != nil || added {
		t.Errorf("duplicate AddMember() = %v, %v; want false", added, err)
	}
	if n := testutil.CountRows(t, store.DB(), "poll_members", "poll_id", poll.ID); n != 2 {
		t.Errorf("poll_members rows = %d, want 2", n)
	}

	polls, err := store.Polls.ListPollsForMember(ctx, guest.ID)
	if err != nil || len(polls) != 1 || len(polls[0].Options) != 2 {
		t.Fatalf("ListPollsForMember() = %+v, %v", polls, err)
	}

	vote := models.Vote{ID: uuid.NewString(), PollID: poll.ID, OptionID: poll.Options[1].ID, UserID: guest.ID, CreatedAt: testutil.Epoch}
	if ok, err := store.Votes.InsertVote(ctx, vote); err != nil || !ok {
		t.Fatalf("InsertVote() = %v, %v", ok, err)
	}
	vote.ID = uuid.NewString()
	vote.OptionID = poll.Options[0].ID
	if ok, err := store.Votes.InsertVote(ctx, vote); err != nil || ok {
		t.Fatalf("second InsertVote() = %v, %v; want false", ok, err)
	}

	counts, err := store.Votes.CountByOption(ctx, poll.ID)
	if err != nil {
		t.Fatalf("CountByOption() error = %v", err)
	}
	if counts[poll.Options[0].ID] != 0 || counts[poll.Options[1].ID] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if voted, err := store.Votes.HasVoted(ctx, poll.ID, owner.ID); err != nil || voted {
		t.Errorf("HasVoted(owner) = %v, %v", voted, err)
	}

	if removed, err := store.Members.RemoveMember(ctx, poll.ID, guest.ID); err != nil || !removed {
		t.Errorf("RemoveMember() = %v, %v", removed, err)
	}
	if removed, err := store.Members.RemoveMember(ctx, poll.ID, guest.ID); err != nil || removed {
		t.Errorf("second RemoveMember() = %v, %v; want false", removed, err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.InviteCodes.Reserve(ctx, "ROLLBACK", testutil.Epoch); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}
	if testutil.CountRows(t, store.DB(), "invite_codes", "code", "ROLLBACK") != 0 {
		t.Error("rolled back reservation is visible")
	}

	err = store.WithTx(ctx, func(repos repository.Repositories) error {
		_, err := repos.InviteCodes.Reserve(ctx, "COMMITS", testutil.Epoch)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if testutil.CountRows(t, store.DB(), "invite_codes", "code", "COMMITS") != 1 {
		t.Error("committed reservation missing")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	store := testutil.SetupTestStore(t)

	err := store.Polls.CreatePoll(context.Background(), newPoll("no-such-user", "FKCHECK2"))
	if err == nil {
		t.Fatal("CreatePoll() with unknown owner succeeded")
	}
	if repository.IsUniqueViolation(err) {
		t.Error("foreign key failure reported as unique violation")
	}
	if !strings.Contains(strings.ToUpper(err.Error()), "FOREIGN KEY") {
		t.Errorf("error = %v, want foreign key failure", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := repository.Open(context.Background(), "mysql", "x"); err == nil {
		t.Error("Open(mysql) succeeded")
	}
}

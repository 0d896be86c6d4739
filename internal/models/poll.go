package models

import "time"

const (
	MaxTitleLength      = 150
	MaxOptionLength     = 100
	MaxInviteCodeLength = 10
)

// HiddenCount is reported in place of a vote count while results are sealed.
// It is never a valid count, so clients can tell it apart from zero.
const HiddenCount = -1

type Poll struct {
	ID                 string     `json:"id" db:"id"`
	Title              string     `json:"title" db:"title"`
	OwnerID            string     `json:"owner_id" db:"owner_id"`
	InviteCode         string     `json:"invite_code" db:"invite_code"`
	ExpiresAt          time.Time  `json:"expires_at" db:"expires_at"`
	ResultsVisibleLive bool       `json:"results_visible_live" db:"results_visible_live"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	Options            []Option   `json:"options"`
}

// IsExpired reports whether the poll's deadline has passed at now.
func (p Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}

// IsOwnedBy reports whether userID owns the poll.
func (p Poll) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// HasOption reports whether optionID is one of the poll's options.
func (p Poll) HasOption(optionID string) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

type Option struct {
	ID       string `json:"id" db:"id"`
	PollID   string `json:"poll_id" db:"poll_id"`
	Text     string `json:"text" db:"text"`
	Position int    `json:"position" db:"position"`
}

type Vote struct {
	ID        string    `json:"id" db:"id"`
	PollID    string    `json:"poll_id" db:"poll_id"`
	OptionID  string    `json:"option_id" db:"option_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PollView is the per-viewer read model of a poll. It is built for each
// request and never written back.
type PollView struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	OwnerID            string         `json:"owner_id"`
	IsOwner            bool           `json:"is_owner"`
	InviteCode         string         `json:"invite_code"`
	ExpiresAt          time.Time      `json:"expires_at"`
	ResultsVisibleLive bool           `json:"results_visible_live"`
	IsActive           bool           `json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	EndedAt            *time.Time     `json:"ended_at,omitempty"`
	UserVoted          bool           `json:"user_voted"`
	Options            []OptionResult `json:"options"`
}

type OptionResult struct {
	ID        string `json:"id"`
	PollID    string `json:"poll_id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
	Hidden    bool   `json:"hidden"`
}

package polls

import "errors"

// Kind classifies a domain error. Every kind is recoverable by the caller.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a rejected poll operation. Two errors match under errors.Is when
// their codes are equal, so every validation failure matches ErrInvalidInput.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Code: "invalid_input", Message: "invalid input"}
	ErrInvalidOption    = &Error{Kind: KindInvalidInput, Code: "invalid_option", Message: "option does not belong to this poll"}
	ErrPollNotFound     = &Error{Kind: KindNotFound, Code: "poll_not_found", Message: "poll not found"}
	ErrInviteNotFound   = &Error{Kind: KindNotFound, Code: "invite_not_found", Message: "invalid invite code"}
	ErrNotOwner         = &Error{Kind: KindForbidden, Code: "not_owner", Message: "only the poll owner can do this"}
	ErrNotMember        = &Error{Kind: KindForbidden, Code: "not_member", Message: "you do not have access to this poll"}
	ErrOwnerCannotLeave = &Error{Kind: KindConflict, Code: "owner_cannot_leave", Message: "the poll owner cannot leave the poll"}
	ErrAlreadyMember    = &Error{Kind: KindConflict, Code: "already_member", Message: "you already belong to this poll"}
	ErrAlreadyVoted     = &Error{Kind: KindConflict, Code: "already_voted", Message: "you have already voted in this poll"}
	ErrPollEnded        = &Error{Kind: KindConflict, Code: "poll_ended", Message: "this poll has ended"}
	ErrAlreadyEnded     = &Error{Kind: KindConflict, Code: "already_ended", Message: "this poll has already ended"}
)

// ErrForbidden is the generic authorization failure returned to non-members.
var ErrForbidden = ErrNotMember

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Code: ErrInvalidInput.Code, Message: msg}
}

// KindOf returns the kind of a domain error, or 0 for anything else.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

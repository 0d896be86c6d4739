package polls

import (
	"crypto/rand"
	"strings"

	"github.com/pkg/errors"
)

// inviteAlphabet leaves out characters that are easy to mistype (0/O, 1/I).
// Its length divides 256, so mapping random bytes onto it is unbiased.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	DefaultInviteCodeLength   = 8
	DefaultInviteCodeAttempts = 5
	minInviteCodeLength       = 4
)

// GenerateInviteCode returns a random human-typeable code of the given length.
func GenerateInviteCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate invite code")
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

// NormalizeInviteCode canonicalises user-typed codes.
func NormalizeInviteCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Package clock provides the time source used for poll expiry decisions.
// Production code uses Real; tests pass a *clockwork.FakeClock directly.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reports the current instant. Every clockwork.Clock satisfies it.
type Clock interface {
	Now() time.Time
}

type utcClock struct {
	clockwork.Clock
}

func (c utcClock) Now() time.Time { return c.Clock.Now().UTC() }

// Real returns the system clock, normalised to UTC.
func Real() Clock { return UTC(clockwork.NewRealClock()) }

// UTC wraps c so that it reports instants in UTC.
func UTC(c clockwork.Clock) Clock { return utcClock{c} }

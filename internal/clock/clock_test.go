package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestUTCWrapsFakeClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	fake := clockwork.NewFakeClockAt(start)
	c := UTC(fake)

	if got := c.Now(); !got.Equal(start) || got.Location() != time.UTC {
		t.Fatalf("Now() = %v, want %v in UTC", got, start)
	}

	fake.Advance(90 * time.Minute)
	if got, want := c.Now(), start.Add(90*time.Minute); !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("after Advance: got %v, want %v in UTC", got, want)
	}
}

func TestRealIsUTC(t *testing.T) {
	if loc := Real().Now().Location(); loc != time.UTC {
		t.Errorf("Real().Now() location = %v, want UTC", loc)
	}
}

func TestFakeClockSatisfiesClock(t *testing.T) {
	var _ Clock = clockwork.NewFakeClock()
}

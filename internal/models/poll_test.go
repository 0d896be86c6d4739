package models

import (
	"testing"
	"time"
)

func TestPollIsExpired(t *testing.T) {
	deadline := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	p := Poll{ExpiresAt: deadline}

	if p.IsExpired(deadline.Add(-time.Second)) {
		t.Error("poll should not be expired before its deadline")
	}
	if p.IsExpired(deadline) {
		t.Error("poll should not be expired exactly at its deadline")
	}
	if !p.IsExpired(deadline.Add(time.Nanosecond)) {
		t.Error("poll should be expired after its deadline")
	}
}

func TestPollOwnershipAndOptions(t *testing.T) {
	p := Poll{OwnerID: "u1", Options: []Option{{ID: "o1"}, {ID: "o2"}}}

	if !p.IsOwnedBy("u1") || p.IsOwnedBy("u2") || p.IsOwnedBy("") {
		t.Error("IsOwnedBy returned an unexpected result")
	}
	if !p.HasOption("o2") || p.HasOption("o3") {
		t.Error("HasOption returned an unexpected result")
	}
}

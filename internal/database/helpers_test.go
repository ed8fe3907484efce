package database

import (
	"testing"
	"time"
)

func TestFormatTimeKeepsLexicographicOrderChronological(t *testing.T) {
	// A half-second fraction is the hard case: a trimmed encoding would
	// render ".5Z", which sorts after ".500000001Z" under TEXT comparison.
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 500000000, time.UTC)
	later := earlier.Add(time.Nanosecond)

	if formatTime(earlier) >= formatTime(later) {
		t.Fatalf("expected %q < %q", formatTime(earlier), formatTime(later))
	}

	// Fixed width: every encoding carries the full nanosecond fraction.
	if got, want := formatTime(earlier), "2026-01-01T00:00:00.500000000Z"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if len(formatTime(earlier)) != len(formatTime(later)) {
		t.Fatalf("expected equal-width encodings, got %q and %q", formatTime(earlier), formatTime(later))
	}
}

func TestFormatTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 8, 25, 13, 37, 42, 123456789, time.UTC)

	got := parseTime(formatTime(ts))
	if !got.Equal(ts) {
		t.Fatalf("expected %v, got %v", ts, got)
	}

	// Second-precision values written by earlier releases still parse.
	legacy := parseTime("2026-08-25T13:37:42Z")
	if legacy.IsZero() {
		t.Fatalf("expected legacy timestamp to parse")
	}
}

package dispatch

import (
	"testing"
	"time"
)

func TestBackoffDoublesPerAttempt(t *testing.T) {
	policy := Policy{BackoffBase: time.Minute, BackoffCap: time.Hour}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{7, time.Hour},  // 64m clamps to cap
		{10, time.Hour}, // stays clamped
	}
	for _, tc := range cases {
		if got := policy.Backoff(tc.attempt); got != tc.want {
			t.Fatalf("Backoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoffDefendsAgainstZeroValues(t *testing.T) {
	var policy Policy
	if got := policy.Backoff(0); got != time.Minute {
		t.Fatalf("Backoff(0) = %v, want 1m", got)
	}
}

func TestExhausted(t *testing.T) {
	policy := Policy{MaxAttempts: 3}
	if policy.Exhausted(2) {
		t.Fatal("2 of 3 attempts should not be exhausted")
	}
	if !policy.Exhausted(3) {
		t.Fatal("3 of 3 attempts should be exhausted")
	}

	var zero Policy
	if !zero.Exhausted(3) {
		t.Fatal("zero policy should default to 3 attempts")
	}
}

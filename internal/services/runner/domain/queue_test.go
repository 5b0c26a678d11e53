package domain

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestBackoff_FirstAttemptWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		d := Backoff(1, rng)
		if d < time.Second || d >= 1500*time.Millisecond {
			t.Fatalf("backoff(1) = %v, want [1s, 1.5s)", d)
		}
	}
}

func TestBackoff_DoublesPerAttempt(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := []struct {
		attempt int
		base    time.Duration
	}{
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 32 * time.Second},
	}
	for _, tc := range cases {
		d := Backoff(tc.attempt, rng)
		if d < tc.base || d >= tc.base+maxJitter {
			t.Fatalf("backoff(%d) = %v, want [%v, %v)", tc.attempt, d, tc.base, tc.base+maxJitter)
		}
	}
}

func TestBackoff_CapsAtAMinute(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, attempt := range []int{7, 8, 20, 1000} {
		d := Backoff(attempt, rng)
		if d < maxBackoff || d >= maxBackoff+maxJitter {
			t.Fatalf("backoff(%d) = %v, want [60s, 60.5s)", attempt, d)
		}
	}
}

func TestBackoff_ClampsBadAttempts(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, attempt := range []int{0, -3} {
		d := Backoff(attempt, rng)
		if d < time.Second || d >= 1500*time.Millisecond {
			t.Fatalf("backoff(%d) = %v, want the first-attempt window", attempt, d)
		}
	}
}

func TestBackoff_NilRngFallsBack(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := Backoff(1, nil)
		if d < time.Second || d >= 1500*time.Millisecond {
			t.Fatalf("backoff(1) = %v, want [1s, 1.5s)", d)
		}
	}
}

func TestWorkerID_HostPlusTwelveHex(t *testing.T) {
	id := WorkerID()
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		t.Fatalf("worker id %q has no suffix separator", id)
	}
	suffix := id[i+1:]
	if len(suffix) != 12 {
		t.Fatalf("suffix %q length = %d, want 12", suffix, len(suffix))
	}
	for _, c := range suffix {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("suffix %q is not lowercase hex", suffix)
		}
	}
	if WorkerID() == id {
		t.Fatalf("two worker ids collided: %q", id)
	}
}

package domain

import (
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxBackoff = 60 * time.Second
	maxJitter  = 500 * time.Millisecond
)

// Backoff returns how long a failed attempt waits before requeueing:
// exponential in the attempt number, capped at a minute, plus up to half a
// second of jitter so workers restarting together spread their retries.
// A nil rng falls back to the locked global source
func Backoff(attempt int, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exp := attempt - 1
	if exp > 6 {
		exp = 6
	}
	base := time.Duration(1<<exp) * time.Second
	if base > maxBackoff {
		base = maxBackoff
	}
	if rng == nil {
		return base + time.Duration(rand.Int63n(int64(maxJitter)))
	}
	return base + time.Duration(rng.Int63n(int64(maxJitter)))
}

// WorkerID returns this process's queue identity, the hostname plus a short
// random suffix so replicas on one host stay distinguishable
func WorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return host + "-" + suffix
}

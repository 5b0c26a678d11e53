// Package domain defines the scheduler ports and types
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DueCheck is one enabled check whose due cursor has passed
type DueCheck struct {
	CheckID         uuid.UUID
	ServiceID       uuid.UUID
	IntervalSeconds int
	DueAt           time.Time
}

// NewJob is one queued occurrence of a check
type NewJob struct {
	ServiceID      uuid.UUID
	CheckID        uuid.UUID
	ScheduledFor   time.Time
	MaxAttempts    int
	IdempotencyKey string
}

// IdempotencyKey derives the dedupe key for one scheduled occurrence.
// Two passes that see the same due instant produce the same key, so the
// queue keeps a single job per check per occurrence
func IdempotencyKey(checkID uuid.UUID, scheduledFor time.Time) string {
	return fmt.Sprintf("%s:%d", checkID, scheduledFor.Unix())
}

package domain

import (
	"context"
	"time"
)

// BatchPort processes one claim batch
type BatchPort interface {
	// ProcessBatch claims up to the configured batch of due jobs, runs them
	// to completion, and reports how many it claimed
	ProcessBatch(ctx context.Context, now time.Time) (int, error)
}

// WorkerPort (run loop) is separate
type WorkerPort interface {
	Run(ctx context.Context) error
}

package domain

import (
	"context"
	"time"
)

// TickPort runs one scheduling pass
type TickPort interface {
	// Tick claims due checks, enqueues one job each, advances their due
	// cursors, and reports how many jobs it inserted
	Tick(ctx context.Context, now time.Time) (int, error)
}

// WorkerPort (run loop) is separate
type WorkerPort interface {
	Run(ctx context.Context) error
}

// Package domain defines the runner ports and types
package domain

import (
	"time"

	"github.com/google/uuid"

	"vigil/internal/core/checker"
)

// JobStatus is the queue state of one check_jobs row
type JobStatus string

const (
	// JobQueued means the job waits for a worker
	JobQueued JobStatus = "queued"
	// JobLeased means a worker holds the job until its lease expires
	JobLeased JobStatus = "leased"
	// JobDone means the job completed
	JobDone JobStatus = "done"
	// JobFailed means the job spent its attempt budget
	JobFailed JobStatus = "failed"
)

// Job is one leased unit of work from the queue. Attempt reflects the
// claim that produced it, so the first execution sees Attempt 1
type Job struct {
	ID           int64
	ServiceID    uuid.UUID
	CheckID      uuid.UUID
	ScheduledFor time.Time
	Attempt      int
	MaxAttempts  int
}

// ClaimParams shapes one claim pass
type ClaimParams struct {
	Now       time.Time
	WorkerID  string
	BatchSize int
	Lease     time.Duration
}

// CheckRow is the catalog state a job needs to execute its probe
type CheckRow struct {
	ID             uuid.UUID
	ServiceID      uuid.UUID
	CheckKey       string
	ClassPath      string
	Config         map[string]any
	TimeoutSeconds int
	Weight         *float64
	Enabled        bool
}

// RunRecord is one probe outcome headed for the check_runs table
type RunRecord struct {
	JobID     int64
	ServiceID uuid.UUID
	CheckID   uuid.UUID
	Result    checker.Result
}

// Snapshot is one computed service state row
type Snapshot struct {
	ServiceID      uuid.UUID
	RawScore       float64
	EffectiveScore float64
	Status         checker.Status
	Impacted       bool
	Confidence     float64
	RootServiceID  *uuid.UUID
	ObservedAt     time.Time
}

// Incident is the slice of an open incidents row job processing needs
type Incident struct {
	ID           uuid.UUID
	PeakSeverity checker.Status
}

// NewIncident is one incident insert
type NewIncident struct {
	ServiceID    uuid.UUID
	StartedAt    time.Time
	PeakSeverity checker.Status
	Root         *uuid.UUID
	Confidence   float64
	Summary      string
}

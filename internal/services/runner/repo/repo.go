// Package repo provides the runner storage repository implementation
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vigil/internal/core/checker"
	"vigil/internal/core/scoring"
	"vigil/internal/modkit/repokit"
	rdom "vigil/internal/services/runner/domain"
)

// Repo is the storage surface job processing needs. Claim and the job
// bookkeeping calls are single statements safe on the pool; the run,
// snapshot, and incident writes belong in one transaction
type Repo interface {
	// ClaimJobs leases up to a batch of due jobs for this worker
	ClaimJobs(ctx context.Context, p rdom.ClaimParams) ([]rdom.Job, error)

	// MarkJobDone finishes a job and releases its lease
	MarkJobDone(ctx context.Context, jobID int64) error

	// MarkJobRetryOrFail requeues a job for later, or fails it once its
	// attempt budget is spent, reporting which way it went
	MarkJobRetryOrFail(ctx context.Context, jobID int64, now time.Time, backoff time.Duration) (rdom.JobStatus, error)

	// LoadCheck fetches catalog state for one check, reporting found
	LoadCheck(ctx context.Context, checkID uuid.UUID) (rdom.CheckRow, bool, error)

	// InsertRun appends one check_runs row
	InsertRun(ctx context.Context, rec rdom.RunRecord) error

	// LatestSignals returns the newest run per enabled check of a service
	LatestSignals(ctx context.Context, serviceID uuid.UUID) ([]scoring.CheckSignal, error)

	// DependencySignals returns the latest snapshot state per declared
	// upstream of a service
	DependencySignals(ctx context.Context, serviceID uuid.UUID) ([]scoring.DependencySignal, error)

	// InsertSnapshot appends one service_snapshots row
	InsertSnapshot(ctx context.Context, s rdom.Snapshot) error

	// OpenIncidentFor returns the open incident of a service, reporting found
	OpenIncidentFor(ctx context.Context, serviceID uuid.UUID) (rdom.Incident, bool, error)

	// OpenIncident inserts a new open incident and returns its id
	OpenIncident(ctx context.Context, inc rdom.NewIncident) (uuid.UUID, error)

	// UpdateIncident refreshes severity and attribution on an open incident
	UpdateIncident(ctx context.Context, id uuid.UUID, peak checker.Status, root *uuid.UUID, confidence float64) error

	// ResolveIncident closes an open incident
	ResolveIncident(ctx context.Context, id uuid.UUID, resolvedAt time.Time) error

	// AppendIncidentEvent records one incident timeline event
	AppendIncidentEvent(ctx context.Context, incidentID uuid.UUID, eventType string, payload map[string]any) error
}

type (
	// PG is the Postgres implementation of the runner repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Package repo provides the scheduler storage repository implementation
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vigil/internal/modkit/repokit"
	sdom "vigil/internal/services/scheduler/domain"
)

// Repo is the storage surface one scheduling pass needs
type Repo interface {
	// DueChecks locks and returns up to limit due checks, oldest first
	DueChecks(ctx context.Context, now time.Time, limit int) ([]sdom.DueCheck, error)

	// InsertJob enqueues one job; a duplicate idempotency key reports false
	InsertJob(ctx context.Context, j sdom.NewJob) (bool, error)

	// AdvanceDue moves a check's due cursor
	AdvanceDue(ctx context.Context, checkID uuid.UUID, next time.Time) error
}

// PG provides the postgres implementation
type PG struct{}

// NewPG returns a binder for the scheduler repo
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

type queries struct{ q repokit.Queryer }

// DueChecks claims due rows on active services. Rows a concurrent pass has
// locked are skipped, so overlapping ticks never double-handle a check
func (r *queries) DueChecks(ctx context.Context, now time.Time, limit int) ([]sdom.DueCheck, error) {
	const sqlq = `
		SELECT sc.id, sc.service_id, sc.interval_seconds, sc.next_due_at
		  FROM service_checks sc
		  JOIN services s ON s.id = sc.service_id AND s.is_active
		 WHERE sc.enabled
		   AND sc.next_due_at <= $1
		 ORDER BY sc.next_due_at ASC
		 LIMIT $2
		 FOR UPDATE OF sc SKIP LOCKED
	`
	rows, err := r.q.Query(ctx, sqlq, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sdom.DueCheck
	for rows.Next() {
		var d sdom.DueCheck
		if err := rows.Scan(&d.CheckID, &d.ServiceID, &d.IntervalSeconds, &d.DueAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *queries) InsertJob(ctx context.Context, j sdom.NewJob) (bool, error) {
	const sqlq = `
		INSERT INTO check_jobs (service_id, check_id, status, scheduled_for, max_attempts, idempotency_key)
		VALUES ($1, $2, 'queued', $3, $4, $5)
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, sqlq, j.ServiceID, j.CheckID, j.ScheduledFor.UTC(), j.MaxAttempts, j.IdempotencyKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) AdvanceDue(ctx context.Context, checkID uuid.UUID, next time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE service_checks SET next_due_at = $2, updated_at = now() WHERE id = $1`,
		checkID, next.UTC())
	return err
}

package repo

import (
	"context"
	"time"

	rdom "vigil/internal/services/runner/domain"
)

// ClaimJobs leases one batch of due work. Queued jobs and leased jobs whose
// lease has lapsed are both fair game; rows a concurrent worker holds locked
// are skipped. Every claim counts as an attempt
func (r *queries) ClaimJobs(ctx context.Context, p rdom.ClaimParams) ([]rdom.Job, error) {
	const sqlq = `
		WITH ready AS (
			SELECT id
			  FROM check_jobs
			 WHERE scheduled_for <= $1
			   AND (status = 'queued' OR (status = 'leased' AND lease_expires_at < $1))
			 ORDER BY scheduled_for ASC
			 LIMIT $2
			 FOR UPDATE SKIP LOCKED
		), upd AS (
			UPDATE check_jobs j
			   SET status = 'leased',
			       worker_id = $3,
			       lease_expires_at = $4,
			       attempt = attempt + 1,
			       updated_at = now()
			 WHERE j.id IN (SELECT id FROM ready)
			RETURNING j.id, j.service_id, j.check_id, j.scheduled_for, j.attempt, j.max_attempts
		)
		SELECT id, service_id, check_id, scheduled_for, attempt, max_attempts
		  FROM upd
		 ORDER BY scheduled_for ASC
	`
	now := p.Now.UTC()
	rows, err := r.q.Query(ctx, sqlq, now, p.BatchSize, p.WorkerID, now.Add(p.Lease))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rdom.Job
	for rows.Next() {
		var j rdom.Job
		if err := rows.Scan(&j.ID, &j.ServiceID, &j.CheckID, &j.ScheduledFor, &j.Attempt, &j.MaxAttempts); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *queries) MarkJobDone(ctx context.Context, jobID int64) error {
	_, err := r.q.Exec(ctx, `
		UPDATE check_jobs
		   SET status = 'done', lease_expires_at = NULL, updated_at = now()
		 WHERE id = $1`,
		jobID)
	return err
}

// MarkJobRetryOrFail reads the attempt budget off the row itself so the
// decision stays correct even if a peer re-claimed and retried in between
func (r *queries) MarkJobRetryOrFail(
	ctx context.Context,
	jobID int64,
	now time.Time,
	backoff time.Duration,
) (rdom.JobStatus, error) {
	const sqlq = `
		UPDATE check_jobs
		   SET status = CASE WHEN attempt >= max_attempts THEN 'failed' ELSE 'queued' END,
		       worker_id = CASE WHEN attempt >= max_attempts THEN worker_id ELSE NULL END,
		       scheduled_for = CASE WHEN attempt >= max_attempts THEN scheduled_for ELSE $2 END,
		       lease_expires_at = NULL,
		       updated_at = now()
		 WHERE id = $1
		RETURNING status
	`
	var status string
	if err := r.q.QueryRow(ctx, sqlq, jobID, now.UTC().Add(backoff)).Scan(&status); err != nil {
		return "", err
	}
	return rdom.JobStatus(status), nil
}

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vigil/internal/core/scoring"
	rdom "vigil/internal/services/runner/domain"
)

func (r *queries) LoadCheck(ctx context.Context, checkID uuid.UUID) (rdom.CheckRow, bool, error) {
	const sqlq = `
		SELECT id, service_id, check_key, class_path, config, timeout_seconds, weight, enabled
		  FROM service_checks
		 WHERE id = $1
	`
	var row rdom.CheckRow
	err := r.q.QueryRow(ctx, sqlq, checkID).Scan(
		&row.ID, &row.ServiceID, &row.CheckKey, &row.ClassPath,
		&row.Config, &row.TimeoutSeconds, &row.Weight, &row.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return rdom.CheckRow{}, false, nil
	}
	if err != nil {
		return rdom.CheckRow{}, false, err
	}
	return row, true, nil
}

func (r *queries) InsertRun(ctx context.Context, rec rdom.RunRecord) error {
	const sqlq = `
		INSERT INTO check_runs
		       (job_id, service_id, check_id, check_key, status, latency_ms,
		        http_status, error_code, error_message, metadata, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)
	`
	res := rec.Result
	meta := res.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := r.q.Exec(ctx, sqlq,
		rec.JobID, rec.ServiceID, rec.CheckID, res.CheckKey, string(res.Status),
		res.LatencyMS, res.HTTPStatus, res.ErrorCode, res.ErrorMessage, meta, res.ObservedAt.UTC(),
	)
	return err
}

// LatestSignals reads the newest run per enabled check, newest by observed
// time with the row id breaking ties. Checks that never ran are absent
func (r *queries) LatestSignals(ctx context.Context, serviceID uuid.UUID) ([]scoring.CheckSignal, error) {
	const sqlq = `
		SELECT DISTINCT ON (cr.check_id)
		       cr.check_key, cr.status, cr.latency_ms, COALESCE(sc.weight, 0)
		  FROM check_runs cr
		  JOIN service_checks sc ON sc.id = cr.check_id AND sc.enabled
		 WHERE cr.service_id = $1
		 ORDER BY cr.check_id, cr.observed_at DESC, cr.id DESC
	`
	rows, err := r.q.Query(ctx, sqlq, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.CheckSignal
	for rows.Next() {
		var sig scoring.CheckSignal
		if err := rows.Scan(&sig.CheckKey, &sig.Status, &sig.LatencyMS, &sig.Weight); err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

// DependencySignals pairs each declared upstream edge with that upstream's
// newest snapshot status. Upstreams with no snapshot yet contribute nothing
func (r *queries) DependencySignals(ctx context.Context, serviceID uuid.UUID) ([]scoring.DependencySignal, error) {
	const sqlq = `
		SELECT d.depends_on_service_id, ss.status, d.dependency_type, d.weight
		  FROM service_dependencies d
		  JOIN service_snapshots ss ON ss.id = (
		       SELECT id
		         FROM service_snapshots
		        WHERE service_id = d.depends_on_service_id
		        ORDER BY observed_at DESC, id DESC
		        LIMIT 1
		       )
		 WHERE d.service_id = $1
	`
	rows, err := r.q.Query(ctx, sqlq, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.DependencySignal
	for rows.Next() {
		var sig scoring.DependencySignal
		if err := rows.Scan(&sig.ServiceID, &sig.Status, &sig.Type, &sig.Weight); err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

func (r *queries) InsertSnapshot(ctx context.Context, s rdom.Snapshot) error {
	const sqlq = `
		INSERT INTO service_snapshots
		       (service_id, raw_score, effective_score, status, dependency_impacted,
		        attribution_confidence, probable_root_service_id, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.Exec(ctx, sqlq,
		s.ServiceID, s.RawScore, s.EffectiveScore, string(s.Status),
		s.Impacted, s.Confidence, s.RootServiceID, s.ObservedAt.UTC(),
	)
	return err
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vigil/internal/core/checker"
	rdom "vigil/internal/services/runner/domain"
)

// OpenIncidentFor finds the open incident of a service. The partial unique
// index on open incidents guarantees at most one row
func (r *queries) OpenIncidentFor(ctx context.Context, serviceID uuid.UUID) (rdom.Incident, bool, error) {
	const sqlq = `
		SELECT id, peak_severity
		  FROM incidents
		 WHERE service_id = $1 AND status = 'open'
	`
	var inc rdom.Incident
	err := r.q.QueryRow(ctx, sqlq, serviceID).Scan(&inc.ID, &inc.PeakSeverity)
	if errors.Is(err, pgx.ErrNoRows) {
		return rdom.Incident{}, false, nil
	}
	if err != nil {
		return rdom.Incident{}, false, err
	}
	return inc, true, nil
}

func (r *queries) OpenIncident(ctx context.Context, inc rdom.NewIncident) (uuid.UUID, error) {
	const sqlq = `
		INSERT INTO incidents
		       (service_id, status, started_at, peak_severity, probable_root_service_id, confidence, summary)
		VALUES ($1, 'open', $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id uuid.UUID
	err := r.q.QueryRow(ctx, sqlq,
		inc.ServiceID, inc.StartedAt.UTC(), string(inc.PeakSeverity), inc.Root, inc.Confidence, inc.Summary,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *queries) UpdateIncident(
	ctx context.Context,
	id uuid.UUID,
	peak checker.Status,
	root *uuid.UUID,
	confidence float64,
) error {
	_, err := r.q.Exec(ctx, `
		UPDATE incidents
		   SET peak_severity = $2,
		       probable_root_service_id = $3,
		       confidence = $4,
		       updated_at = now()
		 WHERE id = $1`,
		id, string(peak), root, confidence)
	return err
}

func (r *queries) ResolveIncident(ctx context.Context, id uuid.UUID, resolvedAt time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE incidents
		   SET status = 'resolved', resolved_at = $2, updated_at = now()
		 WHERE id = $1`,
		id, resolvedAt.UTC())
	return err
}

func (r *queries) AppendIncidentEvent(
	ctx context.Context,
	incidentID uuid.UUID,
	eventType string,
	payload map[string]any,
) error {
	if payload == nil {
		payload = map[string]any{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO incident_events (incident_id, event_type, payload)
		VALUES ($1, $2, $3)`,
		incidentID, eventType, payload)
	return err
}

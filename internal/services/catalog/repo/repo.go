// Package repo provides the catalog repository implementation
package repo

import (
	"context"

	"github.com/google/uuid"

	"vigil/internal/modkit/repokit"
	"vigil/internal/services/catalog/domain"
)

// Repo is the catalog persistence surface used by the sync service
type Repo interface {
	UpsertService(ctx context.Context, d domain.Definition) (uuid.UUID, error)
	UpsertCheck(ctx context.Context, serviceID uuid.UUID, c domain.CheckDef) (uuid.UUID, error)
	DisableOtherChecks(ctx context.Context, serviceID uuid.UUID, keep []string) (int, error)
	ReplaceDependencies(ctx context.Context, serviceID uuid.UUID, edges []Edge) error
}

// Edge is one dependency row with its target resolved to a service id
type Edge struct {
	DependsOn uuid.UUID
	Type      string
	Weight    float64
}

type (
	// PG is the Postgres implementation of the catalog repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// UpsertService creates or refreshes one services row and reactivates it
func (r *queries) UpsertService(ctx context.Context, d domain.Definition) (uuid.UUID, error) {
	const sqlq = `
        INSERT INTO services (slug, name, default_interval_seconds, official_uptime_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (slug)
        DO UPDATE SET name = EXCLUDED.name,
                      default_interval_seconds = EXCLUDED.default_interval_seconds,
                      official_uptime_url = EXCLUDED.official_uptime_url,
                      is_active = TRUE,
                      updated_at = now()
        RETURNING id
    `
	var id uuid.UUID
	if err := r.q.QueryRow(ctx, sqlq, d.Slug, d.Name, d.DefaultIntervalSeconds, d.OfficialUptime).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpsertCheck creates or refreshes one service_checks row. The due cursor of
// an existing row is left alone so a sync never replays or delays schedules
func (r *queries) UpsertCheck(ctx context.Context, serviceID uuid.UUID, c domain.CheckDef) (uuid.UUID, error) {
	const sqlq = `
        INSERT INTO service_checks
               (service_id, check_key, class_path, config, interval_seconds, timeout_seconds, weight, enabled)
        VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
        ON CONFLICT (service_id, check_key)
        DO UPDATE SET class_path = EXCLUDED.class_path,
                      config = EXCLUDED.config,
                      interval_seconds = EXCLUDED.interval_seconds,
                      timeout_seconds = EXCLUDED.timeout_seconds,
                      weight = EXCLUDED.weight,
                      enabled = TRUE,
                      updated_at = now()
        RETURNING id
    `
	cfg := c.Config
	if cfg == nil {
		cfg = map[string]any{}
	}
	var id uuid.UUID
	err := r.q.QueryRow(ctx, sqlq,
		serviceID, c.CheckKey, c.ClassPath, cfg, c.IntervalSeconds, c.TimeoutSeconds, c.Weight,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// DisableOtherChecks flips enabled off for every check of the service whose
// key is not in keep and reports how many rows that touched
func (r *queries) DisableOtherChecks(ctx context.Context, serviceID uuid.UUID, keep []string) (int, error) {
	const sqlq = `
        UPDATE service_checks
           SET enabled = FALSE, updated_at = now()
         WHERE service_id = $1 AND enabled AND check_key <> ALL($2)
    `
	tag, err := r.q.Exec(ctx, sqlq, serviceID, keep)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ReplaceDependencies rewrites the declared edge set for one service
func (r *queries) ReplaceDependencies(ctx context.Context, serviceID uuid.UUID, edges []Edge) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM service_dependencies WHERE service_id = $1`, serviceID); err != nil {
		return err
	}
	const ins = `
        INSERT INTO service_dependencies (service_id, depends_on_service_id, dependency_type, weight)
        VALUES ($1, $2, $3, $4)
    `
	for _, e := range edges {
		if _, err := r.q.Exec(ctx, ins, serviceID, e.DependsOn, e.Type, e.Weight); err != nil {
			return err
		}
	}
	return nil
}

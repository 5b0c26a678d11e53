// Package service implements the catalog sync
package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"vigil/internal/core/checker"
	"vigil/internal/modkit"
	"vigil/internal/modkit/repokit"
	perr "vigil/internal/platform/errors"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/store"
	pstrings "vigil/internal/platform/strings"
	"vigil/internal/services/catalog/domain"
	crepo "vigil/internal/services/catalog/repo"
)

const (
	defaultIntervalSeconds = 60
	defaultTimeoutSeconds  = 5
)

// Svc turns the in-process checker registry into catalog rows
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[crepo.Repo]
	val    *validator.Validate
	log    logger.Logger
}

// New constructs the service
func New(deps modkit.Deps) *Svc {
	return &Svc{
		db:     deps.PG,
		binder: crepo.NewPG(),
		val:    validator.New(validator.WithRequiredStructEnabled()),
		log:    *logger.Named("catalog"),
	}
}

// Definitions flattens the registered checker set into validated catalog
// definitions: weights resolved, interval and timeout defaults applied,
// slugs derived, every class path checked against the probe registry
func (s *Svc) Definitions() ([]domain.Definition, error) {
	regs := checker.Checkers()
	if len(regs) == 0 {
		return nil, perr.Validationf("catalog: no service checkers registered")
	}

	defs := make([]domain.Definition, 0, len(regs))
	for _, sc := range regs {
		resolved, err := checker.ResolveWeights(sc.Checks)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "catalog: %s weight resolution failed", sc.ServiceKey)
		}

		interval := sc.DefaultIntervalSeconds
		if interval <= 0 {
			interval = defaultIntervalSeconds
		}
		d := domain.Definition{
			ServiceKey:             sc.ServiceKey,
			Slug:                   pstrings.Slugify(sc.ServiceKey),
			Name:                   sc.Name,
			OfficialUptime:         sc.OfficialUptime,
			DefaultIntervalSeconds: interval,
		}
		if d.Name == "" {
			d.Name = sc.ServiceKey
		}

		for _, sp := range resolved {
			if _, ok := checker.ResolveCheck(sp.ClassPath); !ok {
				return nil, perr.Validationf("catalog: %s/%s references unregistered probe %s",
					sc.ServiceKey, sp.CheckKey, sp.ClassPath)
			}
			cd := domain.CheckDef{
				CheckKey:        sp.CheckKey,
				ClassPath:       sp.ClassPath,
				Config:          sp.Config,
				IntervalSeconds: sp.IntervalSeconds,
				TimeoutSeconds:  sp.TimeoutSeconds,
			}
			if cd.IntervalSeconds <= 0 {
				cd.IntervalSeconds = interval
			}
			if cd.TimeoutSeconds <= 0 {
				cd.TimeoutSeconds = defaultTimeoutSeconds
			}
			if sp.Weight != nil {
				cd.Weight = *sp.Weight
			}
			d.Checks = append(d.Checks, cd)
		}

		for _, dep := range sc.Dependencies {
			dd := domain.DependencyDef{ServiceKey: dep.ServiceKey, Type: dep.Type, Weight: dep.Weight}
			if dd.Type == "" {
				dd.Type = checker.DependencyHard
			}
			if dd.Weight == 0 {
				dd.Weight = 1
			}
			d.Dependencies = append(d.Dependencies, dd)
		}

		if err := s.val.Struct(d); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "catalog: %s definition invalid", sc.ServiceKey)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// SyncRegistered upserts services, checks, and dependency edges for every
// registered checker inside one transaction. Checks that disappeared from a
// checker are disabled, not deleted; dependency edges are rewritten whole
func (s *Svc) SyncRegistered(ctx context.Context) (domain.SyncReport, error) {
	defs, err := s.Definitions()
	if err != nil {
		return domain.SyncReport{}, err
	}

	var report domain.SyncReport
	err = store.RunTx(ctx, s.db, func(ctx context.Context, q store.RowQuerier) error {
		r := s.binder.Bind(q)

		ids := make(map[string]uuid.UUID, len(defs))
		for _, d := range defs {
			id, err := r.UpsertService(ctx, d)
			if err != nil {
				return err
			}
			ids[d.ServiceKey] = id
			report.Services++
		}

		for _, d := range defs {
			sid := ids[d.ServiceKey]

			keep := make([]string, 0, len(d.Checks))
			for _, c := range d.Checks {
				if _, err := r.UpsertCheck(ctx, sid, c); err != nil {
					return err
				}
				keep = append(keep, c.CheckKey)
				report.Checks++
			}
			n, err := r.DisableOtherChecks(ctx, sid, keep)
			if err != nil {
				return err
			}
			report.Disabled += n

			edges := make([]crepo.Edge, 0, len(d.Dependencies))
			for _, dep := range d.Dependencies {
				target, ok := ids[dep.ServiceKey]
				if !ok {
					return perr.Validationf("catalog: %s depends on unregistered service %s", d.ServiceKey, dep.ServiceKey)
				}
				edges = append(edges, crepo.Edge{DependsOn: target, Type: string(dep.Type), Weight: dep.Weight})
			}
			if err := r.ReplaceDependencies(ctx, sid, edges); err != nil {
				return err
			}
			report.Dependencies += len(edges)
		}
		return nil
	})
	if err != nil {
		return domain.SyncReport{}, err
	}

	s.log.Info().
		Int("services", report.Services).
		Int("checks", report.Checks).
		Int("disabled", report.Disabled).
		Int("dependencies", report.Dependencies).
		Msg("catalog sync complete")
	return report, nil
}

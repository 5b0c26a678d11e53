// Package service contains the scheduler pass and loop
package service

import (
	"context"
	"time"

	"vigil/internal/modkit"
	"vigil/internal/modkit/repokit"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/ops"
	"vigil/internal/platform/store"
	ptime "vigil/internal/platform/time"
	sdom "vigil/internal/services/scheduler/domain"
	"vigil/internal/services/scheduler/repo"
)

const minPause = 100 * time.Millisecond

// Config carries runtime knobs for the scheduling loop
type Config struct {
	Tick        time.Duration
	BatchSize   int
	MaxAttempts int
}

// Svc implements the scheduler
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Repo]
	cfg     Config
	metrics *ops.Metrics
	log     logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs the scheduler service
func New(deps modkit.Deps, cfg Config, m *ops.Metrics) *Svc {
	if deps.PG == nil {
		panic("scheduler.Service requires a non nil TxRunner")
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Svc{
		db:      deps.PG,
		binder:  repo.NewPG(),
		cfg:     cfg,
		metrics: m,
		log:     *logger.Named("scheduler"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Tick runs one scheduling pass in a single transaction: claim due checks,
// enqueue one job per occurrence, advance the due cursors. A pass that races
// another scheduler loses cleanly on row locks and idempotency keys
func (s *Svc) Tick(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	var due, enqueued int
	err := store.RunTx(ctx, s.db, func(ctx context.Context, q store.RowQuerier) error {
		r := s.binder.Bind(q)
		checks, err := r.DueChecks(ctx, now, s.cfg.BatchSize)
		if err != nil {
			return err
		}
		due = len(checks)
		for _, d := range checks {
			ok, err := r.InsertJob(ctx, sdom.NewJob{
				ServiceID:      d.ServiceID,
				CheckID:        d.CheckID,
				ScheduledFor:   d.DueAt,
				MaxAttempts:    s.cfg.MaxAttempts,
				IdempotencyKey: sdom.IdempotencyKey(d.CheckID, d.DueAt),
			})
			if err != nil {
				return err
			}
			if ok {
				enqueued++
			}
			next := ptime.NextAligned(d.DueAt, now, time.Duration(d.IntervalSeconds)*time.Second)
			if err := r.AdvanceDue(ctx, d.CheckID, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.JobsEnqueued.Add(float64(enqueued))
	}
	if due > 0 {
		s.log.Debug().Int("due", due).Int("enqueued", enqueued).Msg("scheduler pass complete")
	}
	return enqueued, nil
}

// Run ticks until ctx ends. Pass failures are logged and the loop keeps going
func (s *Svc) Run(ctx context.Context) error {
	s.log.Info().
		Dur("tick", s.cfg.Tick).
		Int("batch", s.cfg.BatchSize).
		Msg("scheduler loop started")

	for {
		start := s.now()
		if _, err := s.Tick(ctx, start); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error().Err(err).Msg("scheduler pass failed")
		}
		pause := s.cfg.Tick - s.now().Sub(start)
		if pause < minPause {
			pause = minPause
		}
		if err := s.sleep(ctx, pause); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

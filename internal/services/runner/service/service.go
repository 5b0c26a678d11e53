// Package service implements the runner worker: claiming queued check jobs,
// executing their probes, and recording runs, snapshots, and incident state
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vigil/internal/core/checker"
	"vigil/internal/modkit"
	"vigil/internal/modkit/repokit"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/ops"
	rdom "vigil/internal/services/runner/domain"
	rrepo "vigil/internal/services/runner/repo"
)

// Config controls the worker
type Config struct {
	BatchSize      int
	Lease          time.Duration
	Poll           time.Duration
	Concurrency    int
	PerService     int
	DefaultTimeout time.Duration
}

// Svc implements the runner ports
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[rrepo.Repo]
	repo   rrepo.Repo

	client   checker.Client
	cfg      Config
	metrics  *ops.Metrics
	log      logger.Logger
	workerID string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	sem chan struct{}

	mu         sync.Mutex
	perService map[uuid.UUID]chan struct{}
}

// New constructs the runner service. The probe client is shared by every
// job this worker executes
func New(deps modkit.Deps, client checker.Client, cfg Config, m *ops.Metrics) *Svc {
	if deps.PG == nil {
		panic("runner.Service requires a non nil TxRunner")
	}
	if client == nil {
		panic("runner.Service requires a probe client")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 60 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 2 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 16
	}
	if cfg.PerService <= 0 {
		cfg.PerService = 2
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = checker.DefaultTimeout
	}

	b := rrepo.NewPG()
	return &Svc{
		db:         deps.PG,
		binder:     b,
		repo:       b.Bind(deps.PG),
		client:     client,
		cfg:        cfg,
		metrics:    m,
		log:        *logger.Named("runner"),
		workerID:   rdom.WorkerID(),
		now:        time.Now,
		sleep:      sleepCtx,
		sem:        make(chan struct{}, cfg.Concurrency),
		perService: make(map[uuid.UUID]chan struct{}),
	}
}

// WorkerID reports the queue identity this worker claims under
func (s *Svc) WorkerID() string { return s.workerID }

// serviceSem returns the per-service slot channel, created on first use and
// kept for the process lifetime
func (s *Svc) serviceSem(id uuid.UUID) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.perService[id]
	if !ok {
		c = make(chan struct{}, s.cfg.PerService)
		s.perService[id] = c
	}
	return c
}

// sleepCtx waits for d or until ctx ends
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

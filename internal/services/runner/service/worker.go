package service

import (
	"context"
	"sync"
	"time"

	rdom "vigil/internal/services/runner/domain"
)

// Run claims and processes job batches until ctx ends. A full batch loops
// straight into the next claim; empty batches idle for the poll interval
func (s *Svc) Run(ctx context.Context) error {
	s.log.Info().
		Str("worker_id", s.workerID).
		Int("batch_size", s.cfg.BatchSize).
		Int("concurrency", s.cfg.Concurrency).
		Int("per_service", s.cfg.PerService).
		Dur("lease", s.cfg.Lease).
		Msg("worker loop started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.ProcessBatch(ctx, s.now())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error().Err(err).Msg("claim pass failed")
		}
		if n > 0 {
			continue
		}
		if err := s.sleep(ctx, s.cfg.Poll); err != nil {
			return err
		}
	}
}

// ProcessBatch claims one batch of due jobs and runs them to completion,
// reporting how many it claimed. Jobs run concurrently under the global
// slot budget and at most a handful per service at a time; one failed job
// never blocks its peers
func (s *Svc) ProcessBatch(ctx context.Context, now time.Time) (int, error) {
	jobs, err := s.repo.ClaimJobs(ctx, rdom.ClaimParams{
		Now:       now,
		WorkerID:  s.workerID,
		BatchSize: s.cfg.BatchSize,
		Lease:     s.cfg.Lease,
	})
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}
	if s.metrics != nil {
		s.metrics.JobsClaimed.Add(float64(len(jobs)))
	}

	var wg sync.WaitGroup
	for i := range jobs {
		j := jobs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.sem <- struct{}{}
			defer func() { <-s.sem }()

			svcSem := s.serviceSem(j.ServiceID)
			svcSem <- struct{}{}
			defer func() { <-svcSem }()

			s.processJob(ctx, j)
		}()
	}
	wg.Wait()
	return len(jobs), nil
}

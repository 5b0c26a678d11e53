package service

import (
	"context"
	"strconv"
	"time"

	"vigil/internal/core/checker"
	"vigil/internal/core/scoring"
	perr "vigil/internal/platform/errors"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/store"
	rdom "vigil/internal/services/runner/domain"
	rrepo "vigil/internal/services/runner/repo"
)

// processJob runs one claimed job end to end. Failures re-enter the queue
// with backoff until the attempt budget runs out
func (s *Svc) processJob(ctx context.Context, j rdom.Job) {
	ctx = logger.WithJob(ctx, strconv.FormatInt(j.ID, 10), j.ServiceID.String(), j.CheckID.String())

	if err := s.runJob(ctx, j); err != nil {
		s.failJob(ctx, j, err)
	}
}

func (s *Svc) runJob(ctx context.Context, j rdom.Job) error {
	row, found, err := s.repo.LoadCheck(ctx, j.CheckID)
	if err != nil {
		return err
	}
	if !found || !row.Enabled {
		logger.C(ctx).Debug().Msg("check missing or disabled, completing job")
		if err := s.repo.MarkJobDone(ctx, j.ID); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.JobsDone.Inc()
		}
		return nil
	}

	res, err := s.executeProbe(ctx, row)
	if err != nil {
		return err
	}
	if err := s.record(ctx, j, row, res); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.JobsDone.Inc()
		s.metrics.CheckRuns.WithLabelValues(string(res.Status)).Inc()
	}
	logger.C(ctx).Debug().
		Str("check_key", row.CheckKey).
		Str("result_status", string(res.Status)).
		Msg("job processed")
	return nil
}

// executeProbe resolves and runs the declared probe under the timeout
// envelope. Resolution failures are real errors; execution failures are not,
// the envelope folds those into down results
func (s *Svc) executeProbe(ctx context.Context, row rdom.CheckRow) (checker.Result, error) {
	factory, ok := checker.ResolveCheck(row.ClassPath)
	if !ok {
		return checker.Result{}, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown check class %q", row.ClassPath)
	}
	chk, err := factory(checker.Spec{
		CheckKey:       row.CheckKey,
		ClassPath:      row.ClassPath,
		Config:         row.Config,
		TimeoutSeconds: row.TimeoutSeconds,
		Weight:         row.Weight,
	})
	if err != nil {
		return checker.Result{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "check %s did not construct", row.CheckKey)
	}

	timeout := time.Duration(row.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}

	start := s.now()
	res := checker.Execute(ctx, s.client, chk, timeout)
	if s.metrics != nil {
		s.metrics.ProbeDuration.Observe(s.now().Sub(start).Seconds())
	}
	return res, nil
}

// record writes the run, recomputes the service snapshot, advances incident
// state, and finishes the job, all in one transaction. Transient conflicts
// retry in place before the job falls back to the queue
func (s *Svc) record(ctx context.Context, j rdom.Job, row rdom.CheckRow, res checker.Result) error {
	return store.RunTxRetry(ctx, s.db, 3, func(ctx context.Context, q store.RowQuerier) error {
		r := s.binder.Bind(q)

		if err := r.InsertRun(ctx, rdom.RunRecord{
			JobID:     j.ID,
			ServiceID: j.ServiceID,
			CheckID:   row.ID,
			Result:    res,
		}); err != nil {
			return err
		}

		checks, err := r.LatestSignals(ctx, j.ServiceID)
		if err != nil {
			return err
		}
		deps, err := r.DependencySignals(ctx, j.ServiceID)
		if err != nil {
			return err
		}

		out := scoring.Reduce(checks, deps)
		snap := rdom.Snapshot{
			ServiceID:      j.ServiceID,
			RawScore:       out.RawScore,
			EffectiveScore: out.EffectiveScore,
			Status:         out.Status,
			Impacted:       out.Impacted,
			Confidence:     out.Confidence,
			RootServiceID:  out.RootServiceID,
			ObservedAt:     res.ObservedAt,
		}
		if err := r.InsertSnapshot(ctx, snap); err != nil {
			return err
		}
		if err := transitionIncident(ctx, r, snap); err != nil {
			return err
		}
		return r.MarkJobDone(ctx, j.ID)
	})
}

// transitionIncident applies whatever incident change the new snapshot implies
func transitionIncident(ctx context.Context, r rrepo.Repo, snap rdom.Snapshot) error {
	open, found, err := r.OpenIncidentFor(ctx, snap.ServiceID)
	if err != nil {
		return err
	}
	var cur *scoring.OpenIncident
	if found {
		cur = &scoring.OpenIncident{PeakSeverity: open.PeakSeverity}
	}

	dec := scoring.NextIncidentAction(snap.Status, cur)
	switch dec.Action {
	case scoring.IncidentOpen:
		id, err := r.OpenIncident(ctx, rdom.NewIncident{
			ServiceID:    snap.ServiceID,
			StartedAt:    snap.ObservedAt,
			PeakSeverity: dec.PeakSeverity,
			Root:         snap.RootServiceID,
			Confidence:   snap.Confidence,
			Summary:      dec.Summary,
		})
		if err != nil {
			return err
		}
		return r.AppendIncidentEvent(ctx, id, "opened", map[string]any{
			"status":     string(snap.Status),
			"confidence": snap.Confidence,
		})
	case scoring.IncidentUpdate:
		if err := r.UpdateIncident(ctx, open.ID, dec.PeakSeverity, snap.RootServiceID, snap.Confidence); err != nil {
			return err
		}
		return r.AppendIncidentEvent(ctx, open.ID, "updated", map[string]any{
			"status":     string(snap.Status),
			"confidence": snap.Confidence,
		})
	case scoring.IncidentResolve:
		if err := r.ResolveIncident(ctx, open.ID, snap.ObservedAt); err != nil {
			return err
		}
		return r.AppendIncidentEvent(ctx, open.ID, "resolved", map[string]any{
			"resolved_at": snap.ObservedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return nil
}

// failJob returns a job to the queue or fails it for good. A worker shutting
// down mid-job skips the bookkeeping; the lease expiry hands the job to a peer
func (s *Svc) failJob(ctx context.Context, j rdom.Job, cause error) {
	if ctx.Err() != nil {
		return
	}

	wait := rdom.Backoff(j.Attempt, nil)
	status, err := s.repo.MarkJobRetryOrFail(ctx, j.ID, s.now(), wait)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("job retry bookkeeping failed")
		return
	}

	switch status {
	case rdom.JobFailed:
		if s.metrics != nil {
			s.metrics.JobsFailed.Inc()
		}
		logger.C(ctx).Error().Err(cause).
			Int("attempt", j.Attempt).
			Msg("job failed for good")
	default:
		if s.metrics != nil {
			s.metrics.JobsRetried.Inc()
		}
		logger.C(ctx).Warn().Err(cause).
			Int("attempt", j.Attempt).
			Dur("backoff", wait).
			Msg("job requeued")
	}
}

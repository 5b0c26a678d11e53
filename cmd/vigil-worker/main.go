package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vigil/internal/adapters/probe"
	"vigil/internal/modkit"
	"vigil/internal/modkit/module"
	"vigil/internal/platform/config"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/ops"
	"vigil/internal/platform/store"

	runnermod "vigil/internal/services/runner/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "vigil-worker",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 8)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
			Migrate:     dbCfg.MayBool("MIGRATE", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fBatch  = flag.Int("batch", 25, "jobs claimed per poll")
		fConc   = flag.Int("concurrency", 16, "concurrent probes across all services")
		fPerSvc = flag.Int("per_service", 2, "concurrent probes per service")
		fLease  = flag.Int("lease_seconds", 60, "job lease duration")
		fPoll   = flag.Int("poll_seconds", 2, "idle poll interval")
	)
	flag.Parse()

	// Export as env so the module can also read via FromConfig
	mustSetEnv("WORKER_BATCH_SIZE", strconv.Itoa(*fBatch))
	mustSetEnv("WORKER_CONCURRENCY", strconv.Itoa(*fConc))
	mustSetEnv("WORKER_PER_SERVICE_CONCURRENCY", strconv.Itoa(*fPerSvc))
	mustSetEnv("WORKER_LEASE_SECONDS", strconv.Itoa(*fLease))
	mustSetEnv("WORKER_POLL_SECONDS", strconv.Itoa(*fPoll))

	// the worker only needs the probe constructors, not the declared fleet
	probe.RegisterChecks()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	opsSrv := ops.New(root, st.Guard)

	run := runnermod.New(deps, runnermod.Options{
		BatchSize:   *fBatch,
		Lease:       time.Duration(*fLease) * time.Second,
		Poll:        time.Duration(*fPoll) * time.Second,
		Concurrency: *fConc,
		PerService:  *fPerSvc,
		Metrics:     opsSrv.Metrics(),
	})
	module.Register(run.Name(), run.Ports())

	ports := module.MustPortsOf[runnermod.Ports](run)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error { return opsSrv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return opsSrv.Shutdown(sctx)
	})
	g.Go(func() error { return ports.Worker.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal().Err(err).Msg("worker stopped")
	}
	l.Info().Msg("worker exited cleanly")
}

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

	"vigil/internal/services/catalog/builtin"
	catalogmod "vigil/internal/services/catalog/module"
	schedulermod "vigil/internal/services/scheduler/module"
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
		AppName: "vigil-scheduler",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
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
		fTick     = flag.Int("tick_seconds", 15, "seconds between enqueue passes")
		fBatch    = flag.Int("batch", 200, "max due checks claimed per pass")
		fSyncOnly = flag.Bool("sync_only", false, "sync the declared fleet into the catalog and exit")
	)
	flag.Parse()

	// Export as env so the module can also read via FromConfig
	mustSetEnv("SCHEDULER_TICK_SECONDS", strconv.Itoa(*fTick))
	mustSetEnv("SCHEDULER_BATCH_SIZE", strconv.Itoa(*fBatch))

	// probe classes first so catalog validation can resolve the fleet's class paths
	probe.RegisterChecks()
	builtin.Register()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	opsSrv := ops.New(root, st.Guard)

	cat := catalogmod.New(deps)
	module.Register(cat.Name(), cat.Ports())

	sched := schedulermod.New(deps, schedulermod.Options{
		Tick:      time.Duration(*fTick) * time.Second,
		BatchSize: *fBatch,
		Metrics:   opsSrv.Metrics(),
	})
	module.Register(sched.Name(), sched.Ports())

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := module.MustPortsOf[catalogmod.Ports](cat).Sync.SyncRegistered(sigCtx)
	if err != nil {
		l.Fatal().Err(err).Msg("catalog sync failed")
	}
	l.Info().
		Int("services", report.Services).
		Int("checks", report.Checks).
		Int("disabled", report.Disabled).
		Int("dependencies", report.Dependencies).
		Msg("catalog synced")
	if *fSyncOnly {
		return
	}

	ports := module.MustPortsOf[schedulermod.Ports](sched)

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
		l.Fatal().Err(err).Msg("scheduler stopped")
	}
	l.Info().Msg("scheduler exited cleanly")
}

// Package ops hosts the operational HTTP listener shared by the binaries
// it serves liveness, readiness, metrics, and optional pprof and never
// exposes domain data
package ops

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/internal/core/version"
	"vigil/internal/platform/config"
	"vigil/internal/platform/logger"
)

// ReadyFunc reports whether downstream dependencies answer
type ReadyFunc func(context.Context) error

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr    string
	mux     *chi.Mux
	srv     *stdhttp.Server
	metrics *Metrics
	ready   ReadyFunc
}

// New creates the ops server from OPS_ config keys
// an empty OPS_PORT disables the listener entirely
func New(cfg config.Conf, ready ReadyFunc) *Server {
	addr := cfg.MayString("OPS_PORT", "")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := NewMetrics(reg)

	s := &Server{
		addr:    addr,
		metrics: m,
		ready:   ready,
	}
	if addr == "" {
		return s
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)

	mux.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Get("/readyz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if s.ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.ready(ctx); err != nil {
				w.WriteHeader(stdhttp.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
		}
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Get("/version", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Info())
	})
	mux.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if cfg.MayBool("OPS_PPROF", false) {
		mux.Mount("/debug", chimw.Profiler())
	}

	s.mux = mux
	s.srv = &stdhttp.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Metrics returns the collector set registered on this listener
func (s *Server) Metrics() *Metrics { return s.metrics }

// Addr returns the listening address, empty when disabled
func (s *Server) Addr() string { return s.addr }

// Handler exposes the mux for tests, nil when disabled
func (s *Server) Handler() stdhttp.Handler {
	if s == nil || s.mux == nil {
		return nil
	}
	return s.mux
}

// Run starts the listener and blocks until it is shut down
// disabled servers return immediately
func (s *Server) Run(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	log := logger.Named("ops")
	log.Info().Str("addr", s.addr).Msg("ops listening")
	err := s.srv.ListenAndServe()
	if err == stdhttp.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Package module wires the runner service and exposes its ports
package module

import (
	"vigil/internal/adapters/probe"
	"vigil/internal/modkit"
	rdom "vigil/internal/services/runner/domain"
	"vigil/internal/services/runner/service"
)

// Ports exposed by the runner module
type Ports struct {
	Worker rdom.WorkerPort
	Batch  rdom.BatchPort
}

// Module defines the runner module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the runner module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults from config then apply explicit overrides
	opts := FromConfig(deps.Cfg)
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}
	if overrides.Lease != 0 {
		opts.Lease = overrides.Lease
	}
	if overrides.Poll != 0 {
		opts.Poll = overrides.Poll
	}
	if overrides.Concurrency != 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.PerService != 0 {
		opts.PerService = overrides.PerService
	}
	if overrides.DefaultTimeout != 0 {
		opts.DefaultTimeout = overrides.DefaultTimeout
	}
	if overrides.Client != nil {
		opts.Client = overrides.Client
	}
	if overrides.Metrics != nil {
		opts.Metrics = overrides.Metrics
	}

	client := opts.Client
	if client == nil {
		ch := deps.Cfg.Prefix("CHECKER_")
		client = probe.New(probe.Options{
			UserAgent:        ch.MayString("USER_AGENT", "vigil/1"),
			MaxBodyBytes:     int64(ch.MayInt("MAX_BODY_BYTES", 1<<20)),
			MaxJSONBodyBytes: int64(ch.MayInt("MAX_JSON_BODY_BYTES", 0)),
		})
	}

	svc := service.New(deps, client, service.Config{
		BatchSize:      opts.BatchSize,
		Lease:          opts.Lease,
		Poll:           opts.Poll,
		Concurrency:    opts.Concurrency,
		PerService:     opts.PerService,
		DefaultTimeout: opts.DefaultTimeout,
	}, opts.Metrics)

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc, Batch: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "runner" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Package module wires the scheduler service and exposes its ports
package module

import (
	"vigil/internal/modkit"
	sdom "vigil/internal/services/scheduler/domain"
	"vigil/internal/services/scheduler/service"
)

// Ports exposed by the scheduler module
type Ports struct {
	Ticker sdom.TickPort
	Worker sdom.WorkerPort
}

// Module defines the scheduler module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the scheduler module with its ports
func New(deps modkit.Deps, overrides Options) *Module {
	// Load defaults from config then apply explicit overrides
	opts := FromConfig(deps.Cfg)
	if overrides.Tick != 0 {
		opts.Tick = overrides.Tick
	}
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}
	if overrides.MaxAttempts != 0 {
		opts.MaxAttempts = overrides.MaxAttempts
	}
	if overrides.Metrics != nil {
		opts.Metrics = overrides.Metrics
	}

	svc := service.New(deps, service.Config{
		Tick:        opts.Tick,
		BatchSize:   opts.BatchSize,
		MaxAttempts: opts.MaxAttempts,
	}, opts.Metrics)

	m := &Module{deps: deps}
	m.ports = Ports{Ticker: svc, Worker: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

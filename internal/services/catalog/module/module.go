// Package module wires the catalog service and exposes its ports
package module

import (
	"vigil/internal/modkit"
	"vigil/internal/services/catalog/domain"
	"vigil/internal/services/catalog/service"
)

// Ports exposed by the catalog module
type Ports struct {
	Sync domain.SyncPort
}

// Module wires the catalog sync service
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the catalog module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps)
	return &Module{deps: deps, ports: Ports{Sync: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "catalog" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Package domain defines the catalog types and ports
package domain

import "vigil/internal/core/checker"

// Definition is one registered service checker flattened for persistence,
// weights already resolved and defaults applied
type Definition struct {
	ServiceKey             string `validate:"required"`
	Slug                   string `validate:"required"`
	Name                   string `validate:"required"`
	OfficialUptime         string `validate:"omitempty,url"`
	DefaultIntervalSeconds int    `validate:"gt=0"`

	Checks       []CheckDef      `validate:"required,min=1,dive"`
	Dependencies []DependencyDef `validate:"dive"`
}

// CheckDef is one probe row ready for upsert
type CheckDef struct {
	CheckKey        string `validate:"required"`
	ClassPath       string `validate:"required"`
	Config          map[string]any
	IntervalSeconds int     `validate:"gt=0"`
	TimeoutSeconds  int     `validate:"gt=0"`
	Weight          float64 `validate:"gt=0,lte=1"`
}

// DependencyDef is one declared upstream edge, target still a service key
type DependencyDef struct {
	ServiceKey string                 `validate:"required"`
	Type       checker.DependencyType `validate:"oneof=hard soft"`
	Weight     float64                `validate:"gt=0"`
}

// SyncReport summarizes one catalog sync
type SyncReport struct {
	Services     int
	Checks       int
	Disabled     int
	Dependencies int
}

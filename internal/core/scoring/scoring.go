// Package scoring reduces per-check results to service snapshots and decides
// incident transitions
package scoring

import (
	"github.com/google/uuid"

	"vigil/internal/core/checker"
)

// Outcome is one full reduction for a service: everything a snapshot row records
type Outcome struct {
	RawScore       float64
	EffectiveScore float64
	Status         checker.Status
	Impacted       bool
	RootServiceID  *uuid.UUID
	Confidence     float64
}

// Reduce maps the latest check results and upstream states for one service
// onto its snapshot values
func Reduce(checks []CheckSignal, deps []DependencySignal) Outcome {
	raw := RawScore(checks)
	status := StatusFromScore(raw)
	att := Attribute(status, deps)
	return Outcome{
		RawScore:       raw,
		EffectiveScore: EffectiveScore(raw, att.Impacted, att.Confidence),
		Status:         status,
		Impacted:       att.Impacted,
		RootServiceID:  att.RootServiceID,
		Confidence:     att.Confidence,
	}
}

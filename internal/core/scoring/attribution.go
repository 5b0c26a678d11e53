package scoring

import (
	"math"

	"github.com/google/uuid"

	"vigil/internal/core/checker"
)

// DependencySignal is the latest snapshot state of one declared upstream
type DependencySignal struct {
	ServiceID uuid.UUID
	Status    checker.Status
	Type      checker.DependencyType
	Weight    float64
}

// Attribution assigns a non-up service state to its most plausible upstream
type Attribution struct {
	Impacted      bool
	RootServiceID *uuid.UUID
	Confidence    float64
}

// Attribute picks the unhealthy upstream with the greatest impact score as
// the probable root of this service's state. Healthy services and services
// with no unhealthy upstreams attribute to nothing. Ties keep the first
// declared signal
func Attribute(status checker.Status, signals []DependencySignal) Attribution {
	if status == checker.StatusUp {
		return Attribution{}
	}

	var (
		found      bool
		best       DependencySignal
		bestImpact float64
	)
	for _, sig := range signals {
		if sig.Weight <= 0 {
			continue
		}
		if sig.Status != checker.StatusDegraded && sig.Status != checker.StatusDown {
			continue
		}
		impact := impactScore(sig)
		if !found || impact > bestImpact {
			found = true
			best = sig
			bestImpact = impact
		}
	}
	if !found {
		return Attribution{}
	}

	conf := 0.35 + 0.4*bestImpact
	if conf > 0.95 {
		conf = 0.95
	}
	root := best.ServiceID
	return Attribution{
		Impacted:      true,
		RootServiceID: &root,
		Confidence:    round3(conf),
	}
}

// impactScore weighs an unhealthy upstream: down outranks degraded, hard
// edges outrank soft ones
func impactScore(sig DependencySignal) float64 {
	severity := 0.6
	if sig.Status == checker.StatusDown {
		severity = 1.0
	}
	factor := 1.0
	if sig.Type == checker.DependencyHard {
		factor = 1.3
	}
	return sig.Weight * severity * factor
}

// EffectiveScore lifts the raw score toward 100 in proportion to attribution
// confidence; unattributed services keep their raw score untouched
func EffectiveScore(raw float64, impacted bool, confidence float64) float64 {
	if !impacted {
		return raw
	}
	eff := raw + (100-raw)*(0.15+0.35*confidence)
	if eff > 100 {
		eff = 100
	}
	return round2(eff)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

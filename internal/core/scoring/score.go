package scoring

import "vigil/internal/core/checker"

// CheckSignal is the latest outcome of one enabled check plus its catalog weight
type CheckSignal struct {
	CheckKey  string
	Status    checker.Status
	LatencyMS *int
	Weight    float64
}

// ScoreForResult maps one check outcome onto its score contribution.
// Degraded results grade on latency; unknown statuses read as down
func ScoreForResult(status checker.Status, latencyMS *int) float64 {
	switch status {
	case checker.StatusUp:
		return 100
	case checker.StatusDegraded:
		if latencyMS == nil {
			return 60
		}
		switch l := *latencyMS; {
		case l <= 500:
			return 80
		case l <= 1000:
			return 65
		default:
			return 45
		}
	default:
		return 0
	}
}

// RawScore is the weighted average of per-check scores. Checks with no
// recorded result are simply absent from signals and contribute no weight;
// with no signals at all the service reads a clean 100
func RawScore(signals []CheckSignal) float64 {
	var sum, mass float64
	for _, s := range signals {
		if s.Weight <= 0 {
			continue
		}
		sum += s.Weight * ScoreForResult(s.Status, s.LatencyMS)
		mass += s.Weight
	}
	if mass == 0 {
		return 100
	}
	return sum / mass
}

// StatusFromScore buckets a raw score: 95 and above is up, 60 and above
// degraded, the rest down
func StatusFromScore(score float64) checker.Status {
	switch {
	case score >= 95:
		return checker.StatusUp
	case score >= 60:
		return checker.StatusDegraded
	default:
		return checker.StatusDown
	}
}

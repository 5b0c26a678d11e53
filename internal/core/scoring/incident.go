package scoring

import (
	"fmt"

	"vigil/internal/core/checker"
)

// SeverityRank orders statuses for incident escalation: up 0, degraded 1, down 2
func SeverityRank(s checker.Status) int {
	switch s {
	case checker.StatusDown:
		return 2
	case checker.StatusDegraded:
		return 1
	default:
		return 0
	}
}

// IncidentAction is the write a new snapshot implies for incident state
type IncidentAction int

const (
	// IncidentNone leaves incident state alone
	IncidentNone IncidentAction = iota
	// IncidentOpen starts a new incident for the service
	IncidentOpen
	// IncidentUpdate refreshes the open incident with the latest severity and attribution
	IncidentUpdate
	// IncidentResolve closes the open incident
	IncidentResolve
)

// OpenIncident is the slice of an open incident row the decision needs
type OpenIncident struct {
	PeakSeverity checker.Status
}

// IncidentDecision tells the writer what to do alongside a snapshot
type IncidentDecision struct {
	Action IncidentAction
	// PeakSeverity is the severity to record: the snapshot status when
	// opening, or the possibly raised peak when updating
	PeakSeverity checker.Status
	// Summary is set when opening
	Summary string
}

// NextIncidentAction decides the incident transition for a newly computed
// status given the currently open incident, if any. The only transitions are
// no-incident to open on the first non-up snapshot, open to open while the
// service stays non-up (peaks only ever rise), and open to resolved on the
// first up snapshot
func NextIncidentAction(status checker.Status, open *OpenIncident) IncidentDecision {
	if status == checker.StatusUp {
		if open == nil {
			return IncidentDecision{Action: IncidentNone}
		}
		return IncidentDecision{Action: IncidentResolve}
	}

	if open == nil {
		return IncidentDecision{
			Action:       IncidentOpen,
			PeakSeverity: status,
			Summary:      fmt.Sprintf("Service entered %s state", status),
		}
	}

	peak := open.PeakSeverity
	if SeverityRank(status) > SeverityRank(peak) {
		peak = status
	}
	return IncidentDecision{Action: IncidentUpdate, PeakSeverity: peak}
}

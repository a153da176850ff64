package triage

import (
	"math"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// Classification is a priority tier with its urgency window in hours.
type Classification struct {
	Priority entities.Priority `json:"priority"`
	Urgency  int               `json:"urgency"`
}

func (e *Engine) classify(adjusted float64, scan entities.ScanResult, patient entities.PatientContext) Classification {
	band := e.rules.FallbackBand
	if scan.MTFSuspected {
		band = PriorityBand{Priority: entities.PriorityCritical, UrgencyHours: e.rules.MTFUrgencyHours}
	} else {
		for _, b := range e.rules.PriorityBands {
			if adjusted >= b.MinScore {
				band = b
				break
			}
		}
	}

	priority := band.Priority
	urgency := band.UrgencyHours

	// age only shortens the window, it never changes the tier
	for _, ub := range e.rules.AgeUrgencyBands {
		if patient.Age > ub.Above {
			urgency = math.Min(urgency, urgency*ub.Factor)
			break
		}
	}

	if e.hasHighRiskLocation(scan.KeyFindings.Fractures) {
		switch priority {
		case entities.PriorityMedium:
			priority = entities.PriorityHigh
		case entities.PriorityHigh:
			priority = entities.PriorityCritical
		}
		urgency *= e.rules.LocationUrgencyFactor
	}

	hours := int(math.Round(urgency))
	if hours < 1 {
		hours = 1
	}
	return Classification{Priority: priority, Urgency: hours}
}

func (e *Engine) hasHighRiskLocation(fractures []entities.Fracture) bool {
	for _, f := range fractures {
		loc := strings.ToLower(f.Location)
		for _, site := range e.rules.HighRiskLocations {
			if strings.Contains(loc, site) {
				return true
			}
		}
	}
	return false
}

package triage

import (
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// Estimate is the referral decision and expected cost of care.
type Estimate struct {
	SpecialistReferral bool    `json:"specialistReferral"`
	EstimatedCost      float64 `json:"estimatedCost"`
}

func (e *Engine) estimate(priority entities.Priority, scan entities.ScanResult, patient entities.PatientContext) Estimate {
	severe := priority == entities.PriorityCritical || priority == entities.PriorityHigh

	referral := severe ||
		scan.MTFSuspected ||
		(patient.Age > e.rules.ReferralAge && patient.PreviousFractures > 0) ||
		len(e.MedicationCategories(patient.Medications)) > e.rules.ReferralMedicationThreshold

	c := e.rules.Cost
	cost := c.BaseEvaluation
	if referral {
		cost += c.Referral
	}
	if severe {
		cost += c.Imaging + c.Labs
	}
	if scan.RiskScore >= c.TreatmentScoreThreshold {
		cost += c.Pharmacotherapy + c.PhysicalTherapy
	}
	if priority == entities.PriorityCritical {
		cost += c.UrgentWorkup
	}

	return Estimate{SpecialistReferral: referral, EstimatedCost: cost}
}

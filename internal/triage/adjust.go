package triage

import (
	"math"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

func (e *Engine) adjust(scan entities.ScanResult, patient entities.PatientContext) float64 {
	w := e.rules.Weights
	score := scan.RiskScore

	// bands are ordered highest first; only the first match applies
	for _, band := range w.AgeBands {
		if patient.Age > band.Above {
			score += band.Points
			break
		}
	}

	if ParseGender(patient.Gender) == GenderFemale {
		if patient.Age > w.MenopauseAge {
			score += w.MenopausePoints
		}
		if patient.Age > w.ElderlyFemaleAge {
			score += w.ElderlyFemalePoints
		}
	}

	score += math.Min(float64(patient.PreviousFractures)*w.PerPreviousFracture, w.PreviousFractureCap)
	score += float64(len(e.MedicationCategories(patient.Medications))) * w.PerMedicationCategory

	if e.hasFamilyHistory(patient.FamilyHistory) {
		score += w.FamilyHistory
	}

	if ls := patient.Lifestyle; ls != nil {
		if ls.Smoking {
			score += w.Smoking
		}
		if ls.Alcohol {
			score += w.Alcohol
		}
		if !ls.Exercise {
			score += w.NoExercise
		}
		if !ls.CalciumIntake {
			score += w.LowCalcium
		}
	}

	if scan.MTFSuspected {
		score += w.MTFSuspected
	}

	return clamp(score, 0, 100)
}

func (e *Engine) hasFamilyHistory(history []string) bool {
	for _, entry := range history {
		lower := strings.ToLower(entry)
		for _, term := range e.rules.FamilyHistoryTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

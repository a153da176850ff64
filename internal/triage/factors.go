package triage

import (
	"fmt"
	"strconv"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// riskFactors merges the scan's own factors with those derived from patient
// context. Order is stable: scan factors first, then context factors.
func (e *Engine) riskFactors(scan entities.ScanResult, patient entities.PatientContext) []string {
	w := e.rules.Weights
	set := newStringSet()
	set.add(scan.KeyFindings.RiskFactors...)

	if last := len(w.AgeBands) - 1; last >= 0 && patient.Age > w.AgeBands[last].Above {
		set.add(fmt.Sprintf("Advanced age (%s years)", strconv.FormatFloat(patient.Age, 'f', -1, 64)))
	}
	if ParseGender(patient.Gender) == GenderFemale && patient.Age > w.MenopauseAge {
		set.add("Postmenopausal female")
	}
	if n := patient.PreviousFractures; n == 1 {
		set.add("History of 1 previous fracture")
	} else if n > 1 {
		set.add(fmt.Sprintf("History of %d previous fractures", n))
	}
	for _, category := range e.MedicationCategories(patient.Medications) {
		set.add("Medication risk: " + category)
	}
	if e.hasFamilyHistory(patient.FamilyHistory) {
		set.add("Family history of osteoporosis or fracture")
	}
	if ls := patient.Lifestyle; ls != nil {
		if ls.Smoking {
			set.add("Smoking")
		}
		if ls.Alcohol {
			set.add("Alcohol use")
		}
		if !ls.Exercise {
			set.add("Sedentary lifestyle")
		}
		if !ls.CalciumIntake {
			set.add("Low calcium intake")
		}
	}
	if scan.MTFSuspected {
		set.add("Suspected minimal trauma fracture")
	}
	return set.values()
}

func (e *Engine) preventionMeasures(patient entities.PatientContext, priority entities.Priority) []string {
	p := e.rules.Prevention
	set := newStringSet()
	set.add(p.Base...)

	if ls := patient.Lifestyle; ls != nil {
		if ls.Smoking {
			set.add(p.SmokingCessation)
		}
		if ls.Alcohol {
			set.add(p.AlcoholReduction)
		}
		if !ls.Exercise {
			set.add(p.Exercise)
		}
		if !ls.CalciumIntake {
			set.add(p.DietaryCalcium)
		}
	}
	if patient.Age > e.rules.GeriatricAge {
		set.add(p.HomeSafety)
	}
	for _, category := range e.MedicationCategories(patient.Medications) {
		if category == "corticosteroids" {
			set.add(p.SteroidReview)
		}
	}
	if priority.Rank() >= entities.PriorityHigh.Rank() {
		set.add(p.BoneProtectiveTherapy)
	}
	return set.values()
}

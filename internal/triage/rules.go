// Package triage implements the deterministic risk adjustment and triage
// engine for minimal-trauma fracture findings. Every function in this package
// is pure: the output depends only on the inputs and the injected Rules.
package triage

import (
	"regexp"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// MedicationRule maps a medication name pattern onto a risk category.
type MedicationRule struct {
	Category string
	Pattern  *regexp.Regexp
}

// AgeBand awards Points when age is strictly greater than Above.
type AgeBand struct {
	Above  float64
	Points float64
}

// PriorityBand assigns a priority when the adjusted score is at least MinScore.
type PriorityBand struct {
	MinScore     float64
	Priority     entities.Priority
	UrgencyHours float64
}

// UrgencyBand scales urgency by Factor when age is strictly greater than Above.
type UrgencyBand struct {
	Above  float64
	Factor float64
}

// Weights are the additive score contributions.
type Weights struct {
	AgeBands []AgeBand

	MenopauseAge        float64
	MenopausePoints     float64
	ElderlyFemaleAge    float64
	ElderlyFemalePoints float64

	PerPreviousFracture float64
	PreviousFractureCap float64

	PerMedicationCategory float64
	FamilyHistory         float64

	Smoking    float64
	Alcohol    float64
	NoExercise float64
	LowCalcium float64

	MTFSuspected float64
}

// CostModel holds the additive cost components in currency units.
type CostModel struct {
	BaseEvaluation  float64
	Referral        float64
	Imaging         float64
	Labs            float64
	Pharmacotherapy float64
	PhysicalTherapy float64
	UrgentWorkup    float64

	// TreatmentScoreThreshold gates pharmacotherapy and physical therapy on the raw scan score.
	TreatmentScoreThreshold float64
}

// Prevention holds the prevention measure texts.
type Prevention struct {
	Base                  []string
	SmokingCessation      string
	AlcoholReduction      string
	Exercise              string
	DietaryCalcium        string
	HomeSafety            string
	SteroidReview         string
	BoneProtectiveTherapy string
}

// Rules is the complete, injected configuration of the engine: scoring
// weights, thresholds and the static risk factor catalog. An Engine keeps its
// own deep copy, so a Rules value may be reused or modified after NewEngine.
type Rules struct {
	Weights Weights

	PriorityBands   []PriorityBand
	FallbackBand    PriorityBand
	MTFUrgencyHours float64

	AgeUrgencyBands       []UrgencyBand
	HighRiskLocations     []string
	LocationUrgencyFactor float64

	Medications        []MedicationRule
	FamilyHistoryTerms []string

	PriorityRecommendations      map[entities.Priority][]string
	GeriatricAge                 float64
	GeriatricRecommendations     []string
	HormonalRecommendations      []string
	PriorFractureRecommendations []string

	ReferralAge                 float64
	ReferralMedicationThreshold int

	Cost       CostModel
	Prevention Prevention
}

// DefaultRules returns a fresh copy of the reference rule set.
func DefaultRules() Rules {
	return Rules{
		Weights: Weights{
			AgeBands: []AgeBand{
				{Above: 80, Points: 20},
				{Above: 75, Points: 15},
				{Above: 70, Points: 10},
				{Above: 65, Points: 5},
			},
			MenopauseAge:          50,
			MenopausePoints:       10,
			ElderlyFemaleAge:      65,
			ElderlyFemalePoints:   5,
			PerPreviousFracture:   8,
			PreviousFractureCap:   25,
			PerMedicationCategory: 5,
			FamilyHistory:         8,
			Smoking:               7,
			Alcohol:               5,
			NoExercise:            6,
			LowCalcium:            4,
			MTFSuspected:          15,
		},
		PriorityBands: []PriorityBand{
			{MinScore: 85, Priority: entities.PriorityCritical, UrgencyHours: 4},
			{MinScore: 70, Priority: entities.PriorityHigh, UrgencyHours: 12},
			{MinScore: 50, Priority: entities.PriorityMedium, UrgencyHours: 48},
			{MinScore: 30, Priority: entities.PriorityMedium, UrgencyHours: 72},
		},
		FallbackBand:    PriorityBand{Priority: entities.PriorityLow, UrgencyHours: 168},
		MTFUrgencyHours: 4,
		AgeUrgencyBands: []UrgencyBand{
			{Above: 80, Factor: 0.5},
			{Above: 75, Factor: 0.7},
		},
		HighRiskLocations:     []string{"hip", "vertebral", "femur"},
		LocationUrgencyFactor: 0.6,
		Medications: []MedicationRule{
			{Category: "corticosteroids", Pattern: regexp.MustCompile(`(?i)(predniso|cortison|dexamethason|hydrocortison|methylpredniso|budesonid|steroid)`)},
			{Category: "proton-pump inhibitors", Pattern: regexp.MustCompile(`(?i)(omeprazol|esomeprazol|lansoprazol|pantoprazol|rabeprazol|\bppi\b)`)},
			{Category: "anticonvulsants", Pattern: regexp.MustCompile(`(?i)(phenytoin|carbamazepin|phenobarbit|valpro|levetiracetam|lamotrigin|anticonvulsant)`)},
			{Category: "anticoagulants", Pattern: regexp.MustCompile(`(?i)(warfarin|heparin|enoxaparin|apixaban|rivaroxaban|dabigatran|anticoagulant)`)},
			{Category: "sedatives", Pattern: regexp.MustCompile(`(?i)(diazepam|lorazepam|alprazolam|clonazepam|temazepam|zolpidem|benzodiazepin|sedative)`)},
			{Category: "thyroid hormone", Pattern: regexp.MustCompile(`(?i)(levothyroxin|thyroxin|liothyronin|synthroid|(?:^|[^a-z-])thyroid)`)},
		},
		FamilyHistoryTerms: []string{"osteoporosis", "fracture"},
		PriorityRecommendations: map[entities.Priority][]string{
			entities.PriorityCritical: {
				"Urgent orthopedic consultation within 24 hours",
				"Immediate DEXA bone density scan",
				"Refer to fracture liaison service",
				"Initiate osteoporosis pharmacotherapy assessment",
			},
			entities.PriorityHigh: {
				"Orthopedic consultation within 1 week",
				"DEXA bone density scan within 2 weeks",
				"Refer to fracture liaison service",
			},
			entities.PriorityMedium: {
				"Primary care follow-up within 4 weeks",
				"Consider DEXA bone density scan",
				"Calculate FRAX 10-year fracture probability",
			},
		},
		GeriatricAge: 75,
		GeriatricRecommendations: []string{
			"Comprehensive geriatric assessment",
			"Falls prevention program referral",
		},
		HormonalRecommendations: []string{
			"Menopausal hormonal health review",
			"Serum vitamin D and calcium testing",
		},
		PriorFractureRecommendations: []string{
			"Review imaging of previous fracture sites",
			"Re-examine healing of prior fractures",
		},
		ReferralAge:                 75,
		ReferralMedicationThreshold: 1,
		Cost: CostModel{
			BaseEvaluation:          150,
			Referral:                300,
			Imaging:                 200,
			Labs:                    100,
			Pharmacotherapy:         500,
			PhysicalTherapy:         300,
			UrgentWorkup:            1000,
			TreatmentScoreThreshold: 70,
		},
		Prevention: Prevention{
			Base: []string{
				"Fall risk assessment and prevention plan",
				"Calcium and vitamin D intake review",
			},
			SmokingCessation:      "Smoking cessation program",
			AlcoholReduction:      "Reduce alcohol intake to recommended limits",
			Exercise:              "Weight-bearing and balance exercise program",
			DietaryCalcium:        "Increase dietary calcium intake",
			HomeSafety:            "Home safety modification assessment",
			SteroidReview:         "Review corticosteroid dose and bone protection",
			BoneProtectiveTherapy: "Evaluate bone-protective pharmacotherapy",
		},
	}
}

func (r Rules) clone() Rules {
	c := r
	c.Weights.AgeBands = append([]AgeBand(nil), r.Weights.AgeBands...)
	c.PriorityBands = append([]PriorityBand(nil), r.PriorityBands...)
	c.AgeUrgencyBands = append([]UrgencyBand(nil), r.AgeUrgencyBands...)
	c.HighRiskLocations = append([]string(nil), r.HighRiskLocations...)
	c.Medications = append([]MedicationRule(nil), r.Medications...)
	c.FamilyHistoryTerms = append([]string(nil), r.FamilyHistoryTerms...)
	c.GeriatricRecommendations = append([]string(nil), r.GeriatricRecommendations...)
	c.HormonalRecommendations = append([]string(nil), r.HormonalRecommendations...)
	c.PriorFractureRecommendations = append([]string(nil), r.PriorFractureRecommendations...)
	c.Prevention.Base = append([]string(nil), r.Prevention.Base...)

	c.PriorityRecommendations = make(map[entities.Priority][]string, len(r.PriorityRecommendations))
	for p, recs := range r.PriorityRecommendations {
		c.PriorityRecommendations[p] = append([]string(nil), recs...)
	}
	return c
}

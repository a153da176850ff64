package triage_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
)

func newEngine() *triage.Engine {
	return triage.NewEngine(triage.DefaultRules())
}

func scan(score float64, mtf bool, locations ...string) entities.ScanResult {
	s := entities.ScanResult{
		PatientID:    "p-1",
		RiskScore:    score,
		RiskLevel:    entities.RiskLevelMedium,
		MTFSuspected: mtf,
		Confidence:   85,
	}
	for _, loc := range locations {
		s.KeyFindings.Fractures = append(s.KeyFindings.Fractures, entities.Fracture{Location: loc, Severity: entities.SeverityModerate})
	}
	return s
}

func TestAssess_ScenarioA_ElderlyFemaleWithMTF(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 82, Gender: "female", PreviousFractures: 2}

	result := engine.Assess(scan(60, true), patient)

	assert.Equal(t, 100.0, result.AdjustedScore)
	assert.Equal(t, entities.PriorityCritical, result.Assessment.Priority)
	// base window of 4 hours, halved for age over 80
	assert.Equal(t, 2, result.Assessment.Urgency)
	assert.True(t, result.Assessment.SpecialistReferral)
	assert.True(t, result.Assessment.FollowUpRequired)
}

func TestAssess_ScenarioB_NoEscalation(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 68, Gender: "male"}

	result := engine.Assess(scan(40, false, "distal radius"), patient)

	assert.Equal(t, 45.0, result.AdjustedScore)
	assert.Equal(t, entities.PriorityMedium, result.Assessment.Priority)
	assert.Equal(t, 72, result.Assessment.Urgency)
}

func TestAssess_ScenarioC_HipFractureEscalates(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 60, Gender: "male"}

	result := engine.Assess(scan(55, false, "hip fracture"), patient)

	assert.Equal(t, 55.0, result.AdjustedScore)
	assert.Equal(t, entities.PriorityHigh, result.Assessment.Priority)
	assert.Equal(t, 29, result.Assessment.Urgency) // 48 * 0.6 = 28.8
}

func TestClassify_LowPriorityIsNotBumpedByLocation(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 40, Gender: "male"}

	class := engine.Classify(10, scan(10, false, "Femur shaft"), patient)

	assert.Equal(t, entities.PriorityLow, class.Priority)
	assert.Equal(t, 101, class.Urgency) // 168 * 0.6 = 100.8
}

func TestClassify_HighBumpsToCritical(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 50, Gender: "male"}

	class := engine.Classify(72, scan(72, false, "L2 VERTEBRAL compression"), patient)

	assert.Equal(t, entities.PriorityCritical, class.Priority)
	assert.Equal(t, 7, class.Urgency) // 12 * 0.6 = 7.2
}

func TestClassify_AgeMultiplierAppliedBeforeLocation(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		name     string
		age      float64
		score    float64
		priority entities.Priority
		urgency  int
	}{
		// 12h, x0.5 for age, x0.6 for location = 3.6
		{name: "over 80", age: 82, score: 70, priority: entities.PriorityCritical, urgency: 4},
		// 48h, x0.7 for age, x0.6 for location = 20.16
		{name: "over 75", age: 77, score: 65, priority: entities.PriorityHigh, urgency: 20},
		// 48h, no age factor, x0.6 for location = 28.8
		{name: "75 exactly", age: 75, score: 65, priority: entities.PriorityHigh, urgency: 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patient := entities.PatientContext{Age: tt.age, Gender: "male"}
			class := engine.Classify(tt.score, scan(tt.score, false, "femur"), patient)
			assert.Equal(t, tt.priority, class.Priority)
			assert.Equal(t, tt.urgency, class.Urgency)
		})
	}
}

func TestClassify_ScoreBands(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 40, Gender: "male"}

	tests := []struct {
		score    float64
		priority entities.Priority
		urgency  int
	}{
		{score: 100, priority: entities.PriorityCritical, urgency: 4},
		{score: 85, priority: entities.PriorityCritical, urgency: 4},
		{score: 84.9, priority: entities.PriorityHigh, urgency: 12},
		{score: 70, priority: entities.PriorityHigh, urgency: 12},
		{score: 50, priority: entities.PriorityMedium, urgency: 48},
		{score: 49, priority: entities.PriorityMedium, urgency: 72},
		{score: 30, priority: entities.PriorityMedium, urgency: 72},
		{score: 29.9, priority: entities.PriorityLow, urgency: 168},
		{score: 0, priority: entities.PriorityLow, urgency: 168},
	}
	for _, tt := range tests {
		class := engine.Classify(tt.score, scan(tt.score, false), patient)
		assert.Equal(t, tt.priority, class.Priority, "score %v", tt.score)
		assert.Equal(t, tt.urgency, class.Urgency, "score %v", tt.score)
	}
}

func TestClassify_UrgencyNeverBelowOneHour(t *testing.T) {
	rules := triage.DefaultRules()
	rules.MTFUrgencyHours = 1
	engine := triage.NewEngine(rules)

	class := engine.Classify(100, scan(100, true, "hip"), entities.PatientContext{Age: 90, Gender: "female"})

	assert.Equal(t, entities.PriorityCritical, class.Priority)
	assert.Equal(t, 1, class.Urgency) // 1 * 0.5 * 0.6 rounds to 0
}

func TestAdjust_Contributions(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		name    string
		patient entities.PatientContext
		want    float64
	}{
		{"baseline", entities.PatientContext{Age: 40, Gender: "male"}, 20},
		{"age over 65", entities.PatientContext{Age: 66, Gender: "male"}, 25},
		{"age over 70", entities.PatientContext{Age: 71, Gender: "male"}, 30},
		{"age over 75", entities.PatientContext{Age: 76, Gender: "male"}, 35},
		{"age over 80", entities.PatientContext{Age: 81, Gender: "male"}, 40},
		{"female over 50", entities.PatientContext{Age: 55, Gender: "Female"}, 30},
		{"female over 65", entities.PatientContext{Age: 66, Gender: "F"}, 40},
		{"one previous fracture", entities.PatientContext{Age: 40, Gender: "male", PreviousFractures: 1}, 28},
		{"previous fractures capped", entities.PatientContext{Age: 40, Gender: "male", PreviousFractures: 5}, 45},
		{"negative previous fractures ignored", entities.PatientContext{Age: 40, Gender: "male", PreviousFractures: -3}, 20},
		{
			"two medication categories",
			entities.PatientContext{Age: 40, Gender: "male", Medications: []string{"Prednisone 5mg", "omeprazole 20mg", "Prednisolone"}},
			30,
		},
		{
			"family history counted once",
			entities.PatientContext{Age: 40, Gender: "male", FamilyHistory: []string{"Mother: Osteoporosis", "father hip fracture"}},
			28,
		},
		{
			"unrelated family history",
			entities.PatientContext{Age: 40, Gender: "male", FamilyHistory: []string{"diabetes"}},
			20,
		},
		{
			"all lifestyle risks",
			entities.PatientContext{Age: 40, Gender: "male", Lifestyle: &entities.Lifestyle{Smoking: true, Alcohol: true}},
			42,
		},
		{
			"healthy lifestyle",
			entities.PatientContext{Age: 40, Gender: "male", Lifestyle: &entities.Lifestyle{Exercise: true, CalciumIntake: true}},
			20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Adjust(scan(20, false), tt.patient))
		})
	}
}

func TestAdjust_MTFAddsFifteen(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 40, Gender: "male"}

	assert.Equal(t, 35.0, engine.Adjust(scan(20, true), patient))
}

func TestAdjust_ClampsToRange(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 40, Gender: "male"}

	assert.Equal(t, 0.0, engine.Adjust(scan(-40, false), patient))
	assert.Equal(t, 100.0, engine.Adjust(scan(250, true), patient))
}

func TestAdjust_MonotonicInAge(t *testing.T) {
	engine := newEngine()
	for _, gender := range []string{"female", "male", "unspecified"} {
		prev := -1.0
		for age := 60.0; age <= 85; age++ {
			got := engine.Adjust(scan(30, false), entities.PatientContext{Age: age, Gender: gender})
			assert.GreaterOrEqual(t, got, prev, "gender %s age %v", gender, age)
			prev = got
		}
	}
}

func TestAdjust_MTFNeverDecreasesScore(t *testing.T) {
	engine := newEngine()
	for score := 0.0; score <= 100; score += 5 {
		patient := entities.PatientContext{Age: 70, Gender: "female", PreviousFractures: 1}
		assert.GreaterOrEqual(t, engine.Adjust(scan(score, true), patient), engine.Adjust(scan(score, false), patient))
	}
}

func TestEstimate_ReferralByAgeAndPriorFracture(t *testing.T) {
	engine := newEngine()
	patient := entities.PatientContext{Age: 78, Gender: "male", PreviousFractures: 1}

	est := engine.Estimate(entities.PriorityMedium, scan(40, false), patient)

	assert.True(t, est.SpecialistReferral)
	assert.Equal(t, 450.0, est.EstimatedCost)
}

func TestEstimate_ReferralRules(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		name     string
		priority entities.Priority
		scan     entities.ScanResult
		patient  entities.PatientContext
		referral bool
		cost     float64
	}{
		{"low routine", entities.PriorityLow, scan(20, false), entities.PatientContext{Age: 50}, false, 150},
		{"medium routine", entities.PriorityMedium, scan(40, false), entities.PatientContext{Age: 78}, false, 150},
		{"high", entities.PriorityHigh, scan(60, false), entities.PatientContext{Age: 50}, true, 750},
		{"mtf only", entities.PriorityLow, scan(10, true), entities.PatientContext{Age: 50}, true, 450},
		{
			"one medication category",
			entities.PriorityLow, scan(10, false),
			entities.PatientContext{Age: 50, Medications: []string{"warfarin"}},
			false, 150,
		},
		{
			"two medication categories",
			entities.PriorityLow, scan(10, false),
			entities.PatientContext{Age: 50, Medications: []string{"warfarin", "levothyroxine"}},
			true, 450,
		},
		{"treatment threshold on raw score", entities.PriorityMedium, scan(70, false), entities.PatientContext{Age: 50}, false, 950},
		{"critical full workup", entities.PriorityCritical, scan(90, false), entities.PatientContext{Age: 50}, true, 2550},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := engine.Estimate(tt.priority, tt.scan, tt.patient)
			assert.Equal(t, tt.referral, est.SpecialistReferral)
			assert.Equal(t, tt.cost, est.EstimatedCost)
		})
	}
}

func TestRecommend_UnionIsSortedAndDeduplicated(t *testing.T) {
	engine := newEngine()
	s := scan(60, false)
	s.KeyFindings.Recommendations = []string{"Refer to fracture liaison service", "Check vitamin D", "Check vitamin D", ""}
	patient := entities.PatientContext{Age: 80, Gender: "female", PreviousFractures: 1}

	recs := engine.Recommend(s, patient, entities.PriorityHigh)

	assert.True(t, sortedStrings(recs))
	assert.Equal(t, len(recs), len(uniqueStrings(recs)))
	assert.Contains(t, recs, "Check vitamin D")
	assert.Contains(t, recs, "Orthopedic consultation within 1 week")
	assert.Contains(t, recs, "Comprehensive geriatric assessment")
	assert.Contains(t, recs, "Menopausal hormonal health review")
	assert.Contains(t, recs, "Re-examine healing of prior fractures")
	assert.NotContains(t, recs, "")
}

func TestRecommend_LowPriorityOnlyEchoesScan(t *testing.T) {
	engine := newEngine()
	s := scan(10, false)
	s.KeyFindings.Recommendations = []string{"Routine follow-up"}

	recs := engine.Recommend(s, entities.PatientContext{Age: 30, Gender: "male"}, entities.PriorityLow)

	assert.Equal(t, []string{"Routine follow-up"}, recs)
}

func TestAssess_DerivedFactorsAndPrevention(t *testing.T) {
	engine := newEngine()
	s := scan(50, true, "hip")
	s.KeyFindings.RiskFactors = []string{"Osteopenia noted", "Smoking"}
	patient := entities.PatientContext{
		Age:               79,
		Gender:            "female",
		PreviousFractures: 2,
		Medications:       []string{"prednisone"},
		FamilyHistory:     []string{"osteoporosis"},
		Lifestyle:         &entities.Lifestyle{Smoking: true, Exercise: true},
	}

	result := engine.Assess(s, patient)

	assert.Equal(t, []string{
		"Osteopenia noted",
		"Smoking",
		"Advanced age (79 years)",
		"Postmenopausal female",
		"History of 2 previous fractures",
		"Medication risk: corticosteroids",
		"Family history of osteoporosis or fracture",
		"Low calcium intake",
		"Suspected minimal trauma fracture",
	}, result.Assessment.RiskFactors)
	assert.Contains(t, result.Assessment.PreventionMeasures, "Smoking cessation program")
	assert.Contains(t, result.Assessment.PreventionMeasures, "Home safety modification assessment")
	assert.Contains(t, result.Assessment.PreventionMeasures, "Review corticosteroid dose and bone protection")
	assert.Contains(t, result.Assessment.PreventionMeasures, "Evaluate bone-protective pharmacotherapy")
	assert.NotContains(t, result.Assessment.PreventionMeasures, "Weight-bearing and balance exercise program")
}

func TestAssess_IsDeterministic(t *testing.T) {
	engine := newEngine()
	s := scan(64, false, "wrist", "vertebral body")
	s.KeyFindings.Recommendations = []string{"b", "a"}
	patient := entities.PatientContext{
		Age: 71, Gender: "female", PreviousFractures: 1,
		Medications: []string{"omeprazole", "lorazepam"},
		Lifestyle:   &entities.Lifestyle{Alcohol: true},
	}

	first := engine.Assess(s, patient)
	second := engine.Assess(s, patient)

	a, err := json.Marshal(first.Assessment)
	require.NoError(t, err)
	b, err := json.Marshal(second.Assessment)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.AdjustedScore, second.AdjustedScore)
}

func TestAssess_BoundsHoldForSloppyInput(t *testing.T) {
	engine := newEngine()
	s := entities.ScanResult{
		RiskScore:  -12,
		RiskLevel:  "EXTREME",
		Confidence: 400,
		KeyFindings: entities.KeyFindings{
			Fractures: []entities.Fracture{{Location: "hip", Severity: "catastrophic"}},
		},
	}

	result := engine.Assess(s, entities.PatientContext{Age: 200, Gender: "", PreviousFractures: -1})

	assert.GreaterOrEqual(t, result.AdjustedScore, 0.0)
	assert.LessOrEqual(t, result.AdjustedScore, 100.0)
	assert.GreaterOrEqual(t, result.Assessment.Urgency, 1)
	assert.GreaterOrEqual(t, result.Assessment.EstimatedCost, 150.0)
	assert.Equal(t, entities.Severity("catastrophic"), s.KeyFindings.Fractures[0].Severity, "input must not be mutated")
}

func TestNewEngine_CopiesRules(t *testing.T) {
	rules := triage.DefaultRules()
	engine := triage.NewEngine(rules)

	rules.Weights.MTFSuspected = 90
	rules.HighRiskLocations[0] = "elbow"

	patient := entities.PatientContext{Age: 40, Gender: "male"}
	assert.Equal(t, 35.0, engine.Adjust(scan(20, true), patient))
	assert.Equal(t, entities.PriorityHigh, engine.Classify(55, scan(55, false, "hip"), patient).Priority)
}

func TestMedicationCategories_CatalogOrder(t *testing.T) {
	engine := newEngine()

	got := engine.MedicationCategories([]string{"Zolpidem 10mg", "Heparin", "Dexamethasone", "Levothyroxine", "Carbamazepine", "Pantoprazole", "vitamin C"})

	assert.Equal(t, []string{
		"corticosteroids", "proton-pump inhibitors", "anticonvulsants", "anticoagulants", "sedatives", "thyroid hormone",
	}, got)
	assert.Empty(t, engine.MedicationCategories([]string{"paracetamol"}))
}

func TestMedicationCategories_ThyroidHormoneOnly(t *testing.T) {
	engine := newEngine()

	tests := []struct {
		medication string
		want       []string
	}{
		{medication: "Levothyroxine 50mcg", want: []string{"thyroid hormone"}},
		{medication: "Armour Thyroid", want: []string{"thyroid hormone"}},
		{medication: "thyroid extract", want: []string{"thyroid hormone"}},
		{medication: "antithyroid (methimazole)", want: nil},
		{medication: "Anti-thyroid therapy", want: nil},
		{medication: "methimazole", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.medication, func(t *testing.T) {
			got := engine.MedicationCategories([]string{tt.medication})
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func sortedStrings(values []string) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}

func uniqueStrings(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

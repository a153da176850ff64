package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
)

// Assessor is the part of the triage engine the runner exercises.
type Assessor interface {
	Assess(scan entities.ScanResult, patient entities.PatientContext) triage.Result
}

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	engine Assessor
}

func NewRunner(engine Assessor) *Runner {
	return &Runner{engine: engine}
}

func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalCases: len(cases),
		ByPriority: make(map[entities.Priority]*PrioritySummary),
		Mismatches: []string{},
	}

	for _, gc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		out := r.engine.Assess(gc.ScanResult, gc.PatientContext)
		duration := time.Since(start)

		result := EvalResult{
			CaseID:           gc.ID,
			ExpectedPriority: gc.ExpectedPriority,
			ActualPriority:   out.Assessment.Priority,
			ActualUrgency:    out.Assessment.Urgency,
			ActualReferral:   out.Assessment.SpecialistReferral,
			AdjustedScore:    out.AdjustedScore,
			PriorityMatch:    out.Assessment.Priority == gc.ExpectedPriority,
			Latency:          duration,
		}
		if gc.ExpectedUrgency != nil {
			result.UrgencyChecked = true
			result.UrgencyMatch = out.Assessment.Urgency == *gc.ExpectedUrgency
		}
		if gc.ExpectedReferral != nil {
			result.ReferralChecked = true
			result.ReferralMatch = out.Assessment.SpecialistReferral == *gc.ExpectedReferral
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgLatency += res.Latency
	if res.PriorityMatch {
		s.PriorityAccuracy++
	}
	if res.UrgencyChecked {
		s.UrgencyCases++
		if res.UrgencyMatch {
			s.UrgencyAccuracy++
		}
	}
	if res.ReferralChecked {
		s.ReferralCases++
		if res.ReferralMatch {
			s.ReferralAccuracy++
		}
	}
	if !res.Passed() {
		s.Mismatches = append(s.Mismatches, res.CaseID)
	}

	if _, ok := s.ByPriority[res.ExpectedPriority]; !ok {
		s.ByPriority[res.ExpectedPriority] = &PrioritySummary{}
	}
	ps := s.ByPriority[res.ExpectedPriority]
	ps.Count++
	if res.PriorityMatch {
		ps.Correct++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalCases > 0 {
		s.PriorityAccuracy /= float64(s.TotalCases)
		s.AvgLatency /= time.Duration(s.TotalCases)
	}
	if s.UrgencyCases > 0 {
		s.UrgencyAccuracy /= float64(s.UrgencyCases)
	}
	if s.ReferralCases > 0 {
		s.ReferralAccuracy /= float64(s.ReferralCases)
	}

	for _, ps := range s.ByPriority {
		if ps.Count > 0 {
			ps.Accuracy = float64(ps.Correct) / float64(ps.Count)
		}
	}
}

package triage

import (
	"sort"
	"strings"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

func (e *Engine) recommend(scan entities.ScanResult, patient entities.PatientContext, priority entities.Priority) []string {
	set := newStringSet()
	set.add(scan.KeyFindings.Recommendations...)
	set.add(e.rules.PriorityRecommendations[priority]...)

	if patient.Age > e.rules.GeriatricAge {
		set.add(e.rules.GeriatricRecommendations...)
	}
	if ParseGender(patient.Gender) == GenderFemale && patient.Age > e.rules.Weights.MenopauseAge {
		set.add(e.rules.HormonalRecommendations...)
	}
	if patient.PreviousFractures > 0 {
		set.add(e.rules.PriorFractureRecommendations...)
	}

	out := set.values()
	sort.Strings(out)
	return out
}

// stringSet keeps insertion order and drops blanks and exact duplicates.
type stringSet struct {
	seen  map[string]struct{}
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(values ...string) {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

func (s *stringSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

// AssessmentStore is an in-process AssessmentRepository. Records do not
// survive a restart.
type AssessmentStore struct {
	mu        sync.RWMutex
	records   map[string]entities.AssessmentRecord
	byPatient map[string][]string
}

// NewAssessmentStore creates an empty store
func NewAssessmentStore() repositories.AssessmentRepository {
	return &AssessmentStore{
		records:   make(map[string]entities.AssessmentRecord),
		byPatient: make(map[string][]string),
	}
}

// Save stores a copy of record. Saving an existing ID replaces it.
func (s *AssessmentStore) Save(ctx context.Context, record *entities.AssessmentRecord) error {
	if record == nil || record.ID == "" {
		return apperrors.NewInternalError("assessment record has no id", fmt.Errorf("invalid record"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.records[record.ID]; exists {
		s.removeFromPatient(prev.PatientID, prev.ID)
	}
	s.records[record.ID] = *record
	s.byPatient[record.PatientID] = append(s.byPatient[record.PatientID], record.ID)
	return nil
}

// GetByID returns a copy of the stored record
func (s *AssessmentStore) GetByID(ctx context.Context, id string) (*entities.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("assessment with id %s not found", id))
	}
	return &record, nil
}

// ListByPatient returns the patient's records newest first. limit <= 0 returns all.
func (s *AssessmentStore) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.AssessmentRecord, error) {
	s.mu.RLock()
	ids := s.byPatient[patientID]
	out := make([]*entities.AssessmentRecord, 0, len(ids))
	for _, id := range ids {
		record := s.records[id]
		out = append(out, &record)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *AssessmentStore) removeFromPatient(patientID, id string) {
	ids := s.byPatient[patientID]
	for i, existing := range ids {
		if existing == id {
			s.byPatient[patientID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byPatient[patientID]) == 0 {
		delete(s.byPatient, patientID)
	}
}

package repositories

import (
	"context"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// AssessmentRepository defines the interface for stored risk assessments.
type AssessmentRepository interface {
	Save(ctx context.Context, record *entities.AssessmentRecord) error

	// GetByID returns a NOT_FOUND AppError when id is unknown.
	GetByID(ctx context.Context, id string) (*entities.AssessmentRecord, error)

	// ListByPatient returns a patient's records newest first.
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.AssessmentRecord, error)
}

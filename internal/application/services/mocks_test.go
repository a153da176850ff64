package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// Mocks

type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Save(ctx context.Context, record *entities.AssessmentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id string) (*entities.AssessmentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AssessmentRecord), args.Error(1)
}

func (m *MockAssessmentRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.AssessmentRecord, error) {
	args := m.Called(ctx, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AssessmentRecord), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockScanAnalyzer struct {
	mock.Mock
}

func (m *MockScanAnalyzer) Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(entities.ScanResult), args.Error(1)
}

// analyzerFunc adapts a function to ScanAnalyzer
type analyzerFunc func(ctx context.Context, report entities.Report) (entities.ScanResult, error)

func (f analyzerFunc) Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
	return f(ctx, report)
}

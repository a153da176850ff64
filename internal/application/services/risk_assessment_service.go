package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/repositories"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
	"github.com/zatekoja/mtf-triage/backend/pkg/validation"
)

const (
	// DefaultHistoryLimit is used when a history listing asks for no limit
	DefaultHistoryLimit = 20
	// MaxHistoryLimit caps a single history page
	MaxHistoryLimit = 100
)

// AssessmentRequest is the input of a single risk assessment
type AssessmentRequest struct {
	ScanResult     ScanResultInput     `json:"scanResult"`
	PatientContext PatientContextInput `json:"patientContext"`
}

// ScanResultInput is a submitted scan result. Required numeric and boolean
// fields are pointers so an absent value is rejected rather than read as zero.
type ScanResultInput struct {
	PatientID      string               `json:"patientId" validate:"max=200"`
	RiskScore      *float64             `json:"riskScore" validate:"required,gte=0,lte=100"`
	RiskLevel      entities.RiskLevel   `json:"riskLevel" validate:"required,oneof=low medium high critical"`
	MTFSuspected   *bool                `json:"mtfSuspected" validate:"required"`
	Confidence     *float64             `json:"confidence" validate:"required,gte=0,lte=100"`
	KeyFindings    entities.KeyFindings `json:"keyFindings"`
	ProcessingTime float64              `json:"processingTime" validate:"gte=0"`
}

// ScanResult converts a validated input into the engine's scan result
func (in ScanResultInput) ScanResult() entities.ScanResult {
	return entities.ScanResult{
		PatientID:      in.PatientID,
		RiskScore:      deref(in.RiskScore),
		RiskLevel:      in.RiskLevel,
		MTFSuspected:   deref(in.MTFSuspected),
		Confidence:     deref(in.Confidence),
		KeyFindings:    in.KeyFindings,
		ProcessingTime: in.ProcessingTime,
	}
}

// PatientContextInput is submitted patient data. Only age and gender are
// required.
type PatientContextInput struct {
	Age               *float64            `json:"age" validate:"required,gte=0,lte=150"`
	Gender            string              `json:"gender" validate:"required,max=50"`
	PreviousFractures int                 `json:"previousFractures" validate:"gte=0,lte=100"`
	Medications       []string            `json:"medications"`
	FamilyHistory     []string            `json:"familyHistory"`
	Lifestyle         *entities.Lifestyle `json:"lifestyle"`
}

// PatientContext converts a validated input into the engine's patient context
func (in PatientContextInput) PatientContext() entities.PatientContext {
	return entities.PatientContext{
		Age:               deref(in.Age),
		Gender:            in.Gender,
		PreviousFractures: in.PreviousFractures,
		Medications:       in.Medications,
		FamilyHistory:     in.FamilyHistory,
		Lifestyle:         in.Lifestyle,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// AssessmentResponse is the output of a single risk assessment
type AssessmentResponse struct {
	AssessmentID      string                  `json:"assessmentId"`
	RiskAssessment    entities.RiskAssessment `json:"riskAssessment"`
	AssessmentSummary string                  `json:"assessmentSummary"`
	AdjustedRiskScore float64                 `json:"adjustedRiskScore"`
	QualityReport     entities.QualityReport  `json:"qualityReport"`
}

// RiskAssessmentService runs the triage engine and records its outcome
type RiskAssessmentService struct {
	engine  *triage.Engine
	quality *evaluation.QualityChecker
	repo    repositories.AssessmentRepository
	events  providers.EventBus
	stats   *StatisticsService
	metrics *observability.Metrics
	now     func() time.Time
}

// NewRiskAssessmentService creates a new risk assessment service. events,
// stats and metrics may be nil; a nil quality checker uses the defaults.
func NewRiskAssessmentService(
	engine *triage.Engine,
	quality *evaluation.QualityChecker,
	repo repositories.AssessmentRepository,
	events providers.EventBus,
	stats *StatisticsService,
	metrics *observability.Metrics,
) *RiskAssessmentService {
	if quality == nil {
		quality = evaluation.NewQualityChecker(evaluation.QualityConfig{})
	}
	return &RiskAssessmentService{
		engine:  engine,
		quality: quality,
		repo:    repo,
		events:  events,
		stats:   stats,
		metrics: metrics,
		now:     time.Now,
	}
}

// Assess validates the request, runs the engine and stores the result.
// Storage and event failures are logged; the engine output is still returned.
func (s *RiskAssessmentService) Assess(ctx context.Context, req *AssessmentRequest) (*AssessmentResponse, error) {
	ctx, span := observability.StartSpan(ctx, "RiskAssessmentService.Assess")
	defer span.End()

	if req == nil {
		return nil, apperrors.NewValidationError("request body is required")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	scan := triage.NormalizeScanResult(req.ScanResult.ScanResult())
	result := s.engine.Assess(scan, req.PatientContext.PatientContext())
	assessment := result.Assessment

	record := &entities.AssessmentRecord{
		ID:                uuid.New().String(),
		PatientID:         scan.PatientID,
		AdjustedRiskScore: result.AdjustedScore,
		Assessment:        assessment,
		Summary:           triage.Summarize(assessment, scan),
		ScanResult:        scan,
		Quality:           s.quality.Check(scan, &assessment),
		CreatedAt:         s.now().UTC(),
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Str("assessment_id", record.ID).
		Str("patient_id", record.PatientID).
		Str("priority", string(assessment.Priority)).
		Int("urgency_hours", assessment.Urgency).
		Float64("adjusted_score", result.AdjustedScore).
		Bool("specialist_referral", assessment.SpecialistReferral).
		Msg("Risk assessment completed")

	if err := s.repo.Save(ctx, record); err != nil {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Str("assessment_id", record.ID).Msg("Failed to store risk assessment")
	}
	s.publish(ctx, record)

	if s.stats != nil {
		s.stats.Record(scan)
	}
	observability.RecordAssessmentMetric(ctx, s.metrics, string(assessment.Priority), result.AdjustedScore)
	observability.SetSpanAttributes(span,
		attribute.String("triage.priority", string(assessment.Priority)),
		attribute.Int("triage.urgency_hours", assessment.Urgency),
		attribute.Float64("triage.adjusted_score", result.AdjustedScore),
	)

	return &AssessmentResponse{
		AssessmentID:      record.ID,
		RiskAssessment:    assessment,
		AssessmentSummary: record.Summary,
		AdjustedRiskScore: result.AdjustedScore,
		QualityReport:     record.Quality,
	}, nil
}

// GetAssessment returns a stored assessment
func (s *RiskAssessmentService) GetAssessment(ctx context.Context, id string) (*entities.AssessmentRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPatientAssessments returns a patient's stored assessments newest first
func (s *RiskAssessmentService) ListPatientAssessments(ctx context.Context, patientID string, limit int) ([]*entities.AssessmentRecord, error) {
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient id is required",
			apperrors.FieldError{Field: "patientId", Message: "is required"})
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.ListByPatient(ctx, patientID, limit)
}

func (s *RiskAssessmentService) publish(ctx context.Context, record *entities.AssessmentRecord) {
	if s.events == nil {
		return
	}
	event := &entities.AssessmentEvent{
		ID:                 uuid.New().String(),
		Type:               entities.AssessmentEventCompleted,
		AssessmentID:       record.ID,
		PatientID:          record.PatientID,
		Priority:           record.Assessment.Priority,
		Urgency:            record.Assessment.Urgency,
		SpecialistReferral: record.Assessment.SpecialistReferral,
		Timestamp:          record.CreatedAt,
	}
	if err := s.events.Publish(ctx, providers.EventChannelAssessments, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("assessment_id", record.ID).
			Msg("Failed to publish assessment event")
	}
}

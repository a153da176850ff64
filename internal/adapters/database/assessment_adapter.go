package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/repositories"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
)

const assessmentsTable = "risk_assessments"

var assessmentColumns = []interface{}{
	"id", "patient_id", "adjusted_risk_score", "priority", "urgency_hours",
	"assessment", "scan_result", "quality_report", "summary", "created_at",
}

// assessmentRow is the flat database shape of an AssessmentRecord
type assessmentRow struct {
	ID                string    `db:"id"`
	PatientID         string    `db:"patient_id"`
	AdjustedRiskScore float64   `db:"adjusted_risk_score"`
	Priority          string    `db:"priority"`
	UrgencyHours      int       `db:"urgency_hours"`
	Assessment        []byte    `db:"assessment"`
	ScanResult        []byte    `db:"scan_result"`
	QualityReport     []byte    `db:"quality_report"`
	Summary           string    `db:"summary"`
	CreatedAt         time.Time `db:"created_at"`
}

// AssessmentAdapter implements assessment persistence in Postgres.
type AssessmentAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	sqlx    *sqlx.DB
	metrics *observability.Metrics
}

// NewAssessmentAdapter creates a new assessment adapter.
func NewAssessmentAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.AssessmentRepository {
	return &AssessmentAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		sqlx:    sqlx.NewDb(client.DB(), "postgres"),
		metrics: metrics,
	}
}

// Save inserts an assessment record.
func (a *AssessmentAdapter) Save(ctx context.Context, record *entities.AssessmentRecord) error {
	if record == nil {
		return apperrors.NewInternalError("assessment record is nil", fmt.Errorf("record is nil"))
	}
	defer observeQuery(ctx, a.metrics, "assessment.save", time.Now())

	assessment, err := json.Marshal(record.Assessment)
	if err != nil {
		return apperrors.NewInternalError("failed to encode assessment", err)
	}
	scan, err := json.Marshal(record.ScanResult)
	if err != nil {
		return apperrors.NewInternalError("failed to encode scan result", err)
	}
	quality, err := json.Marshal(record.Quality)
	if err != nil {
		return apperrors.NewInternalError("failed to encode quality report", err)
	}

	row := goqu.Record{
		"id":                  record.ID,
		"patient_id":          record.PatientID,
		"adjusted_risk_score": record.AdjustedRiskScore,
		"priority":            string(record.Assessment.Priority),
		"urgency_hours":       record.Assessment.Urgency,
		"assessment":          string(assessment),
		"scan_result":         string(scan),
		"quality_report":      string(quality),
		"summary":             record.Summary,
		"created_at":          record.CreatedAt.UTC(),
	}

	query, args, err := a.db.Insert(assessmentsTable).Prepared(true).Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build assessment insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save assessment", err)
	}
	return nil
}

// GetByID retrieves an assessment record by ID.
func (a *AssessmentAdapter) GetByID(ctx context.Context, id string) (*entities.AssessmentRecord, error) {
	notFound := apperrors.NewNotFoundError(fmt.Sprintf("assessment with id %s not found", id))
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}
	defer observeQuery(ctx, a.metrics, "assessment.get", time.Now())

	query, args, err := a.db.From(assessmentsTable).Prepared(true).
		Select(assessmentColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build assessment query", err)
	}

	var row assessmentRow
	if err := a.sqlx.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, apperrors.NewInternalError("failed to get assessment", err)
	}
	return row.toRecord()
}

// ListByPatient retrieves a patient's records newest first.
func (a *AssessmentAdapter) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.AssessmentRecord, error) {
	defer observeQuery(ctx, a.metrics, "assessment.list", time.Now())

	ds := a.db.From(assessmentsTable).Prepared(true).
		Select(assessmentColumns...).
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build assessment list query", err)
	}

	var rows []assessmentRow
	if err := a.sqlx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list assessments", err)
	}

	records := make([]*entities.AssessmentRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *assessmentRow) toRecord() (*entities.AssessmentRecord, error) {
	record := &entities.AssessmentRecord{
		ID:                r.ID,
		PatientID:         r.PatientID,
		AdjustedRiskScore: r.AdjustedRiskScore,
		Summary:           r.Summary,
		CreatedAt:         r.CreatedAt,
	}
	if err := json.Unmarshal(r.Assessment, &record.Assessment); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored assessment", err)
	}
	if err := json.Unmarshal(r.ScanResult, &record.ScanResult); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored scan result", err)
	}
	if err := json.Unmarshal(r.QualityReport, &record.Quality); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored quality report", err)
	}
	return record, nil
}

func observeQuery(ctx context.Context, metrics *observability.Metrics, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, metrics, operation, time.Since(start))
}

package entities

import "time"

// AssessmentEventType identifies what happened to an assessment.
type AssessmentEventType string

const (
	AssessmentEventCompleted AssessmentEventType = "assessment.completed"
)

// AssessmentEvent is published for downstream consumers such as outreach.
type AssessmentEvent struct {
	ID                 string              `json:"id"`
	Type               AssessmentEventType `json:"type"`
	AssessmentID       string              `json:"assessmentId"`
	PatientID          string              `json:"patientId"`
	Priority           Priority            `json:"priority"`
	Urgency            int                 `json:"urgency"`
	SpecialistReferral bool                `json:"specialistReferral"`
	Timestamp          time.Time           `json:"timestamp"`
}

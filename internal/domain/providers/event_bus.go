package providers

import (
	"context"

	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing assessment events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error

	// Close closes the event bus
	Close() error
}

// EventChannelAssessments is the channel completed assessments are announced on.
const EventChannelAssessments = "triage:assessments"

package domain

import (
	"github.com/alimtiger/Minibini-sub000/platform/events"

	"github.com/google/uuid"
)

const (
	// EventEstimateGenerated fires after generation commits an estimate and
	// its lines.
	EventEstimateGenerated = "estimate.generated"
	// EventEstimateAccepted fires after a transition to accepted commits,
	// job cascade included.
	EventEstimateAccepted = "estimate.accepted"
)

// EstimateGeneratedEvent announces a freshly generated estimate.
type EstimateGeneratedEvent struct {
	events.BaseEvent
	EstimateID     uuid.UUID `json:"estimateId"`
	JobID          uuid.UUID `json:"jobId"`
	EstimateNumber string    `json:"estimateNumber"`
	Version        int       `json:"version"`
	LineCount      int       `json:"lineCount"`
	TotalCents     int64     `json:"totalCents"`
}

// EventName returns the event type identifier.
func (e EstimateGeneratedEvent) EventName() string { return EventEstimateGenerated }

// NewEstimateGeneratedEvent creates a new estimate generated event.
func NewEstimateGeneratedEvent(estimateID, jobID uuid.UUID, number string, version, lineCount int, totalCents int64) EstimateGeneratedEvent {
	return EstimateGeneratedEvent{
		BaseEvent:      events.NewBaseEvent(),
		EstimateID:     estimateID,
		JobID:          jobID,
		EstimateNumber: number,
		Version:        version,
		LineCount:      lineCount,
		TotalCents:     totalCents,
	}
}

// EstimateAcceptedEvent announces a customer acceptance.
type EstimateAcceptedEvent struct {
	events.BaseEvent
	EstimateID     uuid.UUID `json:"estimateId"`
	JobID          uuid.UUID `json:"jobId"`
	EstimateNumber string    `json:"estimateNumber"`
}

// EventName returns the event type identifier.
func (e EstimateAcceptedEvent) EventName() string { return EventEstimateAccepted }

// NewEstimateAcceptedEvent creates a new estimate accepted event.
func NewEstimateAcceptedEvent(estimateID, jobID uuid.UUID, number string) EstimateAcceptedEvent {
	return EstimateAcceptedEvent{
		BaseEvent:      events.NewBaseEvent(),
		EstimateID:     estimateID,
		JobID:          jobID,
		EstimateNumber: number,
	}
}

package domain

import (
	"github.com/alimtiger/Minibini-sub000/platform/events"

	"github.com/google/uuid"
)

// EventJobApproved fires when a job enters approved, by a user transition
// or by an estimate-acceptance cascade.
const EventJobApproved = "job.approved"

// JobApprovedEvent announces that a job is approved for work.
type JobApprovedEvent struct {
	events.BaseEvent
	JobID     uuid.UUID `json:"jobId"`
	JobNumber string    `json:"jobNumber"`
}

// EventName returns the event type identifier.
func (e JobApprovedEvent) EventName() string { return EventJobApproved }

// NewJobApprovedEvent creates a new job approved event.
func NewJobApprovedEvent(jobID uuid.UUID, jobNumber string) JobApprovedEvent {
	return JobApprovedEvent{
		BaseEvent: events.NewBaseEvent(),
		JobID:     jobID,
		JobNumber: jobNumber,
	}
}

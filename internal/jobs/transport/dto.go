package transport

import (
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/jobs/repository"

	"github.com/google/uuid"
)

type CreateJobRequest struct {
	ContactID   uuid.UUID `json:"contactId" validate:"required"`
	Description string    `json:"description" validate:"max=2000"`
}

type UpdateJobRequest struct {
	ContactID   *uuid.UUID `json:"contactId,omitempty" validate:"omitempty"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type TransitionJobRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

type ListJobsRequest struct {
	Status *string `form:"status" validate:"omitempty,max=40"`
}

type JobResponse struct {
	ID            uuid.UUID  `json:"id"`
	JobNumber     string     `json:"jobNumber"`
	ContactID     uuid.UUID  `json:"contactId"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ToJobResponse converts a database job to its API representation.
func ToJobResponse(j *repository.Job) JobResponse {
	return JobResponse{
		ID:            j.ID,
		JobNumber:     j.JobNumber,
		ContactID:     j.ContactID,
		Description:   j.Description,
		Status:        j.Status,
		StartDate:     j.StartDate,
		CompletedDate: j.CompletedDate,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// ToJobResponses converts a slice of database jobs.
func ToJobResponses(jobs []repository.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, ToJobResponse(&jobs[i]))
	}
	return out
}

package transport

import (
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/worksheets/repository"

	"github.com/google/uuid"
)

type CreateWorksheetRequest struct {
	JobID uuid.UUID `json:"jobId" validate:"required"`
}

type WorksheetResponse struct {
	ID         uuid.UUID  `json:"id"`
	JobID      uuid.UUID  `json:"jobId"`
	EstimateID *uuid.UUID `json:"estimateId,omitempty"`
	ParentID   *uuid.UUID `json:"parentId,omitempty"`
	Status     string     `json:"status"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func ToWorksheetResponse(w *repository.Worksheet) WorksheetResponse {
	return WorksheetResponse{
		ID:         w.ID,
		JobID:      w.JobID,
		EstimateID: w.EstimateID,
		ParentID:   w.ParentID,
		Status:     w.Status,
		Version:    w.Version,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func ToWorksheetResponses(sheets []repository.Worksheet) []WorksheetResponse {
	out := make([]WorksheetResponse, 0, len(sheets))
	for i := range sheets {
		out = append(out, ToWorksheetResponse(&sheets[i]))
	}
	return out
}

type AddTaskRequest struct {
	ParentID          *uuid.UUID `json:"parentId,omitempty"`
	Name              string     `json:"name" validate:"required,max=200"`
	Unit              string     `json:"unit" validate:"required,max=20"`
	RateCents         int64      `json:"rateCents" validate:"gte=0"`
	QtyMilli          int64      `json:"qtyMilli" validate:"gt=0"`
	MappingID         *uuid.UUID `json:"mappingId,omitempty"`
	TaskTemplateID    *uuid.UUID `json:"taskTemplateId,omitempty"`
	InstanceProductID *string    `json:"instanceProductId,omitempty" validate:"omitempty,max=120"`
	InstanceNumber    *int       `json:"instanceNumber,omitempty" validate:"omitempty,gte=0"`
	SortOrder         int        `json:"sortOrder" validate:"gte=0"`
}

type UpdateTaskRequest struct {
	ParentID          *uuid.UUID `json:"parentId,omitempty"`
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Unit              *string    `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	RateCents         *int64     `json:"rateCents,omitempty" validate:"omitempty,gte=0"`
	QtyMilli          *int64     `json:"qtyMilli,omitempty" validate:"omitempty,gt=0"`
	MappingID         *uuid.UUID `json:"mappingId,omitempty"`
	InstanceProductID *string    `json:"instanceProductId,omitempty" validate:"omitempty,max=120"`
	InstanceNumber    *int       `json:"instanceNumber,omitempty" validate:"omitempty,gte=0"`
	SortOrder         *int       `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
}

type SeedFromTemplateRequest struct {
	TemplateID        uuid.UUID `json:"templateId" validate:"required"`
	InstanceProductID *string   `json:"instanceProductId,omitempty" validate:"omitempty,max=120"`
	InstanceNumber    *int      `json:"instanceNumber,omitempty" validate:"omitempty,gte=0"`
}

type TaskResponse struct {
	ID                  uuid.UUID  `json:"id"`
	WorksheetID         uuid.UUID  `json:"worksheetId"`
	ParentID            *uuid.UUID `json:"parentId,omitempty"`
	TemplateID          *uuid.UUID `json:"templateId,omitempty"`
	MappingID           *uuid.UUID `json:"mappingId,omitempty"`
	WorkOrderTemplateID *uuid.UUID `json:"workOrderTemplateId,omitempty"`
	InstanceProductID   *string    `json:"instanceProductId,omitempty"`
	InstanceNumber      *int       `json:"instanceNumber,omitempty"`
	Name                string     `json:"name"`
	Unit                string     `json:"unit"`
	RateCents           int64      `json:"rateCents"`
	QtyMilli            int64      `json:"qtyMilli"`
	SortOrder           int        `json:"sortOrder"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func ToTaskResponse(t *repository.Task) TaskResponse {
	return TaskResponse{
		ID:                  t.ID,
		WorksheetID:         t.WorksheetID,
		ParentID:            t.ParentID,
		TemplateID:          t.TemplateID,
		MappingID:           t.MappingID,
		WorkOrderTemplateID: t.WorkOrderTemplateID,
		InstanceProductID:   t.InstanceProductID,
		InstanceNumber:      t.InstanceNumber,
		Name:                t.Name,
		Unit:                t.Unit,
		RateCents:           t.RateCents,
		QtyMilli:            t.QtyMilli,
		SortOrder:           t.SortOrder,
		CreatedAt:           t.CreatedAt,
	}
}

func ToTaskResponses(tasks []repository.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	return out
}

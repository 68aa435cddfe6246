package transport

import (
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/workorders/repository"

	"github.com/google/uuid"
)

// CreateWorkOrderRequest creates an empty work order for a job.
type CreateWorkOrderRequest struct {
	JobID uuid.UUID `json:"jobId" validate:"required"`
	Name  string    `json:"name" validate:"required,min=1,max=200"`
}

// CreateFromTemplateRequest creates a work order seeded from a template's tasks.
type CreateFromTemplateRequest struct {
	JobID      uuid.UUID `json:"jobId" validate:"required"`
	TemplateID uuid.UUID `json:"templateId" validate:"required"`
	Name       string    `json:"name" validate:"omitempty,max=200"`
}

// CreateFromEstimateRequest creates a work order with one task per line of an
// accepted estimate.
type CreateFromEstimateRequest struct {
	EstimateID uuid.UUID `json:"estimateId" validate:"required"`
	Name       string    `json:"name" validate:"omitempty,max=200"`
}

// UpdateWorkOrderRequest updates a work order's editable fields.
type UpdateWorkOrderRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// TransitionWorkOrderRequest moves a work order to a new status.
type TransitionWorkOrderRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddTaskRequest attaches a task to a work order.
type AddTaskRequest struct {
	ParentID  *uuid.UUID `json:"parentId"`
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	Unit      string     `json:"unit" validate:"omitempty,max=20"`
	RateCents int64      `json:"rateCents" validate:"gte=0"`
	QtyMilli  int64      `json:"qtyMilli" validate:"gte=0"`
	SortOrder int        `json:"sortOrder" validate:"gte=0"`
}

// UpdateTaskRequest updates a work order task.
type UpdateTaskRequest struct {
	ParentID  *uuid.UUID `json:"parentId"`
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	Unit      string     `json:"unit" validate:"omitempty,max=20"`
	RateCents int64      `json:"rateCents" validate:"gte=0"`
	QtyMilli  int64      `json:"qtyMilli" validate:"gte=0"`
	SortOrder int        `json:"sortOrder" validate:"gte=0"`
}

// WorkOrderResponse is the API representation of a work order.
type WorkOrderResponse struct {
	ID         uuid.UUID  `json:"id"`
	JobID      uuid.UUID  `json:"jobId"`
	TemplateID *uuid.UUID `json:"templateId,omitempty"`
	EstimateID *uuid.UUID `json:"estimateId,omitempty"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// TaskResponse is the API representation of a work order task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	WorkOrderID uuid.UUID  `json:"workOrderId"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	TemplateID  *uuid.UUID `json:"templateId,omitempty"`
	Name        string     `json:"name"`
	Unit        string     `json:"unit"`
	RateCents   int64      `json:"rateCents"`
	QtyMilli    int64      `json:"qtyMilli"`
	SortOrder   int        `json:"sortOrder"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// CreatedWorkOrderResponse returns a new work order with its seeded tasks.
type CreatedWorkOrderResponse struct {
	WorkOrder WorkOrderResponse `json:"workOrder"`
	Tasks     []TaskResponse    `json:"tasks"`
}

// ToWorkOrderResponse converts a database model to its API representation.
func ToWorkOrderResponse(w *repository.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:         w.ID,
		JobID:      w.JobID,
		TemplateID: w.TemplateID,
		EstimateID: w.EstimateID,
		Name:       w.Name,
		Status:     w.Status,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// ToWorkOrderResponses converts a slice of database models.
func ToWorkOrderResponses(orders []repository.WorkOrder) []WorkOrderResponse {
	out := make([]WorkOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToWorkOrderResponse(&orders[i]))
	}
	return out
}

// ToTaskResponse converts a task database model to its API representation.
func ToTaskResponse(t *repository.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		WorkOrderID: t.WorkOrderID,
		ParentID:    t.ParentID,
		TemplateID:  t.TemplateID,
		Name:        t.Name,
		Unit:        t.Unit,
		RateCents:   t.RateCents,
		QtyMilli:    t.QtyMilli,
		SortOrder:   t.SortOrder,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTaskResponses converts a slice of task database models.
func ToTaskResponses(tasks []repository.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	return out
}

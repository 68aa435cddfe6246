package transport

import (
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/estimates/repository"

	"github.com/google/uuid"
)

type GenerateRequest struct {
	WorksheetID uuid.UUID `json:"worksheetId" validate:"required"`
}

type TransitionEstimateRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

type EstimateResponse struct {
	ID             uuid.UUID  `json:"id"`
	JobID          uuid.UUID  `json:"jobId"`
	ParentID       *uuid.UUID `json:"parentId,omitempty"`
	EstimateNumber string     `json:"estimateNumber"`
	Version        int        `json:"version"`
	Status         string     `json:"status"`
	SentDate       *time.Time `json:"sentDate,omitempty"`
	ClosedDate     *time.Time `json:"closedDate,omitempty"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ToEstimateResponse(e *repository.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:             e.ID,
		JobID:          e.JobID,
		ParentID:       e.ParentID,
		EstimateNumber: e.EstimateNumber,
		Version:        e.Version,
		Status:         e.Status,
		SentDate:       e.SentDate,
		ClosedDate:     e.ClosedDate,
		ValidUntil:     e.ValidUntil,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToEstimateResponses(estimates []repository.Estimate) []EstimateResponse {
	out := make([]EstimateResponse, 0, len(estimates))
	for i := range estimates {
		out = append(out, ToEstimateResponse(&estimates[i]))
	}
	return out
}

type LineItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	LineNo         int        `json:"lineNo"`
	Description    string     `json:"description"`
	QtyMilli       int64      `json:"qtyMilli"`
	Unit           string     `json:"unit"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	TotalCents     int64      `json:"totalCents"`
	TaskID         *uuid.UUID `json:"taskId,omitempty"`
}

func ToLineItemResponse(l *repository.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:             l.ID,
		LineNo:         l.LineNo,
		Description:    l.Description,
		QtyMilli:       l.QtyMilli,
		Unit:           l.Unit,
		UnitPriceCents: l.UnitPriceCents,
		TotalCents:     l.TotalCents,
		TaskID:         l.TaskID,
	}
}

func ToLineItemResponses(lines []repository.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(lines))
	for i := range lines {
		out = append(out, ToLineItemResponse(&lines[i]))
	}
	return out
}

// GeneratedResponse pairs a freshly generated estimate with its lines.
type GeneratedResponse struct {
	Estimate EstimateResponse   `json:"estimate"`
	Lines    []LineItemResponse `json:"lines"`
}

// TotalResponse reports the literal sum of an estimate's line totals.
type TotalResponse struct {
	TotalCents int64 `json:"totalCents"`
}

type AddLineRequest struct {
	Description    string `json:"description" validate:"required,max=2000"`
	QtyMilli       int64  `json:"qtyMilli" validate:"gt=0"`
	Unit           string `json:"unit" validate:"required,max=20"`
	UnitPriceCents int64  `json:"unitPriceCents" validate:"gte=0"`
}

type UpdateLineRequest struct {
	Description    *string `json:"description,omitempty" validate:"omitempty,min=1,max=2000"`
	QtyMilli       *int64  `json:"qtyMilli,omitempty" validate:"omitempty,gt=0"`
	Unit           *string `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	UnitPriceCents *int64  `json:"unitPriceCents,omitempty" validate:"omitempty,gte=0"`
}

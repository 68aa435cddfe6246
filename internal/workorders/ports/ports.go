// Package ports declares the narrow interfaces the work orders module
// needs from other bounded contexts. Implementations live in
// internal/adapters.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// EstimateLine is the slice of an estimate line a work order seeds a task
// from.
type EstimateLine struct {
	LineNo         int
	Description    string
	QtyMilli       int64
	Unit           string
	UnitPriceCents int64
}

// AcceptedEstimate is an accepted estimate with the lines that become
// tasks.
type AcceptedEstimate struct {
	ID     uuid.UUID
	JobID  uuid.UUID
	Number string
	Lines  []EstimateLine
}

// EstimateSource supplies accepted estimates for work order creation. The
// implementation rejects estimates in any other status.
type EstimateSource interface {
	AcceptedEstimate(ctx context.Context, estimateID uuid.UUID) (AcceptedEstimate, error)
}

// TemplateSeedTask is one task definition pulled from a work order
// template.
type TemplateSeedTask struct {
	TaskTemplateID uuid.UUID
	Name           string
	Unit           string
	RateCents      int64
	QtyMilli       int64
	SortOrder      int
}

// TemplateTaskSource supplies the task definitions of a work order
// template.
type TemplateTaskSource interface {
	TemplateTasks(ctx context.Context, templateID uuid.UUID) ([]TemplateSeedTask, error)
}

// JobChecker exposes the minimal job state work orders care about.
type JobChecker interface {
	JobStatus(ctx context.Context, jobID uuid.UUID) (string, error)
}

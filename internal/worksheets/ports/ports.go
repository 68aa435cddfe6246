// Package ports declares the narrow interfaces the worksheets module needs
// from other bounded contexts. Implementations live in internal/adapters.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// JobChecker exposes the minimal job state worksheets care about.
type JobChecker interface {
	// JobStatus returns the current status of a job, or a not-found error.
	JobStatus(ctx context.Context, jobID uuid.UUID) (string, error)
}

// SeedTask is one task definition pulled from a work order template.
type SeedTask struct {
	TaskTemplateID uuid.UUID
	MappingID      *uuid.UUID
	Name           string
	Unit           string
	RateCents      int64
	QtyMilli       int64
	SortOrder      int
}

// TemplateTaskSource supplies the task definitions of a work order template
// for seeding a worksheet.
type TemplateTaskSource interface {
	TemplateSeedTasks(ctx context.Context, templateID uuid.UUID) ([]SeedTask, error)
}

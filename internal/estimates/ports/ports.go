// Package ports declares the narrow interfaces the estimates module needs
// from other bounded contexts. Implementations live in internal/adapters.
package ports

import (
	"context"
	"time"

	catalogdomain "github.com/alimtiger/Minibini-sub000/internal/catalog/domain"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorksheetInfo is the slice of worksheet state estimates operate on.
type WorksheetInfo struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	EstimateID *uuid.UUID
	ParentID   *uuid.UUID
	Status     string
}

// WorksheetSource exposes worksheets to the estimates module: reading the
// staged tasks for generation and driving worksheet state from the estimate
// status cascade, inside the estimate's transaction.
type WorksheetSource interface {
	Worksheet(ctx context.Context, id uuid.UUID) (WorksheetInfo, error)
	// GenerationTasks returns the worksheet's tasks with mappings resolved,
	// in creation order.
	GenerationTasks(ctx context.Context, id uuid.UUID) ([]domain.TaskView, error)
	// LinkEstimateTx points the worksheet at its generated estimate and
	// finalizes it.
	LinkEstimateTx(ctx context.Context, tx pgx.Tx, worksheetID, estimateID uuid.UUID, status string, now time.Time) error
	// CascadeStatusTx moves every worksheet linked to the estimate whose
	// status differs from the derived one, in one batch.
	CascadeStatusTx(ctx context.Context, tx pgx.Tx, estimateID uuid.UUID, status string, now time.Time) error
}

// RuleSource supplies active bundling rules in evaluation order with
// template base prices resolved.
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]catalogdomain.BundlingRule, error)
}

// JobCascader lets estimate transitions move the owning job inside the
// estimate's transaction. ApplyTx enforces the job's own cascade rules.
type JobCascader interface {
	StatusTx(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (string, error)
	ApplyTx(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, status string, now time.Time) error
}

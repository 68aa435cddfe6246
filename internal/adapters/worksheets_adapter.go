package adapters

import (
	"context"
	"time"

	catalogdomain "github.com/alimtiger/Minibini-sub000/internal/catalog/domain"
	estdomain "github.com/alimtiger/Minibini-sub000/internal/estimates/domain"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/ports"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorksheetsAdapter adapts the worksheets module for the estimates module.
// It implements the estimates module's WorksheetSource port: reads for
// generation go through the repository, status writes run inside the
// estimate's transaction.
type WorksheetsAdapter struct {
	repo *repository.Repository
}

func NewWorksheetsAdapter(repo *repository.Repository) *WorksheetsAdapter {
	return &WorksheetsAdapter{repo: repo}
}

func toWorksheetInfo(w *repository.Worksheet) ports.WorksheetInfo {
	return ports.WorksheetInfo{
		ID:         w.ID,
		JobID:      w.JobID,
		EstimateID: w.EstimateID,
		ParentID:   w.ParentID,
		Status:     w.Status,
	}
}

func (a *WorksheetsAdapter) Worksheet(ctx context.Context, id uuid.UUID) (ports.WorksheetInfo, error) {
	w, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return ports.WorksheetInfo{}, err
	}
	return toWorksheetInfo(w), nil
}

func (a *WorksheetsAdapter) GenerationTasks(ctx context.Context, id uuid.UUID) ([]estdomain.TaskView, error) {
	tasks, err := a.repo.ListTasksWithMappings(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]estdomain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := estdomain.TaskView{
			ID:                  t.ID,
			Name:                t.Name,
			Unit:                t.Unit,
			RateCents:           t.RateCents,
			QtyMilli:            t.QtyMilli,
			CreatedAt:           t.CreatedAt,
			InstanceProductID:   t.InstanceProductID,
			InstanceNumber:      t.InstanceNumber,
			WorkOrderTemplateID: t.WorkOrderTemplateID,
		}
		if t.MappingStrategy != nil {
			view.Mapping = &catalogdomain.Mapping{
				Strategy:     catalogdomain.Strategy(*t.MappingStrategy),
				StepType:     catalogdomain.StepType(strOr(t.MappingStepType)),
				ProductType:  strOr(t.MappingProductType),
				LineItemName: strOr(t.MappingLineItemName),
				LineItemDesc: strOr(t.MappingLineItemDesc),
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (a *WorksheetsAdapter) LinkEstimateTx(ctx context.Context, tx pgx.Tx, worksheetID, estimateID uuid.UUID, status string, now time.Time) error {
	return a.repo.LinkEstimateTx(ctx, tx, worksheetID, estimateID, status, now)
}

func (a *WorksheetsAdapter) CascadeStatusTx(ctx context.Context, tx pgx.Tx, estimateID uuid.UUID, status string, now time.Time) error {
	return a.repo.SetStatusByEstimateTx(ctx, tx, estimateID, status, now)
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

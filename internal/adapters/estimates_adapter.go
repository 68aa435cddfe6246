package adapters

import (
	"context"
	"fmt"

	"github.com/alimtiger/Minibini-sub000/internal/estimates/domain"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/repository"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/ports"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
)

// EstimatesAdapter exposes accepted estimates to the work orders module.
// It implements the work orders module's EstimateSource port and rejects
// estimates in any other status.
type EstimatesAdapter struct {
	repo *repository.Repository
}

func NewEstimatesAdapter(repo *repository.Repository) *EstimatesAdapter {
	return &EstimatesAdapter{repo: repo}
}

func (a *EstimatesAdapter) AcceptedEstimate(ctx context.Context, estimateID uuid.UUID) (ports.AcceptedEstimate, error) {
	est, err := a.repo.GetByID(ctx, estimateID)
	if err != nil {
		return ports.AcceptedEstimate{}, err
	}
	if domain.Status(est.Status) != domain.StatusAccepted {
		return ports.AcceptedEstimate{}, apperr.PreconditionFailed(
			fmt.Sprintf("estimate is %s; only accepted estimates can open a work order", est.Status))
	}

	lines, err := a.repo.ListLines(ctx, estimateID)
	if err != nil {
		return ports.AcceptedEstimate{}, err
	}

	out := ports.AcceptedEstimate{
		ID:     est.ID,
		JobID:  est.JobID,
		Number: est.EstimateNumber,
		Lines:  make([]ports.EstimateLine, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, ports.EstimateLine{
			LineNo:         l.LineNo,
			Description:    l.Description,
			QtyMilli:       l.QtyMilli,
			Unit:           l.Unit,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return out, nil
}

package adapters

import (
	"context"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/repository"
	"github.com/alimtiger/Minibini-sub000/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobsCascadeAdapter lets estimate transitions move the owning job inside
// the estimate's transaction. It implements the estimates module's
// JobCascader port and enforces the job's own cascade rules, so a cascade
// can never push a job through a move the job itself forbids.
type JobsCascadeAdapter struct {
	repo *repository.Repository
	log  *logger.Logger
}

func NewJobsCascadeAdapter(repo *repository.Repository, log *logger.Logger) *JobsCascadeAdapter {
	return &JobsCascadeAdapter{repo: repo, log: log}
}

func (a *JobsCascadeAdapter) StatusTx(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (string, error) {
	status, _, err := a.repo.GetStatusTx(ctx, tx, jobID)
	return status, err
}

func (a *JobsCascadeAdapter) ApplyTx(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, status string, now time.Time) error {
	from, ts, err := a.repo.GetStatusTx(ctx, tx, jobID)
	if err != nil {
		return err
	}
	to := domain.Status(status)
	if err := domain.ValidateCascadeTransition(domain.Status(from), to); err != nil {
		return err
	}
	if err := a.repo.ApplyCascadeTx(ctx, tx, jobID, status, ts.Stamp(to, now), now); err != nil {
		return err
	}
	a.log.StatusTransition("job", jobID.String(), from, status)
	return nil
}

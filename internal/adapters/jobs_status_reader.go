// Package adapters wires bounded contexts together: each type here
// implements a consumer module's ports interface on top of another
// module's service or repository.
package adapters

import (
	"context"

	"github.com/alimtiger/Minibini-sub000/internal/jobs/repository"

	"github.com/google/uuid"
)

// JobsStatusReader exposes job status lookups to the worksheets and work
// orders modules. It implements both modules' JobChecker ports.
type JobsStatusReader struct {
	repo *repository.Repository
}

func NewJobsStatusReader(repo *repository.Repository) *JobsStatusReader {
	return &JobsStatusReader{repo: repo}
}

func (a *JobsStatusReader) JobStatus(ctx context.Context, jobID uuid.UUID) (string, error) {
	job, err := a.repo.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

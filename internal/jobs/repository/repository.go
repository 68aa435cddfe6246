package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"
	"github.com/alimtiger/Minibini-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Job is the database model for a shop-work job.
type Job struct {
	ID            uuid.UUID  `db:"id"`
	JobNumber     string     `db:"job_number"`
	ContactID     uuid.UUID  `db:"contact_id"`
	Description   string     `db:"description"`
	Status        string     `db:"status"`
	StartDate     *time.Time `db:"start_date"`
	CompletedDate *time.Time `db:"completed_date"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

const jobNotFoundMsg = "job not found"

// numberAllocAttempts bounds the allocate-then-retry loop for job numbers.
// This is the one sanctioned internal retry: a competing insert may claim
// the same candidate number, surfacing as a uniqueness violation.
const numberAllocAttempts = 3

// Repository provides database operations for jobs.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new jobs repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a job, allocating the next job number for the current
// year. On a number collision the insert is retried with a fresh candidate.
func (r *Repository) Create(ctx context.Context, job *Job) error {
	for attempt := 0; attempt < numberAllocAttempts; attempt++ {
		number, err := r.nextJobNumber(ctx)
		if err != nil {
			return err
		}
		job.JobNumber = number

		_, err = r.pool.Exec(ctx, `
			INSERT INTO mb_jobs (id, job_number, contact_id, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			job.ID, job.JobNumber, job.ContactID, job.Description, job.Status,
			job.CreatedAt, job.UpdatedAt,
		)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return fmt.Errorf("failed to insert job: %w", err)
		}
	}
	return apperr.Internal("could not allocate a job number")
}

func (r *Repository) nextJobNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("JOB-%d-", year)

	var max int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(job_number from '[0-9]+$')::int), 0)
		FROM mb_jobs WHERE job_number LIKE $1 || '%'`, prefix).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("failed to derive next job number: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}

// GetByID retrieves a job by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := r.pool.QueryRow(ctx, `
		SELECT id, job_number, contact_id, description, status, start_date, completed_date, created_at, updated_at
		FROM mb_jobs WHERE id = $1`, id).Scan(
		&j.ID, &j.JobNumber, &j.ContactID, &j.Description, &j.Status,
		&j.StartDate, &j.CompletedDate, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(jobNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// List retrieves jobs, optionally filtered by status, newest first.
func (r *Repository) List(ctx context.Context, status *string) ([]Job, error) {
	var statusParam interface{}
	if status != nil {
		statusParam = *status
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, job_number, contact_id, description, status, start_date, completed_date, created_at, updated_at
		FROM mb_jobs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC`, statusParam)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.JobNumber, &j.ContactID, &j.Description, &j.Status,
			&j.StartDate, &j.CompletedDate, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// UpdateDetails updates the editable fields of a job. Status and stamped
// timestamps are never touched here.
func (r *Repository) UpdateDetails(ctx context.Context, job *Job) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_jobs SET description = $2, contact_id = $3, updated_at = $4
		WHERE id = $1`,
		job.ID, job.Description, job.ContactID, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(jobNotFoundMsg)
	}
	return nil
}

// ApplyTransition moves a job to a new status, stamping timestamps. The
// expected source status guards against a concurrent transition winning
// first.
func (r *Repository) ApplyTransition(ctx context.Context, id uuid.UUID, from, to string, ts domain.Timestamps, now time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_jobs SET status = $3, start_date = $4, completed_date = $5, updated_at = $6
		WHERE id = $1 AND status = $2`,
		id, from, to, ts.StartDate, ts.CompletedDate, now,
	)
	if err != nil {
		return fmt.Errorf("failed to transition job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.PreconditionFailed("job status changed concurrently")
	}
	return nil
}

// GetStatusTx reads a job's status and stamps inside a caller-owned
// transaction, locking the row for the remainder of the unit of work.
func (r *Repository) GetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (string, domain.Timestamps, error) {
	var (
		status string
		ts     domain.Timestamps
	)
	err := tx.QueryRow(ctx, `
		SELECT status, start_date, completed_date FROM mb_jobs WHERE id = $1 FOR UPDATE`, id).
		Scan(&status, &ts.StartDate, &ts.CompletedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ts, apperr.NotFound(jobNotFoundMsg)
		}
		return "", ts, fmt.Errorf("failed to read job status: %w", err)
	}
	return status, ts, nil
}

// ApplyCascadeTx writes a cascade-driven status and stamps inside a
// caller-owned transaction.
func (r *Repository) ApplyCascadeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, ts domain.Timestamps, now time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE mb_jobs SET status = $2, start_date = $3, completed_date = $4, updated_at = $5
		WHERE id = $1`,
		id, status, ts.StartDate, ts.CompletedDate, now,
	)
	if err != nil {
		return fmt.Errorf("failed to cascade job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(jobNotFoundMsg)
	}
	return nil
}

// Delete removes a job. Owned estimates, worksheets, and work orders go
// with it via foreign key cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(jobNotFoundMsg)
	}
	return nil
}

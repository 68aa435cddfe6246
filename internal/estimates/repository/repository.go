package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
	"github.com/alimtiger/Minibini-sub000/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Estimate is the database model for a customer estimate.
type Estimate struct {
	ID             uuid.UUID  `db:"id"`
	JobID          uuid.UUID  `db:"job_id"`
	ParentID       *uuid.UUID `db:"parent_id"`
	EstimateNumber string     `db:"estimate_number"`
	Version        int        `db:"version"`
	Status         string     `db:"status"`
	SentDate       *time.Time `db:"sent_date"`
	ClosedDate     *time.Time `db:"closed_date"`
	ValidUntil     *time.Time `db:"valid_until"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

const estimateNotFoundMsg = "estimate not found"

// numberAllocAttempts bounds the allocate-then-retry loop for estimate
// numbers; a concurrent generation can claim the same candidate.
const numberAllocAttempts = 3

const estimateColumns = `id, job_id, parent_id, estimate_number, version, status,
	sent_date, closed_date, valid_until, created_at, updated_at`

// Repository provides database operations for estimates and their lines.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new estimates repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for transaction-scoped units of work.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func scanEstimate(row pgx.Row, e *Estimate) error {
	return row.Scan(
		&e.ID, &e.JobID, &e.ParentID, &e.EstimateNumber, &e.Version, &e.Status,
		&e.SentDate, &e.ClosedDate, &e.ValidUntil, &e.CreatedAt, &e.UpdatedAt,
	)
}

// GetByID retrieves an estimate by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	var e Estimate
	err := scanEstimate(r.pool.QueryRow(ctx, `
		SELECT `+estimateColumns+` FROM mb_estimates WHERE id = $1`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(estimateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}
	return &e, nil
}

// GetByIDTx retrieves an estimate inside a caller-owned transaction,
// locking the row for the transition.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Estimate, error) {
	var e Estimate
	err := scanEstimate(tx.QueryRow(ctx, `
		SELECT `+estimateColumns+` FROM mb_estimates WHERE id = $1 FOR UPDATE`, id), &e)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(estimateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}
	return &e, nil
}

// ListByJob retrieves a job's estimates, newest first.
func (r *Repository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]Estimate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+estimateColumns+` FROM mb_estimates
		WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	defer rows.Close()

	var estimates []Estimate
	for rows.Next() {
		var e Estimate
		if err := scanEstimate(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estimates: %w", err)
	}
	return estimates, nil
}

// ListVersions retrieves every version sharing an estimate number,
// oldest first.
func (r *Repository) ListVersions(ctx context.Context, number string) ([]Estimate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+estimateColumns+` FROM mb_estimates
		WHERE estimate_number = $1 ORDER BY version`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimate versions: %w", err)
	}
	defer rows.Close()

	var estimates []Estimate
	for rows.Next() {
		var e Estimate
		if err := scanEstimate(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate estimate versions: %w", err)
	}
	return estimates, nil
}

// NextEstimateNumber derives the next estimate number for the current year
// inside a caller-owned transaction.
func (r *Repository) NextEstimateNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("EST-%d-", year)

	var max int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(estimate_number from '[0-9]+$')::int), 0)
		FROM mb_estimates WHERE estimate_number LIKE $1 || '%'`, prefix).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("failed to derive next estimate number: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}

// NextVersion returns the next version for an estimate number inside a
// caller-owned transaction.
func (r *Repository) NextVersion(ctx context.Context, tx pgx.Tx, number string) (int, error) {
	var max int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM mb_estimates WHERE estimate_number = $1`, number).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to derive estimate version: %w", err)
	}
	return max + 1, nil
}

// CreateTx inserts an estimate inside a caller-owned transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, e *Estimate) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mb_estimates (`+estimateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.JobID, e.ParentID, e.EstimateNumber, e.Version, e.Status,
		e.SentDate, e.ClosedDate, e.ValidUntil, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return errUniqueNumber
		}
		return fmt.Errorf("failed to insert estimate: %w", err)
	}
	return nil
}

// errUniqueNumber signals an estimate number collision to the allocation
// retry loop.
var errUniqueNumber = errors.New("estimate number already taken")

// IsNumberCollision reports whether err is an estimate number collision.
func IsNumberCollision(err error) bool {
	return errors.Is(err, errUniqueNumber)
}

// MaxAllocAttempts is the number of allocate-then-insert attempts callers
// should make before giving up.
func MaxAllocAttempts() int { return numberAllocAttempts }

// JobHasAcceptedTx reports whether the job already has an accepted estimate
// other than the one being transitioned, inside a caller-owned transaction.
func (r *Repository) JobHasAcceptedTx(ctx context.Context, tx pgx.Tx, jobID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM mb_estimates
			WHERE job_id = $1 AND status = 'accepted' AND id <> $2
		)`, jobID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check accepted estimates: %w", err)
	}
	return exists, nil
}

// ApplyTransitionTx writes a planned status transition inside a
// caller-owned transaction. The expected source status guards against a
// concurrent transition winning first.
func (r *Repository) ApplyTransitionTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string, sent, closed, validUntil *time.Time, now time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE mb_estimates
		SET status = $3, sent_date = $4, closed_date = $5, valid_until = $6, updated_at = $7
		WHERE id = $1 AND status = $2`,
		id, from, to, sent, closed, validUntil, now,
	)
	if err != nil {
		return fmt.Errorf("failed to transition estimate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.PreconditionFailed("estimate status changed concurrently")
	}
	return nil
}

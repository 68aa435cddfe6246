package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worksheet is the database model for an estimate worksheet: the staging
// area where tasks are gathered before an estimate is generated.
type Worksheet struct {
	ID         uuid.UUID  `db:"id"`
	JobID      uuid.UUID  `db:"job_id"`
	EstimateID *uuid.UUID `db:"estimate_id"`
	ParentID   *uuid.UUID `db:"parent_id"`
	Status     string     `db:"status"`
	Version    int        `db:"version"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

const worksheetNotFoundMsg = "worksheet not found"

const worksheetColumns = `id, job_id, estimate_id, parent_id, status, version, created_at, updated_at`

// Repository provides database operations for worksheets and their tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new worksheets repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for transaction-scoped units of work.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func scanWorksheet(row pgx.Row, w *Worksheet) error {
	return row.Scan(&w.ID, &w.JobID, &w.EstimateID, &w.ParentID, &w.Status, &w.Version, &w.CreatedAt, &w.UpdatedAt)
}

// Create inserts a worksheet.
func (r *Repository) Create(ctx context.Context, w *Worksheet) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_est_worksheets (`+worksheetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.JobID, w.EstimateID, w.ParentID, w.Status, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert worksheet: %w", err)
	}
	return nil
}

// GetByID retrieves a worksheet by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Worksheet, error) {
	var w Worksheet
	err := scanWorksheet(r.pool.QueryRow(ctx, `
		SELECT `+worksheetColumns+` FROM mb_est_worksheets WHERE id = $1`, id), &w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(worksheetNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return &w, nil
}

// GetByIDTx retrieves a worksheet inside a caller-owned transaction,
// locking the row.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Worksheet, error) {
	var w Worksheet
	err := scanWorksheet(tx.QueryRow(ctx, `
		SELECT `+worksheetColumns+` FROM mb_est_worksheets WHERE id = $1 FOR UPDATE`, id), &w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(worksheetNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return &w, nil
}

// ListByJob retrieves a job's worksheets, newest version first.
func (r *Repository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]Worksheet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+worksheetColumns+` FROM mb_est_worksheets
		WHERE job_id = $1 ORDER BY version DESC, created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	defer rows.Close()

	var sheets []Worksheet
	for rows.Next() {
		var w Worksheet
		if err := scanWorksheet(rows, &w); err != nil {
			return nil, fmt.Errorf("failed to scan worksheet: %w", err)
		}
		sheets = append(sheets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worksheets: %w", err)
	}
	return sheets, nil
}

// NextVersion returns the next worksheet version number for a job's
// revision chain rooted at the given worksheet.
func (r *Repository) NextVersion(ctx context.Context, tx pgx.Tx, jobID uuid.UUID) (int, error) {
	var max int
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM mb_est_worksheets WHERE job_id = $1`, jobID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to derive worksheet version: %w", err)
	}
	return max + 1, nil
}

// CreateTx inserts a worksheet inside a caller-owned transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, w *Worksheet) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mb_est_worksheets (`+worksheetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.JobID, w.EstimateID, w.ParentID, w.Status, w.Version, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert worksheet: %w", err)
	}
	return nil
}

// SetStatusTx writes a worksheet status inside a caller-owned transaction.
// Used by estimate status cascades.
func (r *Repository) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, now time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE mb_est_worksheets SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to set worksheet status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(worksheetNotFoundMsg)
	}
	return nil
}

// LinkEstimateTx points a worksheet at the estimate generated from it and
// finalizes it, inside a caller-owned transaction.
func (r *Repository) LinkEstimateTx(ctx context.Context, tx pgx.Tx, id, estimateID uuid.UUID, status string, now time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE mb_est_worksheets SET estimate_id = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, estimateID, status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to link worksheet to estimate: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(worksheetNotFoundMsg)
	}
	return nil
}

// SetStatusByEstimateTx moves every worksheet linked to an estimate whose
// status differs from the given one, in one batch. Zero matches is not an
// error.
func (r *Repository) SetStatusByEstimateTx(ctx context.Context, tx pgx.Tx, estimateID uuid.UUID, status string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE mb_est_worksheets SET status = $2, updated_at = $3
		WHERE estimate_id = $1 AND status <> $2`,
		estimateID, status, now,
	)
	if err != nil {
		return fmt.Errorf("failed to cascade worksheet status: %w", err)
	}
	return nil
}

// Delete removes a worksheet and its tasks.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_est_worksheets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete worksheet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(worksheetNotFoundMsg)
	}
	return nil
}

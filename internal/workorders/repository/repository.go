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

// WorkOrder is the database model for an execution-side task container.
type WorkOrder struct {
	ID         uuid.UUID  `db:"id"`
	JobID      uuid.UUID  `db:"job_id"`
	TemplateID *uuid.UUID `db:"template_id"`
	EstimateID *uuid.UUID `db:"estimate_id"`
	Name       string     `db:"name"`
	Status     string     `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Task is a unit of work attached to a work order. Tasks may form a tree
// through ParentID.
type Task struct {
	ID          uuid.UUID  `db:"id"`
	WorkOrderID uuid.UUID  `db:"workorder_id"`
	ParentID    *uuid.UUID `db:"parent_id"`
	TemplateID  *uuid.UUID `db:"template_id"`
	Name        string     `db:"name"`
	Unit        string     `db:"unit"`
	RateCents   int64      `db:"rate_cents"`
	QtyMilli    int64      `db:"qty_milli"`
	SortOrder   int        `db:"sort_order"`
	CreatedAt   time.Time  `db:"created_at"`
}

const (
	workOrderNotFoundMsg = "work order not found"
	taskNotFoundMsg      = "task not found"
)

const workOrderColumns = `id, job_id, template_id, estimate_id, name, status, created_at, updated_at`

const taskColumns = `id, workorder_id, parent_id, template_id, name, unit, rate_cents, qty_milli, sort_order, created_at`

// Repository provides database operations for work orders and their tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new work orders repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for transaction-scoped units of work.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func scanWorkOrder(row pgx.Row, w *WorkOrder) error {
	return row.Scan(&w.ID, &w.JobID, &w.TemplateID, &w.EstimateID, &w.Name, &w.Status, &w.CreatedAt, &w.UpdatedAt)
}

// CreateTx inserts a work order inside a caller-owned transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, w *WorkOrder) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mb_workorders (`+workOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.JobID, w.TemplateID, w.EstimateID, w.Name, w.Status, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work order: %w", err)
	}
	return nil
}

// GetByID retrieves a work order by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error) {
	var w WorkOrder
	err := scanWorkOrder(r.pool.QueryRow(ctx, `
		SELECT `+workOrderColumns+` FROM mb_workorders WHERE id = $1`, id), &w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(workOrderNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return &w, nil
}

// ListByJob retrieves a job's work orders, newest first.
func (r *Repository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]WorkOrder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+workOrderColumns+` FROM mb_workorders
		WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	var orders []WorkOrder
	for rows.Next() {
		var w WorkOrder
		if err := scanWorkOrder(rows, &w); err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		orders = append(orders, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work orders: %w", err)
	}
	return orders, nil
}

// Update writes a work order's editable fields and status.
func (r *Repository) Update(ctx context.Context, w *WorkOrder) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_workorders SET name = $2, status = $3, updated_at = $4 WHERE id = $1`,
		w.ID, w.Name, w.Status, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(workOrderNotFoundMsg)
	}
	return nil
}

// Delete removes a work order and its tasks.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_workorders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work order: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(workOrderNotFoundMsg)
	}
	return nil
}

// CreateTaskTx inserts a work order task inside a caller-owned transaction.
func (r *Repository) CreateTaskTx(ctx context.Context, tx pgx.Tx, t *Task) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mb_workorder_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.WorkOrderID, t.ParentID, t.TemplateID, t.Name, t.Unit,
		t.RateCents, t.QtyMilli, t.SortOrder, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// CreateTask inserts a work order task.
func (r *Repository) CreateTask(ctx context.Context, t *Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_workorder_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.WorkOrderID, t.ParentID, t.TemplateID, t.Name, t.Unit,
		t.RateCents, t.QtyMilli, t.SortOrder, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// ListTasks retrieves a work order's tasks in sort then creation order.
func (r *Repository) ListTasks(ctx context.Context, workOrderID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM mb_workorder_tasks
		WHERE workorder_id = $1 ORDER BY sort_order, created_at`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.WorkOrderID, &t.ParentID, &t.TemplateID, &t.Name, &t.Unit,
			&t.RateCents, &t.QtyMilli, &t.SortOrder, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a task scoped to its work order.
func (r *Repository) GetTask(ctx context.Context, workOrderID, taskID uuid.UUID) (*Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM mb_workorder_tasks
		WHERE id = $1 AND workorder_id = $2`, taskID, workOrderID).Scan(
		&t.ID, &t.WorkOrderID, &t.ParentID, &t.TemplateID, &t.Name, &t.Unit,
		&t.RateCents, &t.QtyMilli, &t.SortOrder, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(taskNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// UpdateTask updates a task's editable fields.
func (r *Repository) UpdateTask(ctx context.Context, t *Task) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_workorder_tasks
		SET name = $3, unit = $4, rate_cents = $5, qty_milli = $6, parent_id = $7, sort_order = $8
		WHERE id = $1 AND workorder_id = $2`,
		t.ID, t.WorkOrderID, t.Name, t.Unit, t.RateCents, t.QtyMilli, t.ParentID, t.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(taskNotFoundMsg)
	}
	return nil
}

// DeleteTask removes a task and its subtree from a work order.
func (r *Repository) DeleteTask(ctx context.Context, workOrderID, taskID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM mb_workorder_tasks WHERE id = $1 AND workorder_id = $2`, taskID, workOrderID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(taskNotFoundMsg)
	}
	return nil
}

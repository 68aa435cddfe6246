package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Task is a unit of work attached to a worksheet. Tasks created from a
// task template inherit its mapping; the template and work order template
// references record provenance for the generation engine.
type Task struct {
	ID                  uuid.UUID  `db:"id"`
	WorksheetID         uuid.UUID  `db:"worksheet_id"`
	ParentID            *uuid.UUID `db:"parent_id"`
	TemplateID          *uuid.UUID `db:"template_id"`
	MappingID           *uuid.UUID `db:"mapping_id"`
	WorkOrderTemplateID *uuid.UUID `db:"workorder_template_id"`
	InstanceProductID   *string    `db:"instance_product_id"`
	InstanceNumber      *int       `db:"instance_number"`
	Name                string     `db:"name"`
	Unit                string     `db:"unit"`
	RateCents           int64      `db:"rate_cents"`
	QtyMilli            int64      `db:"qty_milli"`
	SortOrder           int        `db:"sort_order"`
	CreatedAt           time.Time  `db:"created_at"`
}

const taskNotFoundMsg = "task not found"

const taskColumns = `id, worksheet_id, parent_id, template_id, mapping_id, workorder_template_id,
	instance_product_id, instance_number, name, unit, rate_cents, qty_milli, sort_order, created_at`

func scanTask(row pgx.Row, t *Task) error {
	return row.Scan(
		&t.ID, &t.WorksheetID, &t.ParentID, &t.TemplateID, &t.MappingID, &t.WorkOrderTemplateID,
		&t.InstanceProductID, &t.InstanceNumber, &t.Name, &t.Unit,
		&t.RateCents, &t.QtyMilli, &t.SortOrder, &t.CreatedAt,
	)
}

// CreateTask inserts a worksheet task.
func (r *Repository) CreateTask(ctx context.Context, t *Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_worksheet_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.WorksheetID, t.ParentID, t.TemplateID, t.MappingID, t.WorkOrderTemplateID,
		t.InstanceProductID, t.InstanceNumber, t.Name, t.Unit,
		t.RateCents, t.QtyMilli, t.SortOrder, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// CreateTaskTx inserts a worksheet task inside a caller-owned transaction.
func (r *Repository) CreateTaskTx(ctx context.Context, tx pgx.Tx, t *Task) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO mb_worksheet_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.WorksheetID, t.ParentID, t.TemplateID, t.MappingID, t.WorkOrderTemplateID,
		t.InstanceProductID, t.InstanceNumber, t.Name, t.Unit,
		t.RateCents, t.QtyMilli, t.SortOrder, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetTask retrieves a task scoped to its worksheet.
func (r *Repository) GetTask(ctx context.Context, worksheetID, taskID uuid.UUID) (*Task, error) {
	var t Task
	err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM mb_worksheet_tasks
		WHERE id = $1 AND worksheet_id = $2`, taskID, worksheetID), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(taskNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// ListTasks retrieves a worksheet's tasks in sort then creation order.
func (r *Repository) ListTasks(ctx context.Context, worksheetID uuid.UUID) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM mb_worksheet_tasks
		WHERE worksheet_id = $1 ORDER BY sort_order, created_at`, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// TaskWithMapping pairs a task with its effective mapping row, resolved
// through the task's own mapping or its template's.
type TaskWithMapping struct {
	Task
	MappingStrategy     *string `db:"strategy"`
	MappingStepType     *string `db:"step_type"`
	MappingProductType  *string `db:"product_type"`
	MappingLineItemName *string `db:"line_item_name"`
	MappingLineItemDesc *string `db:"line_item_desc"`
}

// ListTasksWithMappings retrieves a worksheet's tasks joined to their
// mappings, in creation order, for estimate generation.
func (r *Repository) ListTasksWithMappings(ctx context.Context, worksheetID uuid.UUID) ([]TaskWithMapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.worksheet_id, t.parent_id, t.template_id, t.mapping_id, t.workorder_template_id,
			t.instance_product_id, t.instance_number, t.name, t.unit,
			t.rate_cents, t.qty_milli, t.sort_order, t.created_at,
			m.strategy, m.step_type, m.product_type, m.line_item_name, m.line_item_desc
		FROM mb_worksheet_tasks t
		LEFT JOIN mb_task_templates tt ON tt.id = t.template_id
		LEFT JOIN mb_task_mappings m ON m.id = COALESCE(t.mapping_id, tt.mapping_id)
		WHERE t.worksheet_id = $1
		ORDER BY t.created_at, t.id`, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskWithMapping
	for rows.Next() {
		var t TaskWithMapping
		if err := rows.Scan(
			&t.ID, &t.WorksheetID, &t.ParentID, &t.TemplateID, &t.MappingID, &t.WorkOrderTemplateID,
			&t.InstanceProductID, &t.InstanceNumber, &t.Name, &t.Unit,
			&t.RateCents, &t.QtyMilli, &t.SortOrder, &t.CreatedAt,
			&t.MappingStrategy, &t.MappingStepType, &t.MappingProductType,
			&t.MappingLineItemName, &t.MappingLineItemDesc,
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

// UpdateTask updates a task's editable fields.
func (r *Repository) UpdateTask(ctx context.Context, t *Task) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_worksheet_tasks
		SET parent_id = $3, name = $4, unit = $5, rate_cents = $6, qty_milli = $7,
			mapping_id = $8, instance_product_id = $9, instance_number = $10, sort_order = $11
		WHERE id = $1 AND worksheet_id = $2`,
		t.ID, t.WorksheetID, t.ParentID, t.Name, t.Unit, t.RateCents, t.QtyMilli,
		t.MappingID, t.InstanceProductID, t.InstanceNumber, t.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(taskNotFoundMsg)
	}
	return nil
}

// DeleteTask removes a task from a worksheet.
func (r *Repository) DeleteTask(ctx context.Context, worksheetID, taskID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM mb_worksheet_tasks WHERE id = $1 AND worksheet_id = $2`, taskID, worksheetID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(taskNotFoundMsg)
	}
	return nil
}

// CopyTasksTx duplicates every task of one worksheet onto another inside a
// caller-owned transaction. Used when revising a worksheet. Parent links
// are remapped onto the fresh identities, and original creation times are
// preserved so generation ordering carries over.
func (r *Repository) CopyTasksTx(ctx context.Context, tx pgx.Tx, fromID, toID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		WITH ids AS (
			SELECT id AS old_id, gen_random_uuid() AS new_id
			FROM mb_worksheet_tasks WHERE worksheet_id = $1
		)
		INSERT INTO mb_worksheet_tasks (`+taskColumns+`)
		SELECT ids.new_id, $2, parent_ids.new_id, t.template_id, t.mapping_id, t.workorder_template_id,
			t.instance_product_id, t.instance_number, t.name, t.unit, t.rate_cents, t.qty_milli, t.sort_order, t.created_at
		FROM mb_worksheet_tasks t
		JOIN ids ON ids.old_id = t.id
		LEFT JOIN ids parent_ids ON parent_ids.old_id = t.parent_id
		WHERE t.worksheet_id = $1`, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to copy worksheet tasks: %w", err)
	}
	return nil
}

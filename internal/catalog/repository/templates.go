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

// WorkOrderTemplate is the database model for a reusable work order shape.
type WorkOrderTemplate struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	BasePriceCents *int64    `db:"base_price_cents"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// TaskTemplate is the database model for a reusable task definition.
type TaskTemplate struct {
	ID        uuid.UUID  `db:"id"`
	ParentID  *uuid.UUID `db:"parent_id"`
	Name      string     `db:"name"`
	Unit      string     `db:"unit"`
	RateCents int64      `db:"rate_cents"`
	MappingID *uuid.UUID `db:"mapping_id"`
	CreatedAt time.Time  `db:"created_at"`
}

// TemplateTask links a task template into a work order template with an
// estimated quantity.
type TemplateTask struct {
	ID             uuid.UUID `db:"id"`
	TemplateID     uuid.UUID `db:"workorder_template_id"`
	TaskTemplateID uuid.UUID `db:"task_template_id"`
	EstQtyMilli    int64     `db:"est_qty_milli"`
	SortOrder      int       `db:"sort_order"`
}

const templateNotFoundMsg = "work order template not found"

// CreateTemplate inserts a work order template.
func (r *Repository) CreateTemplate(ctx context.Context, t *WorkOrderTemplate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_workorder_templates (id, name, description, base_price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Description, t.BasePriceCents, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work order template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a work order template by ID.
func (r *Repository) GetTemplate(ctx context.Context, id uuid.UUID) (*WorkOrderTemplate, error) {
	var t WorkOrderTemplate
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, base_price_cents, created_at, updated_at
		FROM mb_workorder_templates WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.Description, &t.BasePriceCents, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(templateNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get work order template: %w", err)
	}
	return &t, nil
}

// ListTemplates retrieves all work order templates ordered by name.
func (r *Repository) ListTemplates(ctx context.Context) ([]WorkOrderTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, base_price_cents, created_at, updated_at
		FROM mb_workorder_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list work order templates: %w", err)
	}
	defer rows.Close()

	var templates []WorkOrderTemplate
	for rows.Next() {
		var t WorkOrderTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.BasePriceCents, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan work order template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate work order templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate updates a work order template.
func (r *Repository) UpdateTemplate(ctx context.Context, t *WorkOrderTemplate) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_workorder_templates
		SET name = $2, description = $3, base_price_cents = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.BasePriceCents, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update work order template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(templateNotFoundMsg)
	}
	return nil
}

// DeleteTemplate removes a work order template and its task links.
func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_workorder_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work order template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(templateNotFoundMsg)
	}
	return nil
}

// CreateTaskTemplate inserts a task template.
func (r *Repository) CreateTaskTemplate(ctx context.Context, t *TaskTemplate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_task_templates (id, parent_id, name, unit, rate_cents, mapping_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ParentID, t.Name, t.Unit, t.RateCents, t.MappingID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task template: %w", err)
	}
	return nil
}

// GetTaskTemplate retrieves a task template by ID.
func (r *Repository) GetTaskTemplate(ctx context.Context, id uuid.UUID) (*TaskTemplate, error) {
	var t TaskTemplate
	err := r.pool.QueryRow(ctx, `
		SELECT id, parent_id, name, unit, rate_cents, mapping_id, created_at
		FROM mb_task_templates WHERE id = $1`, id).Scan(
		&t.ID, &t.ParentID, &t.Name, &t.Unit, &t.RateCents, &t.MappingID, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task template not found")
		}
		return nil, fmt.Errorf("failed to get task template: %w", err)
	}
	return &t, nil
}

// ListTaskTemplates retrieves all task templates ordered by name.
func (r *Repository) ListTaskTemplates(ctx context.Context) ([]TaskTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, parent_id, name, unit, rate_cents, mapping_id, created_at
		FROM mb_task_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list task templates: %w", err)
	}
	defer rows.Close()

	var templates []TaskTemplate
	for rows.Next() {
		var t TaskTemplate
		if err := rows.Scan(&t.ID, &t.ParentID, &t.Name, &t.Unit, &t.RateCents, &t.MappingID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task templates: %w", err)
	}
	return templates, nil
}

// AddTemplateTask links a task template into a work order template.
func (r *Repository) AddTemplateTask(ctx context.Context, link *TemplateTask) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_workorder_template_tasks (id, workorder_template_id, task_template_id, est_qty_milli, sort_order)
		VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.TemplateID, link.TaskTemplateID, link.EstQtyMilli, link.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to link task template: %w", err)
	}
	return nil
}

// ListTemplateTasks retrieves the task links of a work order template in
// sort order.
func (r *Repository) ListTemplateTasks(ctx context.Context, templateID uuid.UUID) ([]TemplateTask, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, workorder_template_id, task_template_id, est_qty_milli, sort_order
		FROM mb_workorder_template_tasks
		WHERE workorder_template_id = $1 ORDER BY sort_order`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template tasks: %w", err)
	}
	defer rows.Close()

	var links []TemplateTask
	for rows.Next() {
		var link TemplateTask
		if err := rows.Scan(&link.ID, &link.TemplateID, &link.TaskTemplateID, &link.EstQtyMilli, &link.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan template task: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template tasks: %w", err)
	}
	return links, nil
}

// TemplateSeedRow is a template task joined with its task template, ready
// to seed a worksheet or work order.
type TemplateSeedRow struct {
	TaskTemplateID uuid.UUID
	MappingID      *uuid.UUID
	Name           string
	Unit           string
	RateCents      int64
	EstQtyMilli    int64
	SortOrder      int
}

// ListTemplateSeedRows retrieves a template's tasks joined with their task
// templates, in sort order. Returns not-found when the template does not
// exist.
func (r *Repository) ListTemplateSeedRows(ctx context.Context, templateID uuid.UUID) ([]TemplateSeedRow, error) {
	if _, err := r.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT link.task_template_id, tt.mapping_id, tt.name, tt.unit, tt.rate_cents,
			link.est_qty_milli, link.sort_order
		FROM mb_workorder_template_tasks link
		JOIN mb_task_templates tt ON tt.id = link.task_template_id
		WHERE link.workorder_template_id = $1 ORDER BY link.sort_order`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template seed rows: %w", err)
	}
	defer rows.Close()

	var seeds []TemplateSeedRow
	for rows.Next() {
		var s TemplateSeedRow
		if err := rows.Scan(&s.TaskTemplateID, &s.MappingID, &s.Name, &s.Unit, &s.RateCents, &s.EstQtyMilli, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan template seed row: %w", err)
		}
		seeds = append(seeds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template seed rows: %w", err)
	}
	return seeds, nil
}

// RemoveTemplateTask unlinks a task template from a work order template.
func (r *Repository) RemoveTemplateTask(ctx context.Context, templateID, linkID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM mb_workorder_template_tasks WHERE id = $1 AND workorder_template_id = $2`,
		linkID, templateID)
	if err != nil {
		return fmt.Errorf("failed to unlink task template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("template task not found")
	}
	return nil
}

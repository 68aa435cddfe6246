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

// TaskMapping is the database model for a reusable task-to-line-item mapping.
type TaskMapping struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	StepType     string    `db:"step_type"`
	Strategy     string    `db:"strategy"`
	ProductType  string    `db:"product_type"`
	LineItemName string    `db:"line_item_name"`
	LineItemDesc string    `db:"line_item_desc"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Repository provides database operations for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateMapping inserts a task mapping.
func (r *Repository) CreateMapping(ctx context.Context, m *TaskMapping) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_task_mappings (id, name, step_type, strategy, product_type, line_item_name, line_item_desc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Name, m.StepType, m.Strategy, m.ProductType,
		m.LineItemName, m.LineItemDesc, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task mapping: %w", err)
	}
	return nil
}

// GetMapping retrieves a task mapping by ID.
func (r *Repository) GetMapping(ctx context.Context, id uuid.UUID) (*TaskMapping, error) {
	var m TaskMapping
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, step_type, strategy, product_type, line_item_name, line_item_desc, created_at, updated_at
		FROM mb_task_mappings WHERE id = $1`, id).Scan(
		&m.ID, &m.Name, &m.StepType, &m.Strategy, &m.ProductType,
		&m.LineItemName, &m.LineItemDesc, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task mapping not found")
		}
		return nil, fmt.Errorf("failed to get task mapping: %w", err)
	}
	return &m, nil
}

// ListMappings retrieves all task mappings ordered by name.
func (r *Repository) ListMappings(ctx context.Context) ([]TaskMapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, step_type, strategy, product_type, line_item_name, line_item_desc, created_at, updated_at
		FROM mb_task_mappings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list task mappings: %w", err)
	}
	defer rows.Close()

	var mappings []TaskMapping
	for rows.Next() {
		var m TaskMapping
		if err := rows.Scan(
			&m.ID, &m.Name, &m.StepType, &m.Strategy, &m.ProductType,
			&m.LineItemName, &m.LineItemDesc, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task mappings: %w", err)
	}
	return mappings, nil
}

// UpdateMapping updates a task mapping.
func (r *Repository) UpdateMapping(ctx context.Context, m *TaskMapping) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_task_mappings
		SET name = $2, step_type = $3, strategy = $4, product_type = $5, line_item_name = $6, line_item_desc = $7, updated_at = $8
		WHERE id = $1`,
		m.ID, m.Name, m.StepType, m.Strategy, m.ProductType,
		m.LineItemName, m.LineItemDesc, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task mapping: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("task mapping not found")
	}
	return nil
}

// DeleteMapping removes a task mapping. Tasks referencing it fall back to
// unmapped defaults; the foreign key is set null on delete.
func (r *Repository) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_task_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task mapping: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("task mapping not found")
	}
	return nil
}

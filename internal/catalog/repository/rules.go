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
)

// BundlingRule is the database model for an estimate bundling rule.
type BundlingRule struct {
	ID                  uuid.UUID  `db:"id"`
	Name                string     `db:"name"`
	ProductType         string     `db:"product_type"`
	WorkOrderTemplateID *uuid.UUID `db:"workorder_template_id"`
	LineItemTemplate    string     `db:"line_item_template"`
	PricingMethod       string     `db:"pricing_method"`
	IncludeMaterials    bool       `db:"include_materials"`
	IncludeLabor        bool       `db:"include_labor"`
	IncludeOverhead     bool       `db:"include_overhead"`
	Priority            int        `db:"priority"`
	Active              bool       `db:"active"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

const ruleNotFoundMsg = "bundling rule not found"

const ruleColumns = `id, name, product_type, workorder_template_id, line_item_template, pricing_method,
	include_materials, include_labor, include_overhead, priority, active, created_at, updated_at`

func scanRule(row pgx.Row, rule *BundlingRule) error {
	return row.Scan(
		&rule.ID, &rule.Name, &rule.ProductType, &rule.WorkOrderTemplateID,
		&rule.LineItemTemplate, &rule.PricingMethod,
		&rule.IncludeMaterials, &rule.IncludeLabor, &rule.IncludeOverhead,
		&rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
	)
}

// CreateRule inserts a bundling rule.
func (r *Repository) CreateRule(ctx context.Context, rule *BundlingRule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mb_bundling_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rule.ID, rule.Name, rule.ProductType, rule.WorkOrderTemplateID,
		rule.LineItemTemplate, rule.PricingMethod,
		rule.IncludeMaterials, rule.IncludeLabor, rule.IncludeOverhead,
		rule.Priority, rule.Active, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.PreconditionFailed("a bundling rule with this name already exists")
		}
		return fmt.Errorf("failed to insert bundling rule: %w", err)
	}
	return nil
}

// GetRule retrieves a bundling rule by ID.
func (r *Repository) GetRule(ctx context.Context, id uuid.UUID) (*BundlingRule, error) {
	var rule BundlingRule
	err := scanRule(r.pool.QueryRow(ctx, `
		SELECT `+ruleColumns+` FROM mb_bundling_rules WHERE id = $1`, id), &rule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(ruleNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get bundling rule: %w", err)
	}
	return &rule, nil
}

// ListRules retrieves every bundling rule in evaluation order: ascending
// priority, name breaking ties.
func (r *Repository) ListRules(ctx context.Context) ([]BundlingRule, error) {
	return r.queryRules(ctx, `
		SELECT `+ruleColumns+` FROM mb_bundling_rules ORDER BY priority, name`)
}

// ListActiveRules retrieves the active rules in evaluation order. This is
// what estimate generation matches against.
func (r *Repository) ListActiveRules(ctx context.Context) ([]BundlingRule, error) {
	return r.queryRules(ctx, `
		SELECT `+ruleColumns+` FROM mb_bundling_rules WHERE active ORDER BY priority, name`)
}

func (r *Repository) queryRules(ctx context.Context, sql string) ([]BundlingRule, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundling rules: %w", err)
	}
	defer rows.Close()

	var rules []BundlingRule
	for rows.Next() {
		var rule BundlingRule
		if err := scanRule(rows, &rule); err != nil {
			return nil, fmt.Errorf("failed to scan bundling rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bundling rules: %w", err)
	}
	return rules, nil
}

// RuleWithBasePrice pairs a rule with the base price of the template it is
// scoped to, for pricing methods that charge the template's base price.
type RuleWithBasePrice struct {
	BundlingRule
	TemplateBasePrice *int64 `db:"template_base_price"`
}

// ListActiveRulesForGeneration retrieves the active rules in evaluation
// order with template base prices resolved.
func (r *Repository) ListActiveRulesForGeneration(ctx context.Context) ([]RuleWithBasePrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.product_type, r.workorder_template_id, r.line_item_template, r.pricing_method,
			r.include_materials, r.include_labor, r.include_overhead, r.priority, r.active, r.created_at, r.updated_at,
			t.base_price_cents
		FROM mb_bundling_rules r
		LEFT JOIN mb_workorder_templates t ON t.id = r.workorder_template_id
		WHERE r.active ORDER BY r.priority, r.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundling rules: %w", err)
	}
	defer rows.Close()

	var rules []RuleWithBasePrice
	for rows.Next() {
		var rule RuleWithBasePrice
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.ProductType, &rule.WorkOrderTemplateID,
			&rule.LineItemTemplate, &rule.PricingMethod,
			&rule.IncludeMaterials, &rule.IncludeLabor, &rule.IncludeOverhead,
			&rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
			&rule.TemplateBasePrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bundling rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bundling rules: %w", err)
	}
	return rules, nil
}

// UpdateRule updates a bundling rule.
func (r *Repository) UpdateRule(ctx context.Context, rule *BundlingRule) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_bundling_rules
		SET name = $2, product_type = $3, workorder_template_id = $4, line_item_template = $5,
			pricing_method = $6, include_materials = $7, include_labor = $8, include_overhead = $9,
			priority = $10, active = $11, updated_at = $12
		WHERE id = $1`,
		rule.ID, rule.Name, rule.ProductType, rule.WorkOrderTemplateID,
		rule.LineItemTemplate, rule.PricingMethod,
		rule.IncludeMaterials, rule.IncludeLabor, rule.IncludeOverhead,
		rule.Priority, rule.Active, rule.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.PreconditionFailed("a bundling rule with this name already exists")
		}
		return fmt.Errorf("failed to update bundling rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(ruleNotFoundMsg)
	}
	return nil
}

// DeleteRule removes a bundling rule.
func (r *Repository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM mb_bundling_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bundling rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(ruleNotFoundMsg)
	}
	return nil
}

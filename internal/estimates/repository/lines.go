package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LineItem is one priced line of an estimate. Line numbers are dense and
// 1-based per estimate.
type LineItem struct {
	ID             uuid.UUID  `db:"id"`
	EstimateID     uuid.UUID  `db:"estimate_id"`
	LineNo         int        `db:"line_no"`
	Description    string     `db:"description"`
	QtyMilli       int64      `db:"qty_milli"`
	Unit           string     `db:"unit"`
	UnitPriceCents int64      `db:"unit_price_cents"`
	TotalCents     int64      `db:"total_cents"`
	TaskID         *uuid.UUID `db:"task_id"`
}

const lineNotFoundMsg = "line item not found"

const lineColumns = `id, estimate_id, line_no, description, qty_milli, unit, unit_price_cents, total_cents, task_id`

func scanLine(row pgx.Row, l *LineItem) error {
	return row.Scan(
		&l.ID, &l.EstimateID, &l.LineNo, &l.Description, &l.QtyMilli,
		&l.Unit, &l.UnitPriceCents, &l.TotalCents, &l.TaskID,
	)
}

// InsertLinesTx bulk-inserts generated lines inside a caller-owned
// transaction.
func (r *Repository) InsertLinesTx(ctx context.Context, tx pgx.Tx, lines []LineItem) error {
	for i := range lines {
		l := &lines[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO mb_estimate_line_items (`+lineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.EstimateID, l.LineNo, l.Description, l.QtyMilli,
			l.Unit, l.UnitPriceCents, l.TotalCents, l.TaskID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}

// CopyLinesTx copies every line of one estimate onto another with fresh
// identities, returning the copies in line number order.
func (r *Repository) CopyLinesTx(ctx context.Context, tx pgx.Tx, fromID, toID uuid.UUID) ([]LineItem, error) {
	rows, err := tx.Query(ctx, `
		INSERT INTO mb_estimate_line_items (`+lineColumns+`)
		SELECT gen_random_uuid(), $2, line_no, description, qty_milli, unit, unit_price_cents, total_cents, task_id
		FROM mb_estimate_line_items WHERE estimate_id = $1
		RETURNING `+lineColumns, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to copy line items: %w", err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		if err := scanLine(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to copy line items: %w", err)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
	return lines, nil
}

// ListLines retrieves an estimate's lines in line number order.
func (r *Repository) ListLines(ctx context.Context, estimateID uuid.UUID) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lineColumns+` FROM mb_estimate_line_items
		WHERE estimate_id = $1 ORDER BY line_no`, estimateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		if err := scanLine(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return lines, nil
}

// GetLine retrieves a line scoped to its estimate.
func (r *Repository) GetLine(ctx context.Context, estimateID, lineID uuid.UUID) (*LineItem, error) {
	var l LineItem
	err := scanLine(r.pool.QueryRow(ctx, `
		SELECT `+lineColumns+` FROM mb_estimate_line_items
		WHERE id = $1 AND estimate_id = $2`, lineID, estimateID), &l)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(lineNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get line item: %w", err)
	}
	return &l, nil
}

// AppendLine adds a line at the end of an estimate, assigning the next
// dense line number, inside a caller-owned transaction.
func (r *Repository) AppendLine(ctx context.Context, tx pgx.Tx, l *LineItem) error {
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(line_no), 0) + 1 FROM mb_estimate_line_items WHERE estimate_id = $1`,
		l.EstimateID).Scan(&l.LineNo)
	if err != nil {
		return fmt.Errorf("failed to derive line number: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO mb_estimate_line_items (`+lineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.EstimateID, l.LineNo, l.Description, l.QtyMilli,
		l.Unit, l.UnitPriceCents, l.TotalCents, l.TaskID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert line item: %w", err)
	}
	return nil
}

// UpdateLine updates a line's editable fields.
func (r *Repository) UpdateLine(ctx context.Context, l *LineItem) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE mb_estimate_line_items
		SET description = $3, qty_milli = $4, unit = $5, unit_price_cents = $6, total_cents = $7
		WHERE id = $1 AND estimate_id = $2`,
		l.ID, l.EstimateID, l.Description, l.QtyMilli, l.Unit, l.UnitPriceCents, l.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("failed to update line item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(lineNotFoundMsg)
	}
	return nil
}

// DeleteLineTx removes a line and closes the numbering gap it leaves,
// inside a caller-owned transaction.
func (r *Repository) DeleteLineTx(ctx context.Context, tx pgx.Tx, estimateID, lineID uuid.UUID) error {
	var removed int
	err := tx.QueryRow(ctx, `
		DELETE FROM mb_estimate_line_items
		WHERE id = $1 AND estimate_id = $2 RETURNING line_no`, lineID, estimateID).Scan(&removed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(lineNotFoundMsg)
		}
		return fmt.Errorf("failed to delete line item: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE mb_estimate_line_items SET line_no = line_no - 1
		WHERE estimate_id = $1 AND line_no > $2`, estimateID, removed)
	if err != nil {
		return fmt.Errorf("failed to renumber line items: %w", err)
	}
	return nil
}

// TotalCents sums an estimate's line totals.
func (r *Repository) TotalCents(ctx context.Context, estimateID uuid.UUID) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0) FROM mb_estimate_line_items WHERE estimate_id = $1`,
		estimateID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total line items: %w", err)
	}
	return total, nil
}

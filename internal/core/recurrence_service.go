package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recurrenceService struct {
	pool *pgxpool.Pool
}

// NewRecurrenceService constructs the RecurrenceExecutor backed by PostgreSQL.
func NewRecurrenceService(pool *pgxpool.Pool) RecurrenceExecutor {
	return &recurrenceService{pool: pool}
}

// GenerateDue walks every recurring invoice whose next fire date is on or
// before asOf and generates the missed children, one transaction per child
// so a failure on one parent does not roll back the others.
func (s *recurrenceService) GenerateDue(ctx context.Context, asOf time.Time) ([]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM invoices
		WHERE is_recurring = true AND next_recurrence_date IS NOT NULL
		  AND next_recurrence_date <= $1
		ORDER BY id`,
		asOf.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("find due recurring invoices: %w", err)
	}
	parentIDs := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recurring invoice id: %w", err)
		}
		parentIDs = append(parentIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var created []int
	for _, parentID := range parentIDs {
		children, err := s.generateForParent(ctx, parentID, asOf)
		if err != nil {
			return created, fmt.Errorf("generate for invoice %d: %w", parentID, err)
		}
		created = append(created, children...)
	}
	return created, nil
}

// generateForParent spawns one child per elapsed period until the parent's
// next fire date passes asOf or the recurrence ends.
func (s *recurrenceService) generateForParent(ctx context.Context, parentID int, asOf time.Time) ([]int, error) {
	var created []int
	for {
		childID, more, err := s.generateOne(ctx, parentID, asOf)
		if err != nil {
			return created, err
		}
		if childID != 0 {
			created = append(created, childID)
		}
		if !more {
			return created, nil
		}
	}
}

// generateOne creates at most one child invoice inside its own transaction.
// Returns the child id (0 if none was due) and whether another period may
// still be due.
func (s *recurrenceService) generateOne(ctx context.Context, parentID int, asOf time.Time) (int, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		userID, customerID              int
		invoiceNumber                   string
		invoiceDate                     string
		dueDate, notes                  *string
		isRecurring                     bool
		freqStr, nextStr, endStr        *string
	)
	err = tx.QueryRow(ctx, `
		SELECT user_id, customer_id, invoice_number, invoice_date::text, due_date::text, notes,
		       is_recurring, recurrence_frequency, next_recurrence_date::text, recurrence_end_date::text
		FROM invoices WHERE id = $1 FOR UPDATE`,
		parentID,
	).Scan(&userID, &customerID, &invoiceNumber, &invoiceDate, &dueDate, &notes,
		&isRecurring, &freqStr, &nextStr, &endStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, fmt.Errorf("invoice %d: %w", parentID, ErrNotFound)
		}
		return 0, false, fmt.Errorf("lock recurring invoice %d: %w", parentID, err)
	}

	if !isRecurring || freqStr == nil || nextStr == nil {
		return 0, false, nil
	}
	freq := RecurrenceFrequency(*freqStr)
	fire, err := time.Parse("2006-01-02", *nextStr)
	if err != nil {
		return 0, false, fmt.Errorf("invoice %d has malformed next_recurrence_date %q", parentID, *nextStr)
	}
	if fire.After(asOf) {
		return 0, false, nil
	}

	// The child keeps the parent's payment-terms window: its due date is
	// the fire date shifted by the parent's own due offset.
	var childDue *string
	if dueDate != nil {
		parentDate, err1 := time.Parse("2006-01-02", invoiceDate)
		parentDue, err2 := time.Parse("2006-01-02", *dueDate)
		if err1 == nil && err2 == nil {
			shifted := fire.Add(parentDue.Sub(parentDate)).Format("2006-01-02")
			childDue = &shifted
		}
	}

	childNumber := fmt.Sprintf("%s-%s", invoiceNumber, fire.Format("20060102"))

	var childID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO invoices (user_id, customer_id, invoice_number, invoice_date, due_date, status, notes,
		                      subtotal, discount_amount, tax_amount, total_amount, paid_amount, balance_due,
		                      is_recurring, parent_invoice_id)
		SELECT user_id, customer_id, $1, $2, $3, 'draft', notes,
		       subtotal, discount_amount, tax_amount, total_amount, 0, total_amount,
		       false, id
		FROM invoices WHERE id = $4
		RETURNING id`,
		childNumber, fire.Format("2006-01-02"), childDue, parentID,
	).Scan(&childID); err != nil {
		return 0, false, fmt.Errorf("insert child invoice: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO invoice_items (invoice_id, line_number, product_id, description, quantity, unit_price,
		                           discount_percentage, tax_percentage, line_total)
		SELECT $1, line_number, product_id, description, quantity, unit_price,
		       discount_percentage, tax_percentage, line_total
		FROM invoice_items WHERE invoice_id = $2`,
		childID, parentID,
	); err != nil {
		return 0, false, fmt.Errorf("copy lines to child invoice %d: %w", childID, err)
	}

	// Advance the parent; stop recurring once the next date passes the end.
	next := NextFireDate(fire, freq)
	stillRecurring := true
	if endStr != nil {
		if end, err := time.Parse("2006-01-02", *endStr); err == nil && next.After(end) {
			stillRecurring = false
		}
	}
	if stillRecurring {
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET next_recurrence_date = $1 WHERE id = $2",
			next.Format("2006-01-02"), parentID)
	} else {
		_, err = tx.Exec(ctx,
			"UPDATE invoices SET is_recurring = false, next_recurrence_date = NULL WHERE id = $1",
			parentID)
	}
	if err != nil {
		return 0, false, fmt.Errorf("advance recurring invoice %d: %w", parentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit child invoice: %w", err)
	}

	more := stillRecurring && !next.After(asOf)
	return childID, more, nil
}

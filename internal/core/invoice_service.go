package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type invoiceService struct {
	pool *pgxpool.Pool
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

// lockInvoice locks the invoice row and asserts ownership. Returns the
// current status. ErrNotFound if the id is absent, ErrForbidden if the
// invoice belongs to another user.
func lockInvoice(ctx context.Context, tx pgx.Tx, invoiceID, ownerID int) (InvoiceStatus, error) {
	var userID int
	var status string
	err := tx.QueryRow(ctx,
		"SELECT user_id, status FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&userID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("invoice %d: %w", invoiceID, ErrNotFound)
		}
		return "", fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}
	if userID != ownerID {
		return "", fmt.Errorf("invoice %d: %w", invoiceID, ErrForbidden)
	}
	return InvoiceStatus(status), nil
}

// verifyCustomer asserts the customer exists and belongs to the owner.
func verifyCustomer(ctx context.Context, q pgxQuerier, customerID, ownerID int) error {
	var exists bool
	if err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1 AND user_id = $2)",
		customerID, ownerID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("verify customer %d: %w", customerID, err)
	}
	if !exists {
		return fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
	}
	return nil
}

// insertInvoiceLines writes the full line set for an invoice.
func insertInvoiceLines(ctx context.Context, tx pgx.Tx, invoiceID int, inputs []LineItemInput, amounts []LineAmounts) error {
	for i, in := range inputs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_items
			            (invoice_id, line_number, product_id, description, quantity, unit_price,
			             discount_percentage, tax_percentage, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			invoiceID, i+1, in.ProductID, in.Description, in.Quantity, in.UnitPrice,
			in.DiscountPct, in.TaxPct, amounts[i].Total,
		); err != nil {
			return fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, ownerID int, input InvoiceInput) (*Invoice, error) {
	if err := input.validateHeader(); err != nil {
		return nil, err
	}
	totals := ComputeTotals(input.Lines)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := verifyCustomer(ctx, tx, input.CustomerID, ownerID); err != nil {
		return nil, err
	}

	var dueDate *string
	if input.DueDate != "" {
		dueDate = &input.DueDate
	}
	var notes *string
	if input.Notes != "" {
		notes = &input.Notes
	}

	isRecurring := input.Recurrence != nil
	var freq, recurStart, recurEnd, nextFire *string
	if isRecurring {
		f := string(input.Recurrence.Frequency)
		freq = &f
		recurStart = &input.Recurrence.StartDate
		// next_recurrence_date starts at the recurrence start date
		nextFire = &input.Recurrence.StartDate
		if input.Recurrence.EndDate != "" {
			recurEnd = &input.Recurrence.EndDate
		}
	}

	var invoiceID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO invoices (user_id, customer_id, invoice_number, invoice_date, due_date, status, notes,
		                      subtotal, discount_amount, tax_amount, total_amount, paid_amount, balance_due,
		                      is_recurring, recurrence_frequency, recurrence_start_date, recurrence_end_date,
		                      next_recurrence_date)
		VALUES ($1, $2, $3, $4, $5, 'draft', $6, $7, $8, $9, $10, 0, $10, $11, $12, $13, $14, $15)
		RETURNING id`,
		ownerID, input.CustomerID, input.InvoiceNumber, input.InvoiceDate, dueDate, notes,
		totals.Subtotal, totals.DiscountAmount, totals.TaxAmount, totals.TotalAmount,
		isRecurring, freq, recurStart, recurEnd, nextFire,
	).Scan(&invoiceID); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("invoice number %q already exists: %w", input.InvoiceNumber, ErrConflict)
		}
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	if err := insertInvoiceLines(ctx, tx, invoiceID, input.Lines, totals.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice: %w", err)
	}

	return s.GetInvoice(ctx, ownerID, invoiceID)
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, ownerID, invoiceID int, input InvoiceInput) (*Invoice, error) {
	if err := input.validateHeader(); err != nil {
		return nil, err
	}
	totals := ComputeTotals(input.Lines)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockInvoice(ctx, tx, invoiceID, ownerID); err != nil {
		return nil, err
	}
	if err := verifyCustomer(ctx, tx, input.CustomerID, ownerID); err != nil {
		return nil, err
	}

	var dueDate *string
	if input.DueDate != "" {
		dueDate = &input.DueDate
	}
	var notes *string
	if input.Notes != "" {
		notes = &input.Notes
	}

	isRecurring := input.Recurrence != nil
	var freq, recurStart, recurEnd, nextFire *string
	if isRecurring {
		f := string(input.Recurrence.Frequency)
		freq = &f
		recurStart = &input.Recurrence.StartDate
		nextFire = &input.Recurrence.StartDate
		if input.Recurrence.EndDate != "" {
			recurEnd = &input.Recurrence.EndDate
		}
	}

	// paid_amount is externally updated and preserved; balance_due is
	// recomputed against the new total.
	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET customer_id = $1, invoice_number = $2, invoice_date = $3, due_date = $4, notes = $5,
		    subtotal = $6, discount_amount = $7, tax_amount = $8, total_amount = $9,
		    balance_due = $9 - paid_amount,
		    is_recurring = $10, recurrence_frequency = $11, recurrence_start_date = $12,
		    recurrence_end_date = $13, next_recurrence_date = $14
		WHERE id = $15`,
		input.CustomerID, input.InvoiceNumber, input.InvoiceDate, dueDate, notes,
		totals.Subtotal, totals.DiscountAmount, totals.TaxAmount, totals.TotalAmount,
		isRecurring, freq, recurStart, recurEnd, nextFire, invoiceID,
	); err != nil {
		return nil, fmt.Errorf("update invoice %d: %w", invoiceID, err)
	}

	// Full line replace: delete-then-insert inside the same transaction.
	// A failure past this point surfaces as PartialWriteError; the rollback
	// undoes the header write so no inconsistent state is committed.
	if _, err := tx.Exec(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return nil, &PartialWriteError{Entity: "invoice", ID: invoiceID, Err: fmt.Errorf("delete prior lines: %w", err)}
	}
	if err := insertInvoiceLines(ctx, tx, invoiceID, input.Lines, totals.Lines); err != nil {
		return nil, &PartialWriteError{Entity: "invoice", ID: invoiceID, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice update: %w", err)
	}

	return s.GetInvoice(ctx, ownerID, invoiceID)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, ownerID, invoiceID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockInvoice(ctx, tx, invoiceID, ownerID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM invoice_items WHERE invoice_id = $1", invoiceID); err != nil {
		return fmt.Errorf("delete invoice %d lines: %w", invoiceID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM invoices WHERE id = $1", invoiceID); err != nil {
		return fmt.Errorf("delete invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit invoice delete: %w", err)
	}
	return nil
}

func (s *invoiceService) SetStatus(ctx context.Context, ownerID, invoiceID int, to InvoiceStatus) (*Invoice, error) {
	if !to.Valid() {
		return nil, validationErr("status", fmt.Sprintf("unknown status %q", to))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	from, err := lockInvoice(ctx, tx, invoiceID, ownerID)
	if err != nil {
		return nil, err
	}
	if from == to {
		// Setting the current status again is a no-op.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit status no-op: %w", err)
		}
		return s.GetInvoice(ctx, ownerID, invoiceID)
	}
	if !from.CanTransitionTo(to) {
		return nil, &StateTransitionError{Entity: "invoice", From: string(from), To: string(to)}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $1 WHERE id = $2", string(to), invoiceID,
	); err != nil {
		return nil, fmt.Errorf("set invoice %d status: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status change: %w", err)
	}
	return s.GetInvoice(ctx, ownerID, invoiceID)
}

func (s *invoiceService) RecordPayment(ctx context.Context, ownerID, invoiceID int, amount decimal.Decimal) (*Invoice, error) {
	if !amount.IsPositive() {
		return nil, validationErr("amount", "payment amount must be positive")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, err := lockInvoice(ctx, tx, invoiceID, ownerID)
	if err != nil {
		return nil, err
	}
	if status != InvoiceSent && status != InvoiceOverdue {
		return nil, validationErr("status", fmt.Sprintf("cannot record payment on a %s invoice", status))
	}

	var total, paid decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT total_amount, paid_amount FROM invoices WHERE id = $1", invoiceID,
	).Scan(&total, &paid); err != nil {
		return nil, fmt.Errorf("fetch invoice %d amounts: %w", invoiceID, err)
	}

	newPaid := paid.Add(amount)
	if newPaid.GreaterThan(total) {
		return nil, validationErr("amount", fmt.Sprintf(
			"payment of %s exceeds balance due %s", amount.StringFixed(2), total.Sub(paid).StringFixed(2)))
	}

	balance := total.Sub(newPaid)
	newStatus := status
	if balance.IsZero() {
		newStatus = InvoicePaid
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET paid_amount = $1, balance_due = $2, status = $3 WHERE id = $4`,
		newPaid, balance, string(newStatus), invoiceID,
	); err != nil {
		return nil, fmt.Errorf("record payment on invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}
	return s.GetInvoice(ctx, ownerID, invoiceID)
}

const invoiceColumns = `
	i.id, i.user_id, i.customer_id, c.name, i.invoice_number,
	i.invoice_date::text, i.due_date::text, i.status, i.notes,
	i.subtotal, i.discount_amount, i.tax_amount, i.total_amount, i.paid_amount, i.balance_due,
	i.is_recurring, i.recurrence_frequency, i.recurrence_start_date::text,
	i.recurrence_end_date::text, i.next_recurrence_date::text, i.parent_invoice_id,
	i.created_at`

// scanInvoice scans one row produced with invoiceColumns.
func scanInvoice(row pgx.Row) (*Invoice, error) {
	inv := &Invoice{}
	var status string
	var freq *string
	if err := row.Scan(
		&inv.ID, &inv.UserID, &inv.CustomerID, &inv.CustomerName, &inv.InvoiceNumber,
		&inv.InvoiceDate, &inv.DueDate, &status, &inv.Notes,
		&inv.Subtotal, &inv.DiscountAmount, &inv.TaxAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.BalanceDue,
		&inv.IsRecurring, &freq, &inv.RecurrenceStartDate,
		&inv.RecurrenceEndDate, &inv.NextRecurrenceDate, &inv.ParentInvoiceID,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Status = InvoiceStatus(status)
	if freq != nil {
		f := RecurrenceFrequency(*freq)
		inv.RecurrenceFrequency = &f
	}
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, ownerID, invoiceID int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, `
		SELECT`+invoiceColumns+`
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = $1`,
		invoiceID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("get invoice %d: %w", invoiceID, err)
	}
	if inv.UserID != ownerID {
		return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrForbidden)
	}

	lines, err := fetchInvoiceLines(ctx, s.pool, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, ownerID int, status *InvoiceStatus) ([]Invoice, error) {
	query := `
		SELECT` + invoiceColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.user_id = $1`
	args := []any{ownerID}
	if status != nil {
		query += " AND i.status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// fetchInvoiceLines returns all lines for an invoice in line order.
func fetchInvoiceLines(ctx context.Context, q pgxRowQuerier, invoiceID int) ([]InvoiceLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, line_number, product_id, description, quantity, unit_price,
		       discount_percentage, tax_percentage, line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %d lines: %w", invoiceID, err)
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(
			&l.ID, &l.InvoiceID, &l.LineNumber, &l.ProductID, &l.Description, &l.Quantity,
			&l.UnitPrice, &l.DiscountPct, &l.TaxPct, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type purchaseOrderService struct {
	pool *pgxpool.Pool
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool) PurchaseOrderService {
	return &purchaseOrderService{pool: pool}
}

// lockPurchaseOrder locks the PO row and asserts ownership, returning the
// current status.
func lockPurchaseOrder(ctx context.Context, tx pgx.Tx, poID, ownerID int) (POStatus, error) {
	var userID int
	var status string
	err := tx.QueryRow(ctx,
		"SELECT user_id, status FROM purchase_orders WHERE id = $1 FOR UPDATE",
		poID,
	).Scan(&userID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return "", fmt.Errorf("lock purchase order %d: %w", poID, err)
	}
	if userID != ownerID {
		return "", fmt.Errorf("purchase order %d: %w", poID, ErrForbidden)
	}
	return POStatus(status), nil
}

// verifyVendor asserts the vendor exists and belongs to the owner.
func verifyVendor(ctx context.Context, q pgxQuerier, vendorID, ownerID int) error {
	var exists bool
	if err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendors WHERE id = $1 AND user_id = $2)",
		vendorID, ownerID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("verify vendor %d: %w", vendorID, err)
	}
	if !exists {
		return fmt.Errorf("vendor %d: %w", vendorID, ErrNotFound)
	}
	return nil
}

// insertPOLines writes the full line set for a purchase order. Replaced
// lines restart with received_quantity 0.
func insertPOLines(ctx context.Context, tx pgx.Tx, poID int, inputs []LineItemInput, amounts []LineAmounts) error {
	for i, in := range inputs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_items
			            (purchase_order_id, line_number, product_id, description, quantity, unit_price,
			             tax_percentage, received_quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)`,
			poID, i+1, in.ProductID, in.Description, in.Quantity, in.UnitPrice,
			in.TaxPct, amounts[i].Total,
		); err != nil {
			return fmt.Errorf("insert PO line %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, ownerID int, input PurchaseOrderInput) (*PurchaseOrder, error) {
	if err := input.validateHeader(); err != nil {
		return nil, err
	}
	totals := ComputeTotals(input.Lines)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var vendorID *int
	if input.VendorID != 0 {
		if err := verifyVendor(ctx, tx, input.VendorID, ownerID); err != nil {
			return nil, err
		}
		vendorID = &input.VendorID
	}
	var notes *string
	if input.Notes != "" {
		notes = &input.Notes
	}

	var poID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (user_id, vendor_id, po_number, order_date, status, notes,
		                             subtotal, tax_amount, total_amount)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8)
		RETURNING id`,
		ownerID, vendorID, input.PONumber, input.OrderDate, notes,
		totals.Subtotal, totals.TaxAmount, totals.TotalAmount,
	).Scan(&poID); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("purchase order number %q already exists: %w", input.PONumber, ErrConflict)
		}
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	if err := insertPOLines(ctx, tx, poID, input.Lines, totals.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}

	return s.GetPurchaseOrder(ctx, ownerID, poID)
}

func (s *purchaseOrderService) UpdatePurchaseOrder(ctx context.Context, ownerID, poID int, input PurchaseOrderInput) (*PurchaseOrder, error) {
	if err := input.validateHeader(); err != nil {
		return nil, err
	}
	totals := ComputeTotals(input.Lines)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockPurchaseOrder(ctx, tx, poID, ownerID); err != nil {
		return nil, err
	}

	var vendorID *int
	if input.VendorID != 0 {
		if err := verifyVendor(ctx, tx, input.VendorID, ownerID); err != nil {
			return nil, err
		}
		vendorID = &input.VendorID
	}
	var notes *string
	if input.Notes != "" {
		notes = &input.Notes
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET vendor_id = $1, po_number = $2, order_date = $3, notes = $4,
		    subtotal = $5, tax_amount = $6, total_amount = $7
		WHERE id = $8`,
		vendorID, input.PONumber, input.OrderDate, notes,
		totals.Subtotal, totals.TaxAmount, totals.TotalAmount, poID,
	); err != nil {
		return nil, fmt.Errorf("update purchase order %d: %w", poID, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_items WHERE purchase_order_id = $1", poID); err != nil {
		return nil, &PartialWriteError{Entity: "purchase order", ID: poID, Err: fmt.Errorf("delete prior lines: %w", err)}
	}
	if err := insertPOLines(ctx, tx, poID, input.Lines, totals.Lines); err != nil {
		return nil, &PartialWriteError{Entity: "purchase order", ID: poID, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order update: %w", err)
	}

	return s.GetPurchaseOrder(ctx, ownerID, poID)
}

func (s *purchaseOrderService) DeletePurchaseOrder(ctx context.Context, ownerID, poID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockPurchaseOrder(ctx, tx, poID, ownerID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_items WHERE purchase_order_id = $1", poID); err != nil {
		return fmt.Errorf("delete purchase order %d lines: %w", poID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_orders WHERE id = $1", poID); err != nil {
		return fmt.Errorf("delete purchase order %d: %w", poID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purchase order delete: %w", err)
	}
	return nil
}

func (s *purchaseOrderService) SetStatus(ctx context.Context, ownerID, poID int, to POStatus) (*PurchaseOrder, error) {
	if !to.Valid() {
		return nil, validationErr("status", fmt.Sprintf("unknown status %q", to))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	from, err := lockPurchaseOrder(ctx, tx, poID, ownerID)
	if err != nil {
		return nil, err
	}
	if from == to {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit status no-op: %w", err)
		}
		return s.GetPurchaseOrder(ctx, ownerID, poID)
	}
	if !from.CanTransitionTo(to) {
		return nil, &StateTransitionError{Entity: "purchase order", From: string(from), To: string(to)}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = $1 WHERE id = $2", string(to), poID,
	); err != nil {
		return nil, fmt.Errorf("set purchase order %d status: %w", poID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status change: %w", err)
	}
	return s.GetPurchaseOrder(ctx, ownerID, poID)
}

func (s *purchaseOrderService) ReceiveItems(ctx context.Context, ownerID, poID int, receipts []ReceiptLine) (*PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, validationErr("receipts", "at least one receipt line is required")
	}
	for i, r := range receipts {
		if !r.Quantity.IsPositive() {
			return nil, validationErr(fmt.Sprintf("receipts[%d].quantity", i), "must be positive")
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, err := lockPurchaseOrder(ctx, tx, poID, ownerID)
	if err != nil {
		return nil, err
	}
	if status == POCancelled {
		return nil, validationErr("status", "cannot receive items on a cancelled purchase order")
	}

	for _, r := range receipts {
		// Cap cumulative received at the ordered quantity per line.
		tag, err := tx.Exec(ctx, `
			UPDATE purchase_order_items
			SET received_quantity = received_quantity + $1
			WHERE id = $2 AND purchase_order_id = $3
			  AND received_quantity + $1 <= quantity`,
			r.Quantity, r.LineID, poID,
		)
		if err != nil {
			return nil, fmt.Errorf("receive on PO line %d: %w", r.LineID, err)
		}
		if tag.RowsAffected() == 0 {
			// Distinguish a missing line from an over-receipt.
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM purchase_order_items WHERE id = $1 AND purchase_order_id = $2)",
				r.LineID, poID,
			).Scan(&exists); err != nil {
				return nil, fmt.Errorf("check PO line %d: %w", r.LineID, err)
			}
			if !exists {
				return nil, fmt.Errorf("purchase order line %d: %w", r.LineID, ErrNotFound)
			}
			return nil, validationErr(
				fmt.Sprintf("receipts line %d", r.LineID),
				"received quantity would exceed ordered quantity")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}
	return s.GetPurchaseOrder(ctx, ownerID, poID)
}

const poColumns = `
	po.id, po.user_id, po.vendor_id, v.name, po.po_number, po.order_date::text,
	po.status, po.notes, po.subtotal, po.tax_amount, po.total_amount, po.created_at`

func scanPurchaseOrder(row pgx.Row) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	var status string
	if err := row.Scan(
		&po.ID, &po.UserID, &po.VendorID, &po.VendorName, &po.PONumber, &po.OrderDate,
		&status, &po.Notes, &po.Subtotal, &po.TaxAmount, &po.TotalAmount, &po.CreatedAt,
	); err != nil {
		return nil, err
	}
	po.Status = POStatus(status)
	return po, nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, ownerID, poID int) (*PurchaseOrder, error) {
	po, err := scanPurchaseOrder(s.pool.QueryRow(ctx, `
		SELECT`+poColumns+`
		FROM purchase_orders po
		LEFT JOIN vendors v ON v.id = po.vendor_id
		WHERE po.id = $1`,
		poID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase order %d: %w", poID, err)
	}
	if po.UserID != ownerID {
		return nil, fmt.Errorf("purchase order %d: %w", poID, ErrForbidden)
	}

	lines, err := fetchPOLines(ctx, s.pool, poID)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return po, nil
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, ownerID int, status *POStatus) ([]PurchaseOrder, error) {
	query := `
		SELECT` + poColumns + `
		FROM purchase_orders po
		LEFT JOIN vendors v ON v.id = po.vendor_id
		WHERE po.user_id = $1`
	args := []any{ownerID}
	if status != nil {
		query += " AND po.status = $2"
		args = append(args, string(*status))
	}
	query += " ORDER BY po.created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, *po)
	}
	return orders, rows.Err()
}

// fetchPOLines returns all lines for a purchase order in line order.
func fetchPOLines(ctx context.Context, q pgxRowQuerier, poID int) ([]PurchaseOrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, purchase_order_id, line_number, product_id, description, quantity, unit_price,
		       tax_percentage, received_quantity, line_total
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY line_number`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch PO %d lines: %w", poID, err)
	}
	defer rows.Close()

	var lines []PurchaseOrderLine
	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.PurchaseOrderID, &l.LineNumber, &l.ProductID, &l.Description, &l.Quantity,
			&l.UnitPrice, &l.TaxPct, &l.ReceivedQuantity, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan PO line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

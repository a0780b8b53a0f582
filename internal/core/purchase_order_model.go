package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POPending   POStatus = "pending"
	POApproved  POStatus = "approved"
	POOrdered   POStatus = "ordered"
	POReceived  POStatus = "received"
	POCancelled POStatus = "cancelled"
)

// poTransitions is the explicit transition table. received and cancelled
// are terminal; cancellation is allowed from any earlier state.
var poTransitions = map[POStatus][]POStatus{
	POPending:   {POApproved, POCancelled},
	POApproved:  {POOrdered, POCancelled},
	POOrdered:   {POReceived, POCancelled},
	POReceived:  {},
	POCancelled: {},
}

// Valid reports whether s is a known purchase order status.
func (s POStatus) Valid() bool {
	_, ok := poTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status change s → to is legal.
func (s POStatus) CanTransitionTo(to POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PurchaseOrder is a purchase order header plus its owned line items.
// Purchase orders have no discount concept; totals are subtotal + tax.
type PurchaseOrder struct {
	ID         int      `json:"id"`
	UserID     int      `json:"user_id"`
	VendorID   *int     `json:"vendor_id,omitempty"`
	VendorName *string  `json:"vendor_name,omitempty"`
	PONumber   string   `json:"po_number"`
	OrderDate  string   `json:"order_date"` // YYYY-MM-DD
	Status     POStatus `json:"status"`
	Notes      *string  `json:"notes,omitempty"`

	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	CreatedAt time.Time           `json:"created_at"`
	Lines     []PurchaseOrderLine `json:"lines,omitempty"`
}

// PurchaseOrderLine is one persisted line on a purchase order.
// ReceivedQuantity tracks partial fulfilment against Quantity.
type PurchaseOrderLine struct {
	ID               int             `json:"id"`
	PurchaseOrderID  int             `json:"purchase_order_id"`
	LineNumber       int             `json:"line_number"`
	ProductID        *int            `json:"product_id,omitempty"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TaxPct           decimal.Decimal `json:"tax_percentage"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// PurchaseOrderInput holds the fields to create or replace a purchase
// order. VendorID 0 means no vendor reference. Line DiscountPct must be
// zero. Updates replace the entire line set; replaced lines restart with
// received_quantity 0.
type PurchaseOrderInput struct {
	VendorID  int             `json:"vendor_id"`
	PONumber  string          `json:"po_number"`
	OrderDate string          `json:"order_date"` // YYYY-MM-DD
	Notes     string          `json:"notes"`
	Lines     []LineItemInput `json:"lines"`
}

// ReceiptLine records a partial delivery against one purchase order line.
type ReceiptLine struct {
	LineID   int             `json:"line_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PurchaseOrderService manages the purchase order aggregate lifecycle,
// scoped to ownerID the same way InvoiceService is.
type PurchaseOrderService interface {
	// CreatePurchaseOrder validates, computes totals, and inserts the
	// header plus all lines in one transaction. New orders start pending.
	CreatePurchaseOrder(ctx context.Context, ownerID int, input PurchaseOrderInput) (*PurchaseOrder, error)

	// GetPurchaseOrder returns a purchase order with its lines.
	GetPurchaseOrder(ctx context.Context, ownerID, poID int) (*PurchaseOrder, error)

	// ListPurchaseOrders returns the owner's purchase orders, optionally
	// filtered by status, newest first. Lines are not loaded.
	ListPurchaseOrders(ctx context.Context, ownerID int, status *POStatus) ([]PurchaseOrder, error)

	// UpdatePurchaseOrder replaces the header and the entire line set in
	// one transaction (delete-then-insert).
	UpdatePurchaseOrder(ctx context.Context, ownerID, poID int, input PurchaseOrderInput) (*PurchaseOrder, error)

	// DeletePurchaseOrder removes the order and its lines. Hard delete.
	DeletePurchaseOrder(ctx context.Context, ownerID, poID int) error

	// SetStatus applies a status transition, rejecting moves not in the
	// transition table with a *StateTransitionError.
	SetStatus(ctx context.Context, ownerID, poID int, to POStatus) (*PurchaseOrder, error)

	// ReceiveItems records partial deliveries against individual lines,
	// independent of header status (except cancelled orders). Cumulative
	// received quantity is capped at the ordered quantity per line.
	ReceiveItems(ctx context.Context, ownerID, poID int, receipts []ReceiptLine) (*PurchaseOrder, error)
}

// validateHeader checks the purchase order header fields.
func (in *PurchaseOrderInput) validateHeader() error {
	if in.PONumber == "" {
		return validationErr("po_number", "purchase order number is required")
	}
	if _, err := time.Parse("2006-01-02", in.OrderDate); err != nil {
		return validationErr("order_date", "must be a YYYY-MM-DD date")
	}
	return ValidateLineItems(in.Lines, false)
}

package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceSent        InvoiceStatus = "sent"
	InvoicePaid        InvoiceStatus = "paid"
	InvoiceOverdue     InvoiceStatus = "overdue"
	InvoiceCancelled   InvoiceStatus = "cancelled"
)

// invoiceTransitions is the explicit transition table. paid and cancelled
// are terminal.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft: {InvoiceSent, InvoiceCancelled},
	InvoiceSent:        {InvoicePaid, InvoiceOverdue, InvoiceCancelled},
	InvoiceOverdue:     {InvoicePaid, InvoiceCancelled},
	InvoicePaid:        {},
	InvoiceCancelled:   {},
}

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status change s → to is legal.
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Invoice is an invoice header plus its owned line items. All monetary
// fields except PaidAmount are derived from the lines; BalanceDue is
// TotalAmount − PaidAmount.
type Invoice struct {
	ID            int           `json:"id"`
	UserID        int           `json:"user_id"`
	CustomerID    int           `json:"customer_id"`
	CustomerName  string        `json:"customer_name"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   string        `json:"invoice_date"` // YYYY-MM-DD
	DueDate       *string       `json:"due_date,omitempty"`
	Status        InvoiceStatus `json:"status"`
	Notes         *string       `json:"notes,omitempty"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	BalanceDue     decimal.Decimal `json:"balance_due"`

	IsRecurring         bool                 `json:"is_recurring"`
	RecurrenceFrequency *RecurrenceFrequency `json:"recurrence_frequency,omitempty"`
	RecurrenceStartDate *string              `json:"recurrence_start_date,omitempty"`
	RecurrenceEndDate   *string              `json:"recurrence_end_date,omitempty"`
	NextRecurrenceDate  *string              `json:"next_recurrence_date,omitempty"`
	ParentInvoiceID     *int                 `json:"parent_invoice_id,omitempty"`

	CreatedAt time.Time     `json:"created_at"`
	Lines     []InvoiceLine `json:"lines,omitempty"`
}

// InvoiceLine is one persisted line on an invoice.
type InvoiceLine struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoice_id"`
	LineNumber  int             `json:"line_number"`
	ProductID   *int            `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_percentage"`
	TaxPct      decimal.Decimal `json:"tax_percentage"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceInput holds the fields required to create or replace an invoice.
// Updates are full-record: the entire line set is replaced wholesale.
type InvoiceInput struct {
	CustomerID    int              `json:"customer_id"`
	InvoiceNumber string           `json:"invoice_number"`
	InvoiceDate   string           `json:"invoice_date"` // YYYY-MM-DD
	DueDate       string           `json:"due_date"`     // optional; must not precede InvoiceDate
	Notes         string           `json:"notes"`
	Lines         []LineItemInput  `json:"lines"`
	Recurrence    *RecurrenceInput `json:"recurrence,omitempty"`
}

// InvoiceService manages the invoice aggregate lifecycle. Every operation
// is scoped to ownerID: invoices belonging to another user fail with
// ErrForbidden and are never modified.
type InvoiceService interface {
	// CreateInvoice validates the input, computes totals, and inserts the
	// header plus all lines in one transaction. The new invoice starts in
	// draft with paid_amount 0 and balance_due = total_amount.
	CreateInvoice(ctx context.Context, ownerID int, input InvoiceInput) (*Invoice, error)

	// GetInvoice returns an invoice with its lines.
	GetInvoice(ctx context.Context, ownerID, invoiceID int) (*Invoice, error)

	// ListInvoices returns the owner's invoices, optionally filtered by
	// status, newest first. Lines are not loaded.
	ListInvoices(ctx context.Context, ownerID int, status *InvoiceStatus) ([]Invoice, error)

	// UpdateInvoice replaces the header fields and the entire line set in
	// one transaction: prior lines are deleted and the new set inserted.
	// PaidAmount is preserved; balance_due is recomputed against the new
	// total.
	UpdateInvoice(ctx context.Context, ownerID, invoiceID int, input InvoiceInput) (*Invoice, error)

	// DeleteInvoice removes the invoice and its lines. Hard delete.
	DeleteInvoice(ctx context.Context, ownerID, invoiceID int) error

	// SetStatus applies a status transition, rejecting moves not in the
	// transition table with a *StateTransitionError.
	SetStatus(ctx context.Context, ownerID, invoiceID int, to InvoiceStatus) (*Invoice, error)

	// RecordPayment adds amount to paid_amount and recomputes balance_due.
	// Only sent and overdue invoices accept payments; overpayment is
	// rejected. When the balance reaches zero the invoice transitions to
	// paid.
	RecordPayment(ctx context.Context, ownerID, invoiceID int, amount decimal.Decimal) (*Invoice, error)
}

// validateHeader checks the header fields shared by create and update.
func (in *InvoiceInput) validateHeader() error {
	if in.CustomerID <= 0 {
		return validationErr("customer_id", "customer reference is required")
	}
	if in.InvoiceNumber == "" {
		return validationErr("invoice_number", "invoice number is required")
	}
	invDate, err := time.Parse("2006-01-02", in.InvoiceDate)
	if err != nil {
		return validationErr("invoice_date", "must be a YYYY-MM-DD date")
	}
	if in.DueDate != "" {
		due, err := time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return validationErr("due_date", "must be a YYYY-MM-DD date")
		}
		if due.Before(invDate) {
			return validationErr("due_date", "must not precede invoice_date")
		}
	}
	if in.Recurrence != nil {
		if err := in.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return ValidateLineItems(in.Lines, true)
}

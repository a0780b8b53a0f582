package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a standalone cost record, optionally tied to a vendor and a
// chart-of-accounts category. ReceiptURL is an opaque string produced by the
// file storage collaborator.
type Expense struct {
	ID          int             `json:"id"`
	UserID      int             `json:"user_id"`
	VendorID    *int            `json:"vendor_id,omitempty"`
	VendorName  *string         `json:"vendor_name,omitempty"`
	AccountID   *int            `json:"account_id,omitempty"`
	ExpenseDate string          `json:"expense_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReceiptURL  *string         `json:"receipt_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ExpenseInput struct {
	VendorID    *int            `json:"vendor_id,omitempty"`
	AccountID   *int            `json:"account_id,omitempty"`
	ExpenseDate string          `json:"expense_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReceiptURL  string          `json:"receipt_url"`
}

type ExpenseService interface {
	CreateExpense(ctx context.Context, ownerID int, input ExpenseInput) (*Expense, error)
	GetExpense(ctx context.Context, ownerID, expenseID int) (*Expense, error)
	ListExpenses(ctx context.Context, ownerID int) ([]Expense, error)
	UpdateExpense(ctx context.Context, ownerID, expenseID int, input ExpenseInput) (*Expense, error)
	DeleteExpense(ctx context.Context, ownerID, expenseID int) error
}

func (in *ExpenseInput) validate() error {
	if _, err := time.Parse("2006-01-02", in.ExpenseDate); err != nil {
		return validationErr("expense_date", "expense_date must be YYYY-MM-DD")
	}
	if !in.Amount.IsPositive() {
		return validationErr("amount", "amount must be positive")
	}
	if in.Description == "" {
		return validationErr("description", "description is required")
	}
	return nil
}

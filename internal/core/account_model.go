package core

import (
	"context"
	"time"
)

type AccountType string

const (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// Account is a chart-of-accounts entry. Codes are unique per owner.
type Account struct {
	ID        int         `json:"id"`
	UserID    int         `json:"user_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

type AccountInput struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type AccountType `json:"type"`
}

type AccountService interface {
	CreateAccount(ctx context.Context, ownerID int, input AccountInput) (*Account, error)
	GetAccount(ctx context.Context, ownerID, accountID int) (*Account, error)
	ListAccounts(ctx context.Context, ownerID int) ([]Account, error)
	UpdateAccount(ctx context.Context, ownerID, accountID int, input AccountInput) (*Account, error)
	DeleteAccount(ctx context.Context, ownerID, accountID int) error
}

func (in *AccountInput) validate() error {
	if in.Code == "" {
		return validationErr("code", "code is required")
	}
	if in.Name == "" {
		return validationErr("name", "name is required")
	}
	if !in.Type.Valid() {
		return validationErr("type", "type must be one of asset, liability, equity, revenue, expense")
	}
	return nil
}

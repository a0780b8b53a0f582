package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item whose unit price pre-fills invoice lines.
type Product struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	SKU           *string         `json:"sku,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, ownerID int, input ProductInput) (*Product, error)
	GetProduct(ctx context.Context, ownerID, productID int) (*Product, error)
	ListProducts(ctx context.Context, ownerID int) ([]Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID int, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, ownerID, productID int) error
}

func (in *ProductInput) validate() error {
	if in.Name == "" {
		return validationErr("name", "name is required")
	}
	if in.UnitPrice.IsNegative() {
		return validationErr("unit_price", "unit_price must not be negative")
	}
	if in.StockQuantity.IsNegative() {
		return validationErr("stock_quantity", "stock_quantity must not be negative")
	}
	return nil
}

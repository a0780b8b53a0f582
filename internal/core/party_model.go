package core

import (
	"context"
	"time"
)

// Customer is a billing counterparty for invoices.
type Customer struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Vendor is a supplier referenced by purchase orders and expenses.
type Vendor struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyInput holds the caller-supplied fields for a customer or vendor.
type PartyInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PartyService provides owner-scoped customer and vendor master data.
// Deletes are hard deletes; rows referenced by invoices or purchase orders
// are protected by foreign keys and fail with a persistence error.
type PartyService interface {
	CreateCustomer(ctx context.Context, ownerID int, input PartyInput) (*Customer, error)
	GetCustomer(ctx context.Context, ownerID, customerID int) (*Customer, error)
	ListCustomers(ctx context.Context, ownerID int) ([]Customer, error)
	UpdateCustomer(ctx context.Context, ownerID, customerID int, input PartyInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, ownerID, customerID int) error

	CreateVendor(ctx context.Context, ownerID int, input PartyInput) (*Vendor, error)
	GetVendor(ctx context.Context, ownerID, vendorID int) (*Vendor, error)
	ListVendors(ctx context.Context, ownerID int) ([]Vendor, error)
	UpdateVendor(ctx context.Context, ownerID, vendorID int, input PartyInput) (*Vendor, error)
	DeleteVendor(ctx context.Context, ownerID, vendorID int) error
}

func (in *PartyInput) validate() error {
	if in.Name == "" {
		return validationErr("name", "name is required")
	}
	return nil
}

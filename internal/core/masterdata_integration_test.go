package core_test

import (
	"context"
	"errors"
	"testing"

	"ledgerlite/internal/core"
)

func TestPartyService_CustomerCRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPartyService(pool)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, 1, core.PartyInput{
		Name:  "Globex",
		Email: "ap@globex.test",
	})
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	if c.Email == nil || *c.Email != "ap@globex.test" {
		t.Errorf("unexpected email %v", c.Email)
	}
	if c.Phone != nil {
		t.Errorf("blank phone should persist as NULL, got %v", c.Phone)
	}

	updated, err := svc.UpdateCustomer(ctx, 1, c.ID, core.PartyInput{Name: "Globex Inc"})
	if err != nil {
		t.Fatalf("UpdateCustomer failed: %v", err)
	}
	if updated.Name != "Globex Inc" || updated.Email != nil {
		t.Errorf("update did not fully replace fields: %+v", updated)
	}

	if _, err := svc.GetCustomer(ctx, 2, c.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden for other user, got %v", err)
	}

	if err := svc.DeleteCustomer(ctx, 1, c.ID); err != nil {
		t.Fatalf("DeleteCustomer failed: %v", err)
	}
	if _, err := svc.GetCustomer(ctx, 1, c.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var verr *core.ValidationError
	if _, err := svc.CreateCustomer(ctx, 1, core.PartyInput{}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for missing name, got %v", err)
	}
}

func TestPartyService_ListIsOwnerScoped(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPartyService(pool)
	ctx := context.Background()

	vendors, err := svc.ListVendors(ctx, 1)
	if err != nil {
		t.Fatalf("ListVendors failed: %v", err)
	}
	if len(vendors) != 1 || vendors[0].Name != "Paper Supply Co" {
		t.Errorf("expected only the seeded vendor for user 1, got %+v", vendors)
	}
}

func TestProductService_CRUDAndValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewProductService(pool)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, 1, core.ProductInput{
		Name:      "Premium Widget",
		SKU:       "WID-9",
		UnitPrice: d("99.95"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if !p.StockQuantity.IsZero() {
		t.Errorf("expected zero default stock, got %s", p.StockQuantity)
	}

	var verr *core.ValidationError
	if _, err := svc.CreateProduct(ctx, 1, core.ProductInput{
		Name: "Bad", UnitPrice: d("-1"),
	}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for negative price, got %v", err)
	}

	products, err := svc.ListProducts(ctx, 1)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	// Two seeded plus the one created above.
	if len(products) != 3 {
		t.Errorf("expected 3 products, got %d", len(products))
	}
}

func TestAccountService_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewAccountService(pool)
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, 1, core.AccountInput{
		Code: "5000", Name: "Office Supplies", Type: core.AccountExpense,
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	// Codes are unique per owner.
	if _, err := svc.CreateAccount(ctx, 1, core.AccountInput{
		Code: "5000", Name: "Duplicate", Type: core.AccountExpense,
	}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate code, got %v", err)
	}
	// A different owner may reuse the code.
	if _, err := svc.CreateAccount(ctx, 2, core.AccountInput{
		Code: "5000", Name: "Bob Supplies", Type: core.AccountExpense,
	}); err != nil {
		t.Errorf("other owner should be able to reuse code: %v", err)
	}

	var verr *core.ValidationError
	if _, err := svc.CreateAccount(ctx, 1, core.AccountInput{
		Code: "6000", Name: "Weird", Type: "contra",
	}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown type, got %v", err)
	}

	if err := svc.DeleteAccount(ctx, 1, a.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
}

func TestExpenseService_ReferenceChecks(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	expenses := core.NewExpenseService(pool)
	ctx := context.Background()

	vendorID := 1
	e, err := expenses.CreateExpense(ctx, 1, core.ExpenseInput{
		VendorID:    &vendorID,
		ExpenseDate: "2026-03-01",
		Amount:      d("42"),
		Description: "Paper restock",
		ReceiptURL:  "/uploads/receipts/42.pdf",
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.VendorName == nil || *e.VendorName != "Paper Supply Co" {
		t.Errorf("expected joined vendor name, got %v", e.VendorName)
	}
	if e.ReceiptURL == nil || *e.ReceiptURL != "/uploads/receipts/42.pdf" {
		t.Errorf("receipt url not persisted: %v", e.ReceiptURL)
	}

	// Another user's vendor may not be referenced.
	bobVendor := 2
	if _, err := expenses.CreateExpense(ctx, 1, core.ExpenseInput{
		VendorID:    &bobVendor,
		ExpenseDate: "2026-03-01",
		Amount:      d("10"),
		Description: "Sneaky",
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign vendor, got %v", err)
	}

	var verr *core.ValidationError
	if _, err := expenses.CreateExpense(ctx, 1, core.ExpenseInput{
		ExpenseDate: "2026-03-01",
		Amount:      d("0"),
		Description: "Free",
	}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for non-positive amount, got %v", err)
	}
}

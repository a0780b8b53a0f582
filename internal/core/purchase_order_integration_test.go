package core_test

import (
	"context"
	"errors"
	"testing"

	"ledgerlite/internal/core"
)

func newTestPOInput() core.PurchaseOrderInput {
	return core.PurchaseOrderInput{
		VendorID:  1,
		PONumber:  "PO-2001",
		OrderDate: "2026-03-01",
		Lines: []core.LineItemInput{
			{Description: "Reams of paper", Quantity: d("10"), UnitPrice: d("4.50"), TaxPct: d("5")},
			{Description: "Toner", Quantity: d("2"), UnitPrice: d("80")},
		},
	}
}

func TestPurchaseOrderService_CreateAndTotals(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	if po.Status != core.POPending {
		t.Errorf("expected pending, got %s", po.Status)
	}
	// 10×4.50 = 45 + 5% tax 2.25 = 47.25; 2×80 = 160 → 207.25
	if !po.Subtotal.Equal(d("205")) {
		t.Errorf("expected subtotal 205, got %s", po.Subtotal)
	}
	if !po.TaxAmount.Equal(d("2.25")) {
		t.Errorf("expected tax 2.25, got %s", po.TaxAmount)
	}
	if !po.TotalAmount.Equal(d("207.25")) {
		t.Errorf("expected total 207.25, got %s", po.TotalAmount)
	}
	if po.VendorName == nil || *po.VendorName != "Paper Supply Co" {
		t.Errorf("expected joined vendor name, got %v", po.VendorName)
	}
	for _, l := range po.Lines {
		if !l.ReceivedQuantity.IsZero() {
			t.Errorf("line %d: new lines must start with zero received quantity", l.LineNumber)
		}
	}
}

func TestPurchaseOrderService_DiscountRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	input := newTestPOInput()
	input.Lines[0].DiscountPct = d("10")
	_, err := svc.CreatePurchaseOrder(ctx, 1, input)
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for discount on purchase order line, got %v", err)
	}
}

func TestPurchaseOrderService_ReceiveItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	paperLine := po.Lines[0]

	// Partial receipt while still pending is allowed.
	po, err = svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: paperLine.ID, Quantity: d("4")},
	})
	if err != nil {
		t.Fatalf("first receipt failed: %v", err)
	}
	if !po.Lines[0].ReceivedQuantity.Equal(d("4")) {
		t.Errorf("expected received 4, got %s", po.Lines[0].ReceivedQuantity)
	}

	// Receipts accumulate.
	po, err = svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: paperLine.ID, Quantity: d("6")},
	})
	if err != nil {
		t.Fatalf("second receipt failed: %v", err)
	}
	if !po.Lines[0].ReceivedQuantity.Equal(d("10")) {
		t.Errorf("expected received 10, got %s", po.Lines[0].ReceivedQuantity)
	}

	// Over-receipt beyond the ordered quantity is rejected.
	_, err = svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: paperLine.ID, Quantity: d("1")},
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for over-receipt, got %v", err)
	}

	// Zero and negative quantities are rejected.
	_, err = svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: paperLine.ID, Quantity: d("0")},
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for zero receipt, got %v", err)
	}
}

func TestPurchaseOrderService_ReceiveOnCancelledRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	if _, err := svc.SetStatus(ctx, 1, po.ID, core.POCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	_, err = svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: po.Lines[0].ID, Quantity: d("1")},
	})
	if err == nil {
		t.Fatal("expected error receiving against a cancelled order")
	}
}

func TestPurchaseOrderService_StatusLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}

	// pending → received skips two states and is illegal.
	var stErr *core.StateTransitionError
	if _, err := svc.SetStatus(ctx, 1, po.ID, core.POReceived); !errors.As(err, &stErr) {
		t.Fatalf("expected StateTransitionError for pending→received, got %v", err)
	}

	for _, to := range []core.POStatus{core.POApproved, core.POOrdered, core.POReceived} {
		if po, err = svc.SetStatus(ctx, 1, po.ID, to); err != nil {
			t.Fatalf("transition to %s failed: %v", to, err)
		}
	}
	if _, err := svc.SetStatus(ctx, 1, po.ID, core.POCancelled); !errors.As(err, &stErr) {
		t.Errorf("received is terminal; expected StateTransitionError, got %v", err)
	}
}

func TestPurchaseOrderService_CrossUserForbidden(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	if _, err := svc.GetPurchaseOrder(ctx, 2, po.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ReceiveItems(ctx, 2, po.ID, []core.ReceiptLine{
		{LineID: po.Lines[0].ID, Quantity: d("1")},
	}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden on receive, got %v", err)
	}
}

func TestPurchaseOrderService_UpdateResetsReceipts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := core.NewPurchaseOrderService(pool)
	ctx := context.Background()

	po, err := svc.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}
	if _, err := svc.ReceiveItems(ctx, 1, po.ID, []core.ReceiptLine{
		{LineID: po.Lines[0].ID, Quantity: d("4")},
	}); err != nil {
		t.Fatalf("receipt failed: %v", err)
	}

	input := newTestPOInput()
	input.Lines = input.Lines[:1]
	updated, err := svc.UpdatePurchaseOrder(ctx, 1, po.ID, input)
	if err != nil {
		t.Fatalf("UpdatePurchaseOrder failed: %v", err)
	}
	if len(updated.Lines) != 1 {
		t.Fatalf("expected 1 line after replacement, got %d", len(updated.Lines))
	}
	if !updated.Lines[0].ReceivedQuantity.IsZero() {
		t.Errorf("replaced lines must restart at zero received, got %s",
			updated.Lines[0].ReceivedQuantity)
	}
}

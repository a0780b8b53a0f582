package core_test

import (
	"context"
	"testing"

	"ledgerlite/internal/core"
)

func TestReportingService_Receivables(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	invoices := core.NewInvoiceService(pool)
	reports := core.NewReportingService(pool)
	ctx := context.Background()

	mk := func(number, due string) *core.Invoice {
		in := newTestInvoiceInput()
		in.InvoiceNumber = number
		in.DueDate = due
		inv, err := invoices.CreateInvoice(ctx, 1, in)
		if err != nil {
			t.Fatalf("create %s: %v", number, err)
		}
		return inv
	}

	a := mk("INV-A", "2026-03-20") // will be sent
	b := mk("INV-B", "2026-03-10") // will be overdue
	c := mk("INV-C", "2026-03-25") // stays draft, excluded
	e := mk("INV-E", "")           // sent with no payment terms
	_ = c

	if _, err := invoices.SetStatus(ctx, 1, a.ID, core.InvoiceSent); err != nil {
		t.Fatal(err)
	}
	if _, err := invoices.SetStatus(ctx, 1, b.ID, core.InvoiceSent); err != nil {
		t.Fatal(err)
	}
	if _, err := invoices.SetStatus(ctx, 1, b.ID, core.InvoiceOverdue); err != nil {
		t.Fatal(err)
	}
	if _, err := invoices.SetStatus(ctx, 1, e.ID, core.InvoiceSent); err != nil {
		t.Fatal(err)
	}

	report, err := reports.GetReceivables(ctx, 1)
	if err != nil {
		t.Fatalf("GetReceivables failed: %v", err)
	}
	if len(report.Lines) != 3 {
		t.Fatalf("expected 3 open invoices, got %d", len(report.Lines))
	}
	// Ordered by due date: the overdue B first, the dateless E last.
	if report.Lines[0].InvoiceNumber != "INV-B" {
		t.Errorf("expected INV-B first by due date, got %s", report.Lines[0].InvoiceNumber)
	}
	if report.Lines[2].InvoiceNumber != "INV-E" {
		t.Errorf("expected INV-E last without due date, got %s", report.Lines[2].InvoiceNumber)
	}
	if report.Lines[2].DueDate != nil {
		t.Errorf("expected nil due date on INV-E, got %q", *report.Lines[2].DueDate)
	}
	want := a.TotalAmount.Add(b.TotalAmount).Add(e.TotalAmount)
	if !report.TotalOutstanding.Equal(want) {
		t.Errorf("expected outstanding %s, got %s", want, report.TotalOutstanding)
	}

	// Reports are owner-scoped.
	other, err := reports.GetReceivables(ctx, 2)
	if err != nil {
		t.Fatalf("GetReceivables for other user: %v", err)
	}
	if len(other.Lines) != 0 {
		t.Errorf("expected no receivables for other user, got %d", len(other.Lines))
	}
}

func TestReportingService_ExpensesByMonth(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	expenses := core.NewExpenseService(pool)
	reports := core.NewReportingService(pool)
	ctx := context.Background()

	for _, e := range []core.ExpenseInput{
		{ExpenseDate: "2026-01-10", Amount: d("100"), Description: "Rent"},
		{ExpenseDate: "2026-01-25", Amount: d("40.50"), Description: "Supplies"},
		{ExpenseDate: "2026-03-05", Amount: d("75"), Description: "Hosting"},
		{ExpenseDate: "2025-12-31", Amount: d("999"), Description: "Prior year"},
	} {
		if _, err := expenses.CreateExpense(ctx, 1, e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	periods, err := reports.GetExpensesByMonth(ctx, 1, 2026)
	if err != nil {
		t.Fatalf("GetExpensesByMonth failed: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected 2 months with spend, got %d", len(periods))
	}
	if periods[0].Month != 1 || !periods[0].Total.Equal(d("140.50")) {
		t.Errorf("january: got month %d total %s", periods[0].Month, periods[0].Total)
	}
	if periods[1].Month != 3 || !periods[1].Total.Equal(d("75")) {
		t.Errorf("march: got month %d total %s", periods[1].Month, periods[1].Total)
	}
}

func TestReportingService_CommitmentsAndDashboard(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	invoices := core.NewInvoiceService(pool)
	pos := core.NewPurchaseOrderService(pool)
	expenses := core.NewExpenseService(pool)
	reports := core.NewReportingService(pool)
	ctx := context.Background()

	open, err := pos.CreatePurchaseOrder(ctx, 1, newTestPOInput())
	if err != nil {
		t.Fatalf("create open PO: %v", err)
	}

	cancelledInput := newTestPOInput()
	cancelledInput.PONumber = "PO-2002"
	cancelled, err := pos.CreatePurchaseOrder(ctx, 1, cancelledInput)
	if err != nil {
		t.Fatalf("create cancelled PO: %v", err)
	}
	if _, err := pos.SetStatus(ctx, 1, cancelled.ID, core.POCancelled); err != nil {
		t.Fatal(err)
	}

	report, err := reports.GetCommitments(ctx, 1)
	if err != nil {
		t.Fatalf("GetCommitments failed: %v", err)
	}
	if len(report.Lines) != 1 || report.Lines[0].PurchaseOrderID != open.ID {
		t.Fatalf("expected only the open PO, got %+v", report.Lines)
	}
	if !report.TotalCommitted.Equal(open.TotalAmount) {
		t.Errorf("expected committed %s, got %s", open.TotalAmount, report.TotalCommitted)
	}

	inv, err := invoices.CreateInvoice(ctx, 1, newTestInvoiceInput())
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if _, err := invoices.SetStatus(ctx, 1, inv.ID, core.InvoiceSent); err != nil {
		t.Fatal(err)
	}
	if _, err := expenses.CreateExpense(ctx, 1, core.ExpenseInput{
		ExpenseDate: "2026-03-12", Amount: d("60"), Description: "Hosting",
	}); err != nil {
		t.Fatal(err)
	}

	dash, err := reports.GetDashboard(ctx, 1, 2026, 3)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if !dash.OutstandingReceivables.Equal(inv.TotalAmount) {
		t.Errorf("expected outstanding %s, got %s", inv.TotalAmount, dash.OutstandingReceivables)
	}
	if !dash.OverdueReceivables.IsZero() {
		t.Errorf("expected no overdue, got %s", dash.OverdueReceivables)
	}
	if dash.OpenPurchaseOrders != 1 {
		t.Errorf("expected 1 open PO, got %d", dash.OpenPurchaseOrders)
	}
	if !dash.CommittedSpend.Equal(open.TotalAmount) {
		t.Errorf("expected committed %s, got %s", open.TotalAmount, dash.CommittedSpend)
	}
	if !dash.ExpensesThisMonth.Equal(d("60")) {
		t.Errorf("expected month expenses 60, got %s", dash.ExpensesThisMonth)
	}
}

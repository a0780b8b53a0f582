package core_test

import (
	"context"
	"testing"
	"time"

	"ledgerlite/internal/core"
)

func TestRecurrenceExecutor_GeneratesMissedPeriods(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	invoices := core.NewInvoiceService(pool)
	executor := core.NewRecurrenceService(pool)
	ctx := context.Background()

	input := newTestInvoiceInput()
	input.InvoiceNumber = "SUB-100"
	input.InvoiceDate = "2026-01-01"
	input.DueDate = "2026-01-15"
	input.Recurrence = &core.RecurrenceInput{
		Frequency: core.RecurMonthly,
		StartDate: "2026-02-01",
	}
	parent, err := invoices.CreateInvoice(ctx, 1, input)
	if err != nil {
		t.Fatalf("create recurring invoice: %v", err)
	}
	if !parent.IsRecurring || parent.NextRecurrenceDate == nil || *parent.NextRecurrenceDate != "2026-02-01" {
		t.Fatalf("unexpected recurrence state: %+v", parent)
	}

	// Running as of Apr 10 should backfill Feb, Mar and Apr in one pass.
	asOf := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	created, err := executor.GenerateDue(ctx, asOf)
	if err != nil {
		t.Fatalf("GenerateDue failed: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 children, got %d", len(created))
	}

	first, err := invoices.GetInvoice(ctx, 1, created[0])
	if err != nil {
		t.Fatalf("fetch first child: %v", err)
	}
	if first.InvoiceNumber != "SUB-100-20260201" {
		t.Errorf("unexpected child number %q", first.InvoiceNumber)
	}
	if first.InvoiceDate != "2026-02-01" {
		t.Errorf("expected child dated at fire date, got %s", first.InvoiceDate)
	}
	// Parent's 14-day terms carry over.
	if first.DueDate == nil || *first.DueDate != "2026-02-15" {
		t.Errorf("expected child due 2026-02-15, got %v", first.DueDate)
	}
	if first.Status != core.InvoiceStatusDraft {
		t.Errorf("children start as drafts, got %s", first.Status)
	}
	if first.IsRecurring {
		t.Error("children must not themselves recur")
	}
	if first.ParentInvoiceID == nil || *first.ParentInvoiceID != parent.ID {
		t.Errorf("expected parent link %d, got %v", parent.ID, first.ParentInvoiceID)
	}
	if !first.TotalAmount.Equal(parent.TotalAmount) {
		t.Errorf("child total %s should match parent %s", first.TotalAmount, parent.TotalAmount)
	}
	if len(first.Lines) != len(parent.Lines) {
		t.Errorf("expected %d copied lines, got %d", len(parent.Lines), len(first.Lines))
	}

	parent, err = invoices.GetInvoice(ctx, 1, parent.ID)
	if err != nil {
		t.Fatalf("refetch parent: %v", err)
	}
	if parent.NextRecurrenceDate == nil || *parent.NextRecurrenceDate != "2026-05-01" {
		t.Errorf("expected parent advanced to 2026-05-01, got %v", parent.NextRecurrenceDate)
	}

	// A second run as of the same date creates nothing.
	again, err := executor.GenerateDue(ctx, asOf)
	if err != nil {
		t.Fatalf("second GenerateDue failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected idempotent second run, got %d new invoices", len(again))
	}
}

func TestRecurrenceExecutor_StopsAtEndDate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	invoices := core.NewInvoiceService(pool)
	executor := core.NewRecurrenceService(pool)
	ctx := context.Background()

	input := newTestInvoiceInput()
	input.InvoiceNumber = "SUB-200"
	input.InvoiceDate = "2026-01-01"
	input.DueDate = ""
	input.Recurrence = &core.RecurrenceInput{
		Frequency: core.RecurMonthly,
		StartDate: "2026-02-01",
		EndDate:   "2026-03-15",
	}
	parent, err := invoices.CreateInvoice(ctx, 1, input)
	if err != nil {
		t.Fatalf("create recurring invoice: %v", err)
	}

	// Feb 1 and Mar 1 fire; the next date (Apr 1) passes the end date, so
	// the parent stops recurring.
	created, err := executor.GenerateDue(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GenerateDue failed: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 children before end date, got %d", len(created))
	}

	parent, err = invoices.GetInvoice(ctx, 1, parent.ID)
	if err != nil {
		t.Fatalf("refetch parent: %v", err)
	}
	if parent.IsRecurring {
		t.Error("parent should have stopped recurring")
	}
	if parent.NextRecurrenceDate != nil {
		t.Errorf("expected cleared next date, got %v", parent.NextRecurrenceDate)
	}
}

func TestRecurrenceExecutor_NothingDue(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	invoices := core.NewInvoiceService(pool)
	executor := core.NewRecurrenceService(pool)
	ctx := context.Background()

	input := newTestInvoiceInput()
	input.Recurrence = &core.RecurrenceInput{
		Frequency: core.RecurWeekly,
		StartDate: "2026-12-01",
	}
	if _, err := invoices.CreateInvoice(ctx, 1, input); err != nil {
		t.Fatalf("create recurring invoice: %v", err)
	}

	created, err := executor.GenerateDue(ctx, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GenerateDue failed: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("expected no children before the start date, got %d", len(created))
	}
}

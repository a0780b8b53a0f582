package core_test

import (
	"testing"

	"ledgerlite/internal/core"
)

func validDraft() core.InvoiceDraft {
	return core.InvoiceDraft{
		CustomerName: "Acme Corp",
		InvoiceDate:  "2026-03-01",
		DueDate:      "2026-03-31",
		Confidence:   0.9,
		Reasoning:    "Monthly consulting retainer",
		Lines: []core.DraftLine{
			{Description: "Consulting", Quantity: "10", UnitPrice: "150.00", DiscountPercentage: "0", TaxPercentage: "5"},
		},
	}
}

func TestInvoiceDraft_NormalizeDefaults(t *testing.T) {
	d := core.InvoiceDraft{
		CustomerName: "  Acme Corp  ",
		InvoiceDate:  "2026-03-01",
		Lines: []core.DraftLine{
			{Description: " Widget ", Quantity: "", UnitPrice: "50.00", DiscountPercentage: "null", TaxPercentage: ""},
		},
	}
	d.Normalize()

	if d.CustomerName != "Acme Corp" {
		t.Errorf("customer name not trimmed: %q", d.CustomerName)
	}
	line := d.Lines[0]
	if line.Description != "Widget" {
		t.Errorf("description not trimmed: %q", line.Description)
	}
	if line.Quantity != "1" {
		t.Errorf("blank quantity should default to 1, got %q", line.Quantity)
	}
	if line.DiscountPercentage != "0" || line.TaxPercentage != "0" {
		t.Errorf("blank percentages should default to 0, got %q / %q",
			line.DiscountPercentage, line.TaxPercentage)
	}
}

func TestInvoiceDraft_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*core.InvoiceDraft)
		expectErr bool
	}{
		{"happy path", func(d *core.InvoiceDraft) {}, false},
		{"no due date is fine", func(d *core.InvoiceDraft) { d.DueDate = "" }, false},
		{"missing customer", func(d *core.InvoiceDraft) { d.CustomerName = "" }, true},
		{"missing invoice date", func(d *core.InvoiceDraft) { d.InvoiceDate = "" }, true},
		{"malformed invoice date", func(d *core.InvoiceDraft) { d.InvoiceDate = "03/01/2026" }, true},
		{"due before invoice date", func(d *core.InvoiceDraft) { d.DueDate = "2026-02-01" }, true},
		{"confidence out of range", func(d *core.InvoiceDraft) { d.Confidence = 1.5 }, true},
		{"no lines", func(d *core.InvoiceDraft) { d.Lines = nil }, true},
		{"garbage quantity", func(d *core.InvoiceDraft) { d.Lines[0].Quantity = "ten" }, true},
		{"negative price", func(d *core.InvoiceDraft) { d.Lines[0].UnitPrice = "-5" }, true},
		{"discount over 100", func(d *core.InvoiceDraft) { d.Lines[0].DiscountPercentage = "150" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := d.Validate()
			if tc.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestInvoiceDraft_ToLineItems(t *testing.T) {
	draft := validDraft()
	items, err := draft.ToLineItems()
	if err != nil {
		t.Fatalf("ToLineItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !items[0].Quantity.Equal(d("10")) || !items[0].UnitPrice.Equal(d("150")) {
		t.Errorf("unexpected conversion: %+v", items[0])
	}
}

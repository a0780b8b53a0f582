package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItemInput holds the caller-supplied fields for one priced line on an
// invoice or purchase order. DiscountPct is ignored for purchase order
// lines, which have no discount concept.
type LineItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_percentage"`
	TaxPct      decimal.Decimal `json:"tax_percentage"`
	ProductID   *int            `json:"product_id,omitempty"`
}

// LineAmounts holds the computed money figures for a single line.
// The identity Total = Base - Discount + Tax holds exactly: each component
// is rounded to 2 places before the additions, so aggregate sums preserve it.
type LineAmounts struct {
	Base     decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals aggregates line amounts across a whole document.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Lines          []LineAmounts
}

var hundred = decimal.NewFromInt(100)

// ComputeLine computes the money figures for one line:
//
//	base       = quantity × unit_price
//	discount   = base × discount_pct / 100
//	after_disc = base − discount
//	tax        = after_disc × tax_pct / 100
//	total      = after_disc + tax
//
// It is pure and performs no validation; call ValidateLineItems first.
func ComputeLine(in LineItemInput) LineAmounts {
	base := in.Quantity.Mul(in.UnitPrice).Round(2)
	discount := base.Mul(in.DiscountPct).Div(hundred).Round(2)
	afterDisc := base.Sub(discount)
	tax := afterDisc.Mul(in.TaxPct).Div(hundred).Round(2)
	return LineAmounts{
		Base:     base,
		Discount: discount,
		Tax:      tax,
		Total:    afterDisc.Add(tax),
	}
}

// ComputeTotals computes per-line amounts and their aggregates for an
// ordered list of line items. Pure: the same input always produces the
// same output and nothing is mutated.
func ComputeTotals(items []LineItemInput) Totals {
	t := Totals{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.Zero,
		Lines:          make([]LineAmounts, 0, len(items)),
	}
	for _, in := range items {
		la := ComputeLine(in)
		t.Subtotal = t.Subtotal.Add(la.Base)
		t.DiscountAmount = t.DiscountAmount.Add(la.Discount)
		t.TaxAmount = t.TaxAmount.Add(la.Tax)
		t.TotalAmount = t.TotalAmount.Add(la.Total)
		t.Lines = append(t.Lines, la)
	}
	return t
}

// ValidateLineItems rejects empty line lists, blank descriptions, negative
// quantities and prices, and percentages outside [0, 100]. When
// allowDiscount is false (purchase order lines) any non-zero discount is
// rejected rather than silently dropped.
func ValidateLineItems(items []LineItemInput, allowDiscount bool) error {
	if len(items) == 0 {
		return validationErr("lines", "at least one line item is required")
	}
	for i, in := range items {
		field := func(name string) string { return fmt.Sprintf("lines[%d].%s", i, name) }
		if in.Description == "" {
			return validationErr(field("description"), "must not be empty")
		}
		if in.Quantity.IsNegative() {
			return validationErr(field("quantity"), "must not be negative")
		}
		if in.UnitPrice.IsNegative() {
			return validationErr(field("unit_price"), "must not be negative")
		}
		if in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(hundred) {
			return validationErr(field("discount_percentage"), "must be between 0 and 100")
		}
		if !allowDiscount && !in.DiscountPct.IsZero() {
			return validationErr(field("discount_percentage"), "purchase order lines do not support discounts")
		}
		if in.TaxPct.IsNegative() || in.TaxPct.GreaterThan(hundred) {
			return validationErr(field("tax_percentage"), "must be between 0 and 100")
		}
	}
	return nil
}

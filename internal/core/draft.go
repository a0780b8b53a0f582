package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DraftLine is a single proposed invoice line. Amounts are strings so the
// model can emit exact values like "100.00" without float drift.
type DraftLine struct {
	Description        string `json:"description" jsonschema_description:"What the customer is being billed for"`
	Quantity           string `json:"quantity" jsonschema_description:"Quantity as a decimal string, e.g. '2' or '1.5'. Use '1' if unspecified."`
	UnitPrice          string `json:"unit_price" jsonschema_description:"Price per unit as a decimal string, e.g. '150.00'"`
	DiscountPercentage string `json:"discount_percentage" jsonschema_description:"Discount percent 0-100 as a string. Use '0' if none."`
	TaxPercentage      string `json:"tax_percentage" jsonschema_description:"Tax percent 0-100 as a string. Use '0' if none."`
}

// InvoiceDraft is the AI-generated invoice proposal. It references the
// customer by name; the caller resolves that to a customer record before
// the draft becomes a real invoice.
type InvoiceDraft struct {
	CustomerName string      `json:"customer_name" jsonschema_description:"The customer's name exactly as it appears in the provided customer list"`
	InvoiceDate  string      `json:"invoice_date" jsonschema_description:"Invoice date in YYYY-MM-DD format. Extrapolate from context or use today's date if unspecified."`
	DueDate      string      `json:"due_date" jsonschema_description:"Payment due date in YYYY-MM-DD format, on or after the invoice date. Empty if unknown."`
	Notes        string      `json:"notes" jsonschema_description:"Free-text notes for the invoice footer, if any"`
	Confidence   float64     `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning    string      `json:"reasoning" jsonschema_description:"Explanation of how the draft was derived from the description"`
	Lines        []DraftLine `json:"lines" jsonschema_description:"The proposed invoice line items"`
}

// ClarificationRequest is returned by the AI when the description is too
// ambiguous to draft from.
type ClarificationRequest struct {
	Message string `json:"message" jsonschema_description:"A message asking the user for the missing details (e.g. 'Which customer should this invoice go to, and for what amount?')."`
}

// DraftResponse wraps the AI output to handle branching between a usable
// InvoiceDraft and a ClarificationRequest. The AI must return exactly one.
type DraftResponse struct {
	IsClarificationRequest bool                  `json:"is_clarification_request" jsonschema_description:"Set to true ONLY if you lack enough information to draft a confident invoice."`
	Clarification          *ClarificationRequest `json:"clarification,omitempty" jsonschema_description:"Required if is_clarification_request is true."`
	Draft                  *InvoiceDraft         `json:"draft,omitempty" jsonschema_description:"Required if is_clarification_request is false."`
}

// Normalize cleans up common formatting issues in LLM output.
func (d *InvoiceDraft) Normalize() {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.InvoiceDate = strings.TrimSpace(d.InvoiceDate)
	d.DueDate = strings.TrimSpace(d.DueDate)

	for i := range d.Lines {
		line := &d.Lines[i]
		line.Description = strings.TrimSpace(line.Description)
		if isBlankAmount(line.Quantity) {
			line.Quantity = "1"
		}
		if isBlankAmount(line.UnitPrice) {
			line.UnitPrice = "0.00"
		}
		if isBlankAmount(line.DiscountPercentage) {
			line.DiscountPercentage = "0"
		}
		if isBlankAmount(line.TaxPercentage) {
			line.TaxPercentage = "0"
		}
	}
}

func isBlankAmount(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == "null"
}

// Validate enforces the invoice drafting contract before the draft is
// offered to the user.
func (d *InvoiceDraft) Validate() error {
	if d.CustomerName == "" {
		return errors.New("draft must name a customer")
	}
	if d.InvoiceDate == "" {
		return errors.New("draft must specify an invoice date")
	}
	invDate, err := time.Parse("2006-01-02", d.InvoiceDate)
	if err != nil {
		return fmt.Errorf("invalid invoice date format: %w", err)
	}
	if d.DueDate != "" {
		due, err := time.Parse("2006-01-02", d.DueDate)
		if err != nil {
			return fmt.Errorf("invalid due date format: %w", err)
		}
		if due.Before(invDate) {
			return errors.New("due date precedes invoice date")
		}
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", d.Confidence)
	}
	if len(d.Lines) == 0 {
		return errors.New("draft must have at least one line")
	}
	_, err = d.ToLineItems()
	return err
}

// ToLineItems converts the draft's string amounts into line item inputs,
// reusing the same validation an invoice create would apply.
func (d *InvoiceDraft) ToLineItems() ([]LineItemInput, error) {
	items := make([]LineItemInput, 0, len(d.Lines))
	for i, line := range d.Lines {
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity %q: %v", i+1, line.Quantity, err)
		}
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid unit price %q: %v", i+1, line.UnitPrice, err)
		}
		disc, err := decimal.NewFromString(line.DiscountPercentage)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid discount %q: %v", i+1, line.DiscountPercentage, err)
		}
		tax, err := decimal.NewFromString(line.TaxPercentage)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid tax %q: %v", i+1, line.TaxPercentage, err)
		}
		items = append(items, LineItemInput{
			Description: line.Description,
			Quantity:    qty,
			UnitPrice:   price,
			DiscountPct: disc,
			TaxPct:      tax,
		})
	}
	if err := ValidateLineItems(items, true); err != nil {
		return nil, err
	}
	return items, nil
}

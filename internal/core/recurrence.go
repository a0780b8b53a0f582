package core

import (
	"context"
	"time"
)

// RecurrenceFrequency is the cadence at which a recurring invoice spawns
// child invoices.
type RecurrenceFrequency string

const (
	RecurWeekly    RecurrenceFrequency = "weekly"
	RecurMonthly   RecurrenceFrequency = "monthly"
	RecurQuarterly RecurrenceFrequency = "quarterly"
	RecurYearly    RecurrenceFrequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f RecurrenceFrequency) Valid() bool {
	switch f {
	case RecurWeekly, RecurMonthly, RecurQuarterly, RecurYearly:
		return true
	}
	return false
}

// RecurrenceInput holds the recurrence fields of an invoice being created
// or updated. Its presence on an InvoiceInput marks the invoice recurring.
type RecurrenceInput struct {
	Frequency RecurrenceFrequency `json:"frequency"`
	StartDate string              `json:"start_date"` // YYYY-MM-DD; also the initial next_recurrence_date
	EndDate   string              `json:"end_date"`   // optional; generation stops once the next date would pass it
}

// Validate enforces the recurrence contract: a recurring invoice must have
// a valid frequency and a start date, and the end date (if set) must not
// precede the start date.
func (r *RecurrenceInput) Validate() error {
	if !r.Frequency.Valid() {
		return validationErr("recurrence_frequency", "must be weekly, monthly, quarterly, or yearly")
	}
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return validationErr("recurrence_start_date", "must be a YYYY-MM-DD date")
	}
	if r.EndDate != "" {
		end, err := time.Parse("2006-01-02", r.EndDate)
		if err != nil {
			return validationErr("recurrence_end_date", "must be a YYYY-MM-DD date")
		}
		if end.Before(start) {
			return validationErr("recurrence_end_date", "must not precede recurrence_start_date")
		}
	}
	return nil
}

// NextFireDate advances a recurrence date by one period. Month-based
// periods clamp to the last day of the target month, so a monthly invoice
// anchored on Jan 31 fires Feb 28 (or 29), not Mar 2.
func NextFireDate(from time.Time, f RecurrenceFrequency) time.Time {
	switch f {
	case RecurWeekly:
		return from.AddDate(0, 0, 7)
	case RecurMonthly:
		return addMonthsClamped(from, 1)
	case RecurQuarterly:
		return addMonthsClamped(from, 3)
	case RecurYearly:
		return addMonthsClamped(from, 12)
	}
	return from
}

func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// RecurrenceExecutor generates the child invoices that have come due.
// The core exposes the data contract; the cron entry point consumes this.
type RecurrenceExecutor interface {
	// GenerateDue creates one child invoice per elapsed period for every
	// recurring invoice whose next_recurrence_date is on or before asOf,
	// advancing the parent's next date each time and clearing is_recurring
	// once the next date would pass recurrence_end_date. Returns the IDs
	// of the invoices created.
	GenerateDue(ctx context.Context, asOf time.Time) ([]int, error)
}

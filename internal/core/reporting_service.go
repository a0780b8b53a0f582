package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ReceivableLine is one unpaid invoice in the outstanding receivables
// report. DueDate is nil for invoices issued without payment terms.
type ReceivableLine struct {
	InvoiceID     int             `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	DueDate       *string         `json:"due_date,omitempty"`
	Status        InvoiceStatus   `json:"status"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

// ReceivablesReport lists every sent or overdue invoice with an open balance.
type ReceivablesReport struct {
	Lines            []ReceivableLine `json:"lines"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
}

// ExpensePeriod is one calendar month's expense total.
type ExpensePeriod struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// CommitmentLine is one open purchase order in the commitments report.
type CommitmentLine struct {
	PurchaseOrderID int             `json:"purchase_order_id"`
	PONumber        string          `json:"po_number"`
	VendorName      string          `json:"vendor_name"`
	Status          POStatus        `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// CommitmentsReport lists purchase orders that are still open (pending,
// approved or ordered) and therefore represent committed future spend.
type CommitmentsReport struct {
	Lines          []CommitmentLine `json:"lines"`
	TotalCommitted decimal.Decimal  `json:"total_committed"`
}

// DashboardSummary is the headline figures for the owner's home screen.
type DashboardSummary struct {
	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	OverdueReceivables     decimal.Decimal `json:"overdue_receivables"`
	OpenPurchaseOrders     int             `json:"open_purchase_orders"`
	CommittedSpend         decimal.Decimal `json:"committed_spend"`
	ExpensesThisMonth      decimal.Decimal `json:"expenses_this_month"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only summary queries for one owner.
type ReportingService interface {
	// GetReceivables returns all sent and overdue invoices with a positive
	// balance, ordered by due date ascending; invoices with no due date
	// sort last.
	GetReceivables(ctx context.Context, ownerID int) (*ReceivablesReport, error)

	// GetExpensesByMonth returns monthly expense totals for the given year,
	// ordered by month ascending. Months with no expenses are omitted.
	GetExpensesByMonth(ctx context.Context, ownerID, year int) ([]ExpensePeriod, error)

	// GetCommitments returns all open purchase orders (pending, approved,
	// ordered), ordered by order date ascending.
	GetCommitments(ctx context.Context, ownerID int) (*CommitmentsReport, error)

	// GetDashboard returns the headline summary for the current month.
	GetDashboard(ctx context.Context, ownerID int, year, month int) (*DashboardSummary, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetReceivables(ctx context.Context, ownerID int) (*ReceivablesReport, error) {
	const q = `
		SELECT i.id, i.invoice_number, c.name, i.due_date::text, i.status, i.balance_due
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.user_id = $1
		  AND i.status IN ('sent', 'overdue')
		  AND i.balance_due > 0
		ORDER BY i.due_date ASC NULLS LAST, i.id ASC`

	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query receivables: %w", err)
	}
	defer rows.Close()

	report := &ReceivablesReport{}
	for rows.Next() {
		var rl ReceivableLine
		var status string
		if err := rows.Scan(&rl.InvoiceID, &rl.InvoiceNumber, &rl.CustomerName,
			&rl.DueDate, &status, &rl.BalanceDue); err != nil {
			return nil, fmt.Errorf("scan receivable line: %w", err)
		}
		rl.Status = InvoiceStatus(status)
		report.Lines = append(report.Lines, rl)
		report.TotalOutstanding = report.TotalOutstanding.Add(rl.BalanceDue)
	}
	return report, rows.Err()
}

func (s *reportingService) GetExpensesByMonth(ctx context.Context, ownerID, year int) ([]ExpensePeriod, error) {
	const q = `
		SELECT EXTRACT(MONTH FROM expense_date)::int AS month, SUM(amount)
		FROM expenses
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM expense_date)::int = $2
		GROUP BY month
		ORDER BY month`

	rows, err := s.pool.Query(ctx, q, ownerID, year)
	if err != nil {
		return nil, fmt.Errorf("query expenses by month: %w", err)
	}
	defer rows.Close()

	var periods []ExpensePeriod
	for rows.Next() {
		p := ExpensePeriod{Year: year}
		if err := rows.Scan(&p.Month, &p.Total); err != nil {
			return nil, fmt.Errorf("scan expense period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *reportingService) GetCommitments(ctx context.Context, ownerID int) (*CommitmentsReport, error) {
	const q = `
		SELECT po.id, po.po_number, COALESCE(v.name, ''), po.status, po.total_amount
		FROM purchase_orders po
		LEFT JOIN vendors v ON v.id = po.vendor_id
		WHERE po.user_id = $1
		  AND po.status IN ('pending', 'approved', 'ordered')
		ORDER BY po.order_date ASC, po.id ASC`

	rows, err := s.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query commitments: %w", err)
	}
	defer rows.Close()

	report := &CommitmentsReport{}
	for rows.Next() {
		var cl CommitmentLine
		var status string
		if err := rows.Scan(&cl.PurchaseOrderID, &cl.PONumber, &cl.VendorName,
			&status, &cl.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan commitment line: %w", err)
		}
		cl.Status = POStatus(status)
		report.Lines = append(report.Lines, cl)
		report.TotalCommitted = report.TotalCommitted.Add(cl.TotalAmount)
	}
	return report, rows.Err()
}

// GetDashboard runs the three aggregates in one round trip each rather than
// reusing the detail reports, so the response stays cheap as data grows.
func (s *reportingService) GetDashboard(ctx context.Context, ownerID int, year, month int) (*DashboardSummary, error) {
	sum := &DashboardSummary{}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(balance_due), 0),
		       COALESCE(SUM(balance_due) FILTER (WHERE status = 'overdue'), 0)
		FROM invoices
		WHERE user_id = $1 AND status IN ('sent', 'overdue') AND balance_due > 0`,
		ownerID,
	).Scan(&sum.OutstandingReceivables, &sum.OverdueReceivables)
	if err != nil {
		return nil, fmt.Errorf("query receivable totals: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM purchase_orders
		WHERE user_id = $1 AND status IN ('pending', 'approved', 'ordered')`,
		ownerID,
	).Scan(&sum.OpenPurchaseOrders, &sum.CommittedSpend)
	if err != nil {
		return nil, fmt.Errorf("query commitment totals: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM expense_date)::int = $2
		  AND EXTRACT(MONTH FROM expense_date)::int = $3`,
		ownerID, year, month,
	).Scan(&sum.ExpensesThisMonth)
	if err != nil {
		return nil, fmt.Errorf("query month expense total: %w", err)
	}

	return sum, nil
}

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type expenseService struct {
	pool *pgxpool.Pool
}

// NewExpenseService constructs an ExpenseService backed by PostgreSQL.
func NewExpenseService(pool *pgxpool.Pool) ExpenseService {
	return &expenseService{pool: pool}
}

const expenseColumns = `e.id, e.user_id, e.vendor_id, v.name, e.account_id,
	e.expense_date::text, e.amount, e.description, e.receipt_url, e.created_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(&e.ID, &e.UserID, &e.VendorID, &e.VendorName, &e.AccountID,
		&e.ExpenseDate, &e.Amount, &e.Description, &e.ReceiptURL, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// verifyReferences checks that the optional vendor and account links belong
// to the owner before an expense row points at them.
func (s *expenseService) verifyReferences(ctx context.Context, ownerID int, in ExpenseInput) error {
	if in.VendorID != nil {
		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1 AND user_id = $2)",
			*in.VendorID, ownerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("verify vendor %d: %w", *in.VendorID, err)
		}
		if !exists {
			return fmt.Errorf("vendor %d: %w", *in.VendorID, ErrNotFound)
		}
	}
	if in.AccountID != nil {
		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND user_id = $2)",
			*in.AccountID, ownerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("verify account %d: %w", *in.AccountID, err)
		}
		if !exists {
			return fmt.Errorf("account %d: %w", *in.AccountID, ErrNotFound)
		}
	}
	return nil
}

func (s *expenseService) CreateExpense(ctx context.Context, ownerID int, in ExpenseInput) (*Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.verifyReferences(ctx, ownerID, in); err != nil {
		return nil, err
	}
	var id int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, vendor_id, account_id, expense_date, amount, description, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		ownerID, in.VendorID, in.AccountID, in.ExpenseDate, in.Amount, in.Description, toPtr(in.ReceiptURL),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return s.GetExpense(ctx, ownerID, id)
}

func (s *expenseService) GetExpense(ctx context.Context, ownerID, expenseID int) (*Expense, error) {
	e, err := scanExpense(s.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses e
		LEFT JOIN vendors v ON v.id = e.vendor_id
		WHERE e.id = $1`,
		expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("expense %d: %w", expenseID, ErrNotFound)
		}
		return nil, fmt.Errorf("get expense %d: %w", expenseID, err)
	}
	if e.UserID != ownerID {
		return nil, fmt.Errorf("expense %d: %w", expenseID, ErrForbidden)
	}
	return e, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, ownerID int) ([]Expense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses e
		LEFT JOIN vendors v ON v.id = e.vendor_id
		WHERE e.user_id = $1
		ORDER BY e.expense_date DESC, e.id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (s *expenseService) UpdateExpense(ctx context.Context, ownerID, expenseID int, in ExpenseInput) (*Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetExpense(ctx, ownerID, expenseID); err != nil {
		return nil, err
	}
	if err := s.verifyReferences(ctx, ownerID, in); err != nil {
		return nil, err
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE expenses
		SET vendor_id = $1, account_id = $2, expense_date = $3, amount = $4,
		    description = $5, receipt_url = $6
		WHERE id = $7 AND user_id = $8`,
		in.VendorID, in.AccountID, in.ExpenseDate, in.Amount, in.Description,
		toPtr(in.ReceiptURL), expenseID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense %d: %w", expenseID, err)
	}
	return s.GetExpense(ctx, ownerID, expenseID)
}

func (s *expenseService) DeleteExpense(ctx context.Context, ownerID, expenseID int) error {
	if _, err := s.GetExpense(ctx, ownerID, expenseID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM expenses WHERE id = $1 AND user_id = $2", expenseID, ownerID,
	); err != nil {
		return fmt.Errorf("delete expense %d: %w", expenseID, err)
	}
	return nil
}

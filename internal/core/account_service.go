package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountService struct {
	pool *pgxpool.Pool
}

// NewAccountService constructs an AccountService backed by PostgreSQL.
func NewAccountService(pool *pgxpool.Pool) AccountService {
	return &accountService{pool: pool}
}

const accountColumns = "id, user_id, code, name, type, created_at"

func scanAccount(row pgx.Row) (*Account, error) {
	a := &Account{}
	var accType string
	err := row.Scan(&a.ID, &a.UserID, &a.Code, &a.Name, &accType, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Type = AccountType(accType)
	return a, nil
}

func (s *accountService) CreateAccount(ctx context.Context, ownerID int, in AccountInput) (*Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, code, name, type)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		ownerID, in.Code, in.Name, string(in.Type),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account code %q: %w", in.Code, ErrConflict)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *accountService) GetAccount(ctx context.Context, ownerID, accountID int) (*Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", accountID, ErrNotFound)
		}
		return nil, fmt.Errorf("get account %d: %w", accountID, err)
	}
	if a.UserID != ownerID {
		return nil, fmt.Errorf("account %d: %w", accountID, ErrForbidden)
	}
	return a, nil
}

func (s *accountService) ListAccounts(ctx context.Context, ownerID int) ([]Account, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE user_id = $1 ORDER BY code", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (s *accountService) UpdateAccount(ctx context.Context, ownerID, accountID int, in AccountInput) (*Account, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetAccount(ctx, ownerID, accountID); err != nil {
		return nil, err
	}
	a, err := scanAccount(s.pool.QueryRow(ctx, `
		UPDATE accounts SET code = $1, name = $2, type = $3
		WHERE id = $4 AND user_id = $5
		RETURNING `+accountColumns,
		in.Code, in.Name, string(in.Type), accountID, ownerID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("account code %q: %w", in.Code, ErrConflict)
		}
		return nil, fmt.Errorf("update account %d: %w", accountID, err)
	}
	return a, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, ownerID, accountID int) error {
	if _, err := s.GetAccount(ctx, ownerID, accountID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM accounts WHERE id = $1 AND user_id = $2", accountID, ownerID,
	); err != nil {
		return fmt.Errorf("delete account %d: %w", accountID, err)
	}
	return nil
}

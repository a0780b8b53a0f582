package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type roleService struct {
	pool *pgxpool.Pool
}

// NewRoleService constructs a RoleService backed by PostgreSQL.
func NewRoleService(pool *pgxpool.Pool) RoleService {
	return &roleService{pool: pool}
}

func (s *roleService) HasRole(ctx context.Context, userID int, role Role) (bool, error) {
	var has bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)",
		userID, string(role),
	).Scan(&has); err != nil {
		return false, fmt.Errorf("check role %s for user %d: %w", role, userID, err)
	}
	return has, nil
}

func (s *roleService) IsAdmin(ctx context.Context, userID int) (bool, error) {
	return s.HasRole(ctx, userID, RoleAdmin)
}

func (s *roleService) GetRoles(ctx context.Context, userID int) ([]Role, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get roles for user %d: %w", userID, err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, Role(r))
	}
	return roles, rows.Err()
}

// ReplaceRole is the only role mutation: delete every role row for the
// target, then insert exactly one. It never updates rows in place.
func (s *roleService) ReplaceRole(ctx context.Context, actorID, targetUserID int, role Role) error {
	if !role.Valid() {
		return validationErr("role", fmt.Sprintf("unknown role %q", role))
	}

	isAdmin, err := s.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return fmt.Errorf("role assignment requires admin: %w", ErrForbidden)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", targetUserID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("verify user %d: %w", targetUserID, err)
	}
	if !exists {
		return fmt.Errorf("user %d: %w", targetUserID, ErrNotFound)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM user_roles WHERE user_id = $1", targetUserID,
	); err != nil {
		return fmt.Errorf("clear roles for user %d: %w", targetUserID, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES ($1, $2)",
		targetUserID, string(role),
	); err != nil {
		return fmt.Errorf("assign role %s to user %d: %w", role, targetUserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit role replacement: %w", err)
	}
	return nil
}

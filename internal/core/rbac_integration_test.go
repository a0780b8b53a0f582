package core_test

import (
	"context"
	"errors"
	"testing"

	"ledgerlite/internal/core"
)

func TestUserService_SignupGrantsDefaultRole(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	users := core.NewUserService(pool)
	roles := core.NewRoleService(pool)
	ctx := context.Background()

	u, err := users.CreateUser(ctx, "carol", "carol@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := roles.GetRoles(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetRoles failed: %v", err)
	}
	if len(got) != 1 || got[0] != core.RoleUser {
		t.Errorf("expected exactly the default user role, got %v", got)
	}

	// Duplicate username is a conflict, not a generic failure.
	_, err = users.CreateUser(ctx, "carol", "other@example.com", "s3cretpass")
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate username, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	users := core.NewUserService(pool)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "carol", "carol@example.com", "s3cretpass"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := users.Authenticate(ctx, "carol", "s3cretpass"); err != nil {
		t.Errorf("valid credentials rejected: %v", err)
	}
	_, badPass := users.Authenticate(ctx, "carol", "wrongpass")
	_, badUser := users.Authenticate(ctx, "nobody", "s3cretpass")
	if badPass == nil || badUser == nil {
		t.Fatal("invalid credentials must be rejected")
	}
	// Wrong password and unknown user must be indistinguishable.
	if badPass.Error() != badUser.Error() {
		t.Errorf("login failures leak account existence: %q vs %q", badPass, badUser)
	}
}

func TestRoleService_ReplaceRole(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	roles := core.NewRoleService(pool)
	ctx := context.Background()

	// Promote user 1 to admin directly; ReplaceRole requires an admin actor.
	if _, err := pool.Exec(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES (1, 'admin')",
	); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	if err := roles.ReplaceRole(ctx, 1, 2, core.RoleAccountant); err != nil {
		t.Fatalf("ReplaceRole failed: %v", err)
	}

	// Replacement leaves exactly one role row behind.
	got, err := roles.GetRoles(ctx, 2)
	if err != nil {
		t.Fatalf("GetRoles failed: %v", err)
	}
	if len(got) != 1 || got[0] != core.RoleAccountant {
		t.Errorf("expected single accountant role, got %v", got)
	}

	// Non-admin actors may not change roles.
	if err := roles.ReplaceRole(ctx, 2, 1, core.RoleUser); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-admin actor, got %v", err)
	}

	// Unknown targets and roles are rejected.
	if err := roles.ReplaceRole(ctx, 1, 9999, core.RoleUser); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing target, got %v", err)
	}
	if err := roles.ReplaceRole(ctx, 1, 2, core.Role("owner")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRoleService_Predicates(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	roles := core.NewRoleService(pool)
	ctx := context.Background()

	isAdmin, err := roles.IsAdmin(ctx, 1)
	if err != nil {
		t.Fatalf("IsAdmin failed: %v", err)
	}
	if isAdmin {
		t.Error("seeded user should not be admin")
	}

	has, err := roles.HasRole(ctx, 1, core.RoleUser)
	if err != nil {
		t.Fatalf("HasRole failed: %v", err)
	}
	if !has {
		t.Error("seeded user should hold the user role")
	}
}

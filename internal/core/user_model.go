package core

import (
	"context"
	"time"
)

// User represents an authenticated account. Every business entity in the
// system is exclusively scoped to the user that created it.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserWithRoles pairs a user with their assigned roles for the admin view.
type UserWithRoles struct {
	User
	Roles []Role `json:"roles"`
}

// UserService provides account creation, authentication, and lookup.
type UserService interface {
	// CreateUser registers a new account and grants the default `user`
	// role in the same transaction, exactly once. The password is stored
	// as a bcrypt hash. Duplicate usernames or emails fail with ErrConflict.
	CreateUser(ctx context.Context, username, email, password string) (*User, error)

	// Authenticate verifies a username/password pair against the stored
	// bcrypt hash. Inactive users and wrong passwords both fail with an
	// indistinguishable error.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// ListUsers returns all users with their roles. The web layer gates
	// this behind the admin role.
	ListUsers(ctx context.Context) ([]UserWithRoles, error)
}

// Package store provides read access to user records. The order admin
// listing uses it to resolve order owners for display.
package store

import (
	"context"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// UserStore is an interface for user lookup operations.
type UserStore interface {
	// FindByID retrieves a single user by id.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDs retrieves the users for the given ids. Missing ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
}

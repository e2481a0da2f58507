// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a persisted catalog row. Stock counts base pieces and is only
// mutated by admin edits and the order workflow's deduction.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     int64
	Stock     int32
	Category  string
	Image     string
	Version   int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	Name     string
	Price    int64
	Stock    int32
	Category string
	Image    string
}

type UpdateParams struct {
	ID       uuid.UUID
	Name     string
	Price    int64
	Stock    int32
	Category string
	Image    string
	Version  int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all available products with pagination.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// Create adds a new product to the catalog.
	Create(ctx context.Context, params CreateParams) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	Update(ctx context.Context, params UpdateParams) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error
}

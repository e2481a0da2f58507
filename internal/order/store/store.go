// Package store provides an interface for order storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/skmunene/dukahub/internal/order/status"
)

// Order is a persisted order row. Items are stored separately and joined on
// demand. PaymentReference is nil until the order is marked paid with one.
type Order struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	CustomerName     string
	Phone            string
	County           string
	Subcounty        string
	PaymentMethod    string
	PaymentReference *string
	Status           string
	TotalAmount      int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem is a purchase-time snapshot of one line. ProductID is nil when
// the referenced product has since been removed from the catalog.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     *uuid.UUID
	Name          string
	UnitName      string
	PiecesPerUnit int32
	Quantity      int32
	UnitPrice     int64
	Image         string
}

type CreateOrderParams struct {
	UserID        uuid.UUID
	CustomerName  string
	Phone         string
	County        string
	Subcounty     string
	PaymentMethod string
	TotalAmount   int64
}

type CreateOrderItemParams struct {
	ProductID     uuid.UUID
	Name          string
	UnitName      string
	PiecesPerUnit int32
	Quantity      int32
	UnitPrice     int64
	Image         string
}

// RequiredStock is the number of base pieces this line consumes. Computed in
// int64: both factors are caller-controlled and their int32 product can wrap
// negative, which would turn the stock check into a no-op.
func (p *CreateOrderItemParams) RequiredStock() int64 {
	return int64(p.Quantity) * int64(p.PiecesPerUnit)
}

type FindOrdersByUserIDParams struct {
	UserID uuid.UUID
	Offset int32
	Limit  int32
}

type FindAllParams struct {
	Offset int32
	Limit  int32
}

// Stats is the live aggregate over all orders. TotalRevenue excludes orders
// still in pending.
type Stats struct {
	TotalOrders      int64
	Pending          int64
	Paid             int64
	ReadyForDelivery int64
	Delivered        int64
	TotalRevenue     int64
}

// OrderStore is an interface for order storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type OrderStore interface {
	// FindByID retrieves a single order with its items.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, *[]OrderItem, error)

	// FindOrdersByUserID returns a user's orders, newest first.
	// Returns an empty slice if no orders exist.
	FindOrdersByUserID(ctx context.Context, params *FindOrdersByUserIDParams) (*[]Order, error)

	// FindAll returns all orders, newest first.
	FindAll(ctx context.Context, params *FindAllParams) (*[]Order, error)

	// CreateOrder deducts stock for every line and persists the order with
	// its items as one transaction. Any failure leaves no visible writes.
	// Returns ErrProductNotFound or ErrInsufficientStock identifying the
	// offending line.
	CreateOrder(ctx context.Context, orderParams *CreateOrderParams, items *[]CreateOrderItemParams) (*Order, *[]OrderItem, error)

	// UpdateStatus applies a state-machine transition under a row lock.
	// The payment reference is persisted only when target is Paid.
	// Returns ErrOrderNotFound or ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, target status.Status, paymentReference *string) (*Order, error)

	// Stats recomputes the order aggregates.
	Stats(ctx context.Context) (*Stats, error)
}

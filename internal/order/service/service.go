// Package service provides the implementation of order-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skmunene/dukahub/internal/config"
	ordererrors "github.com/skmunene/dukahub/internal/order/errors"
	"github.com/skmunene/dukahub/internal/order/status"
	"github.com/skmunene/dukahub/internal/order/store"
	userstore "github.com/skmunene/dukahub/internal/user/store"
	"github.com/skmunene/dukahub/pkg/messaging"
	"github.com/skmunene/dukahub/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OrderService defines the methods for managing orders.
// It abstracts the underlying business logic and data access.
type OrderService interface {
	// FindByID retrieves a single order owned by the given user.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*OrderDto, error)

	// FindOrdersByUserID returns the caller's orders, newest first.
	FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) (*[]OrderDto, error)

	// FindAllOrders returns every order, newest first, with the owner's
	// identity resolved for display. Admin only.
	FindAllOrders(ctx context.Context, offset, limit int32) (*[]AdminOrderDto, error)

	// Create places a new order: stock is deducted per line and the order
	// persisted, all within one atomic unit.
	Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error)

	// UpdateStatus moves an order along its lifecycle.
	// Returns ErrOrderNotFound or ErrInvalidTransition.
	UpdateStatus(ctx context.Context, update StatusUpdateDto) (*OrderDto, error)

	// Stats returns live order aggregates. Admin only.
	Stats(ctx context.Context) (*StatsDto, error)
}

// Service implements OrderService and provides methods to manage orders.
type Service struct {
	orderStore    store.OrderStore
	userStore     userstore.UserStore
	publisher     messaging.Publisher
	ordersCounter metric.Int64Counter
}

// NewService creates a new instance of OrderService with the provided stores and publisher.
func NewService(orderStore store.OrderStore, userStore userstore.UserStore, publisher messaging.Publisher) *Service {
	meter := otel.Meter(config.ServiceName)
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of created orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &Service{
		orderStore:    orderStore,
		userStore:     userStore,
		publisher:     publisher,
		ordersCounter: ordersCounter,
	}
}

// OrderDto represents the data transfer object for an order.
type OrderDto struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	CustomerName     string         `json:"customer_name"`
	Phone            string         `json:"phone"`
	County           string         `json:"county"`
	Subcounty        string         `json:"subcounty"`
	PaymentMethod    string         `json:"payment_method"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	Status           string         `json:"status"`
	TotalAmount      int64          `json:"total_amount"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	Items            []OrderItemDto `json:"items,omitempty"`
}

type OrderItemDto struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     *uuid.UUID `json:"product_id,omitempty"`
	Name          string     `json:"name"`
	UnitName      string     `json:"unit_name"`
	PiecesPerUnit int32      `json:"pieces_per_unit"`
	Quantity      int32      `json:"quantity"`
	UnitPrice     int64      `json:"unit_price"`
	Image         string     `json:"image,omitempty"`
}

// AdminOrderDto is an order with its owner's identity resolved for display.
type AdminOrderDto struct {
	OrderDto
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

// OrderCreateDto represents the data transfer object for creating a new order.
// UserID is taken from the authenticated context, never from the body.
type OrderCreateDto struct {
	UserID        uuid.UUID            `json:"-"`
	Items         []OrderItemCreateDto `json:"items" validate:"required,gt=0,dive"`
	CustomerName  string               `json:"customer_name" validate:"required"`
	Phone         string               `json:"phone" validate:"required"`
	County        string               `json:"county" validate:"required"`
	Subcounty     string               `json:"subcounty" validate:"required"`
	PaymentMethod string               `json:"payment_method" validate:"required,oneof=equity kcb"`
	TotalAmount   int64                `json:"total_amount" validate:"required,min=1"`
}

// OrderItemCreateDto represents one line of a submitted cart. Quantity is in
// units; PiecesPerUnit converts it to base pieces for the stock check.
type OrderItemCreateDto struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	UnitName      string    `json:"unit_name" validate:"required"`
	PiecesPerUnit int32     `json:"pieces_per_unit" validate:"required,min=1"`
	Quantity      int32     `json:"quantity" validate:"required,min=1"`
	UnitPrice     int64     `json:"unit_price" validate:"min=0"`
	Image         string    `json:"image"`
}

// StatusUpdateDto represents an administrator's request to move an order to
// a new status. PaymentReference is only used when transitioning into paid.
type StatusUpdateDto struct {
	ID               uuid.UUID `json:"-"`
	Status           string    `json:"status" validate:"required"`
	PaymentReference *string   `json:"payment_reference"`
}

type StatsDto struct {
	TotalOrders      int64 `json:"total_orders"`
	Pending          int64 `json:"pending"`
	Paid             int64 `json:"paid"`
	ReadyForDelivery int64 `json:"ready_for_delivery"`
	Delivered        int64 `json:"delivered"`
	TotalRevenue     int64 `json:"total_revenue"`
}

// FindByID retrieves an order by its ID and returns it as an OrderDto.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *Service) FindByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*OrderDto, error) {
	order, items, err := s.orderStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	} else if order != nil && order.UserID != userID {
		return nil, ordererrors.ErrAccessDenied
	}

	return toDto(order, items), nil
}

// FindOrdersByUserID retrieves the caller's orders newest-first.
func (s *Service) FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) (*[]OrderDto, error) {
	orders, err := s.orderStore.FindOrdersByUserID(ctx, &store.FindOrdersByUserIDParams{UserID: userID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	orderDtos := make([]OrderDto, len(*orders))
	for i, o := range *orders {
		orderDtos[i] = *toDto(&o, nil)
	}
	return &orderDtos, nil
}

// FindAllOrders retrieves every order newest-first and resolves each owner's
// name and email via the user store.
func (s *Service) FindAllOrders(ctx context.Context, offset, limit int32) (*[]AdminOrderDto, error) {
	orders, err := s.orderStore.FindAll(ctx, &store.FindAllParams{Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]uuid.UUID, 0, len(*orders))
	seen := make(map[uuid.UUID]struct{}, len(*orders))
	for _, o := range *orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, o.UserID)
		}
	}

	owners := make(map[uuid.UUID]userstore.User, len(ownerIDs))
	if len(ownerIDs) > 0 {
		users, err := s.userStore.FindByIDs(ctx, ownerIDs)
		if err != nil {
			slog.WarnContext(ctx, "Failed to resolve order owners", "error", err)
		}
		for _, u := range users {
			owners[u.ID] = u
		}
	}

	dtos := make([]AdminOrderDto, len(*orders))
	for i, o := range *orders {
		dto := AdminOrderDto{OrderDto: *toDto(&o, nil)}
		if owner, ok := owners[o.UserID]; ok {
			dto.OwnerName = owner.Name
			dto.OwnerEmail = owner.Email
		}
		dtos[i] = dto
	}
	return &dtos, nil
}

// Create places the order. The store executes stock deduction and persistence
// as one atomic unit; any failure leaves the catalog untouched.
func (s *Service) Create(ctx context.Context, order OrderCreateDto) (*OrderDto, error) {
	if len(order.Items) == 0 {
		return nil, ordererrors.ErrEmptyOrder
	}

	var computedTotal int64
	itemParams := make([]store.CreateOrderItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		computedTotal += int64(item.Quantity) * item.UnitPrice
		itemParams = append(itemParams, store.CreateOrderItemParams{
			ProductID:     item.ProductID,
			Name:          item.Name,
			UnitName:      item.UnitName,
			PiecesPerUnit: item.PiecesPerUnit,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Image:         item.Image,
		})
	}
	// The caller-supplied total is persisted as submitted. A mismatch with
	// the line sum is logged, not rejected.
	if computedTotal != order.TotalAmount {
		slog.WarnContext(ctx, "Order total does not match line totals",
			"submitted", order.TotalAmount, "computed", computedTotal)
	}

	orderParams := store.CreateOrderParams{
		UserID:        order.UserID,
		CustomerName:  order.CustomerName,
		Phone:         order.Phone,
		County:        order.County,
		Subcounty:     order.Subcounty,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
	}

	createdOrder, items, err := s.orderStore.CreateOrder(ctx, &orderParams, &itemParams)
	if err != nil {
		return nil, err
	}

	event := events.OrderCreatedEvent{
		OrderID:     createdOrder.ID,
		UserID:      createdOrder.UserID,
		TotalAmount: createdOrder.TotalAmount,
		CreatedAt:   createdOrder.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "error", err)
	}
	s.ordersCounter.Add(ctx, 1)

	return toDto(createdOrder, items), nil
}

// UpdateStatus applies one state-machine transition.
func (s *Service) UpdateStatus(ctx context.Context, update StatusUpdateDto) (*OrderDto, error) {
	target, err := status.Parse(update.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.orderStore.UpdateStatus(ctx, update.ID, target, update.PaymentReference)
	if err != nil {
		return nil, err
	}

	event := events.OrderStatusChangedEvent{
		OrderID:   updated.ID,
		NewStatus: updated.Status,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish OrderStatusChangedEvent", "error", err)
	}

	return toDto(updated, nil), nil
}

// Stats recomputes the aggregates over all orders.
func (s *Service) Stats(ctx context.Context) (*StatsDto, error) {
	stats, err := s.orderStore.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsDto{
		TotalOrders:      stats.TotalOrders,
		Pending:          stats.Pending,
		Paid:             stats.Paid,
		ReadyForDelivery: stats.ReadyForDelivery,
		Delivered:        stats.Delivered,
		TotalRevenue:     stats.TotalRevenue,
	}, nil
}

// toDto converts a store.Order to an OrderDto.
func toDto(order *store.Order, items *[]store.OrderItem) *OrderDto {
	if order == nil {
		return nil
	}

	var itemsDto []OrderItemDto
	if items != nil {
		itemsDto = make([]OrderItemDto, 0, len(*items))
		for _, item := range *items {
			itemsDto = append(itemsDto, OrderItemDto{
				ID:            item.ID,
				ProductID:     item.ProductID,
				Name:          item.Name,
				UnitName:      item.UnitName,
				PiecesPerUnit: item.PiecesPerUnit,
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				Image:         item.Image,
			})
		}
	}

	return &OrderDto{
		ID:               order.ID,
		UserID:           order.UserID,
		CustomerName:     order.CustomerName,
		Phone:            order.Phone,
		County:           order.County,
		Subcounty:        order.Subcounty,
		PaymentMethod:    order.PaymentMethod,
		PaymentReference: order.PaymentReference,
		Status:           order.Status,
		TotalAmount:      order.TotalAmount,
		CreatedAt:        order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        order.UpdatedAt.Format(time.RFC3339),
		Items:            itemsDto,
	}
}

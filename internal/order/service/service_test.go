package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	ordererrors "github.com/skmunene/dukahub/internal/order/errors"
	"github.com/skmunene/dukahub/internal/order/status"
	"github.com/skmunene/dukahub/internal/order/store"
	userstore "github.com/skmunene/dukahub/internal/user/store"
	"github.com/skmunene/dukahub/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOrderStore is a mock implementation of the OrderStore interface
type mockOrderStore struct {
	order  *store.Order
	items  *[]store.OrderItem
	orders *[]store.Order
	stats  *store.Stats
	error  error

	createOrderParams *store.CreateOrderParams
	createItemParams  *[]store.CreateOrderItemParams
	updateTarget      status.Status
	updateRef         *string
}

func (m *mockOrderStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Order, *[]store.OrderItem, error) {
	if m.error != nil {
		return nil, nil, m.error
	}
	return m.order, m.items, nil
}

func (m *mockOrderStore) FindOrdersByUserID(_ context.Context, _ *store.FindOrdersByUserIDParams) (*[]store.Order, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.orders, nil
}

func (m *mockOrderStore) FindAll(_ context.Context, _ *store.FindAllParams) (*[]store.Order, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.orders, nil
}

func (m *mockOrderStore) CreateOrder(_ context.Context, orderParams *store.CreateOrderParams, items *[]store.CreateOrderItemParams) (*store.Order, *[]store.OrderItem, error) {
	m.createOrderParams = orderParams
	m.createItemParams = items
	if m.error != nil {
		return nil, nil, m.error
	}
	return m.order, m.items, nil
}

func (m *mockOrderStore) UpdateStatus(_ context.Context, _ uuid.UUID, target status.Status, paymentReference *string) (*store.Order, error) {
	m.updateTarget = target
	m.updateRef = paymentReference
	if m.error != nil {
		return nil, m.error
	}
	return m.order, nil
}

func (m *mockOrderStore) Stats(_ context.Context) (*store.Stats, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.stats, nil
}

// mockUserStore is a mock implementation of the UserStore interface
type mockUserStore struct {
	users []userstore.User
	error error
}

func (m *mockUserStore) FindByID(_ context.Context, id uuid.UUID) (*userstore.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, userstore.ErrUserNotFound
}

func (m *mockUserStore) FindByIDs(_ context.Context, _ []uuid.UUID) ([]userstore.User, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.users, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.events = append(m.events, event)
	return m.error
}

var (
	mockOrderID   = uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	mockUserID    = uuid.MustParse("123e4567-e89b-12d3-a456-426614174001")
	mockProductID = uuid.MustParse("123e4567-e89b-12d3-a456-426614174002")
	mockItemID    = uuid.MustParse("123e4567-e89b-12d3-a456-426614174003")
)

func storedOrder(st string, total int64) *store.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &store.Order{
		ID:            mockOrderID,
		UserID:        mockUserID,
		CustomerName:  "Wanjiku Kamau",
		Phone:         "0712345678",
		County:        "Nairobi",
		Subcounty:     "Westlands",
		PaymentMethod: "equity",
		Status:        st,
		TotalAmount:   total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func storedItems() *[]store.OrderItem {
	pid := mockProductID
	return &[]store.OrderItem{
		{
			ID:            mockItemID,
			OrderID:       mockOrderID,
			ProductID:     &pid,
			Name:          "Maize Flour",
			UnitName:      "Bale",
			PiecesPerUnit: 12,
			Quantity:      2,
			UnitPrice:     1560,
			Image:         "maize.png",
		},
	}
}

func createDto(total int64) OrderCreateDto {
	return OrderCreateDto{
		UserID: mockUserID,
		Items: []OrderItemCreateDto{
			{
				ProductID:     mockProductID,
				Name:          "Maize Flour",
				UnitName:      "Bale",
				PiecesPerUnit: 12,
				Quantity:      2,
				UnitPrice:     1560,
				Image:         "maize.png",
			},
		},
		CustomerName:  "Wanjiku Kamau",
		Phone:         "0712345678",
		County:        "Nairobi",
		Subcounty:     "Westlands",
		PaymentMethod: "equity",
		TotalAmount:   total,
	}
}

func Test_OrderService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		orderStore := &mockOrderStore{order: storedOrder("pending", 3120), items: storedItems()}
		publisher := &mockPublisher{}
		svc := NewService(orderStore, &mockUserStore{}, publisher)

		created, err := svc.Create(context.Background(), createDto(3120))
		require.NoError(t, err)

		assert.Equal(t, mockOrderID, created.ID)
		assert.Equal(t, "pending", created.Status)
		assert.Equal(t, int64(3120), created.TotalAmount)
		require.Len(t, created.Items, 1)
		assert.Equal(t, "Maize Flour", created.Items[0].Name)
		assert.Equal(t, int32(12), created.Items[0].PiecesPerUnit)

		// The store received the submitted snapshot, not a re-fetched one.
		require.NotNil(t, orderStore.createItemParams)
		require.Len(t, *orderStore.createItemParams, 1)
		item := (*orderStore.createItemParams)[0]
		assert.Equal(t, mockProductID, item.ProductID)
		assert.Equal(t, int64(24), item.RequiredStock())
		assert.Equal(t, "equity", orderStore.createOrderParams.PaymentMethod)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, "orders.created", publisher.events[0].Subject())
	})

	t.Run("empty order is rejected before the store is called", func(t *testing.T) {
		orderStore := &mockOrderStore{}
		svc := NewService(orderStore, &mockUserStore{}, &mockPublisher{})

		dto := createDto(100)
		dto.Items = nil
		_, err := svc.Create(context.Background(), dto)

		assert.ErrorIs(t, err, ordererrors.ErrEmptyOrder)
		assert.Nil(t, orderStore.createOrderParams)
	})

	t.Run("insufficient stock propagates unchanged", func(t *testing.T) {
		orderStore := &mockOrderStore{error: ordererrors.ErrInsufficientStock}
		svc := NewService(orderStore, &mockUserStore{}, &mockPublisher{})

		_, err := svc.Create(context.Background(), createDto(3120))

		assert.ErrorIs(t, err, ordererrors.ErrInsufficientStock)
	})

	t.Run("mismatched caller total is accepted as submitted", func(t *testing.T) {
		orderStore := &mockOrderStore{order: storedOrder("pending", 9999), items: storedItems()}
		svc := NewService(orderStore, &mockUserStore{}, &mockPublisher{})

		created, err := svc.Create(context.Background(), createDto(9999))
		require.NoError(t, err)
		assert.Equal(t, int64(9999), orderStore.createOrderParams.TotalAmount)
		assert.Equal(t, int64(9999), created.TotalAmount)
	})

	t.Run("publish failure does not fail the order", func(t *testing.T) {
		orderStore := &mockOrderStore{order: storedOrder("pending", 3120), items: storedItems()}
		publisher := &mockPublisher{error: assert.AnError}
		svc := NewService(orderStore, &mockUserStore{}, publisher)

		created, err := svc.Create(context.Background(), createDto(3120))
		require.NoError(t, err)
		assert.NotNil(t, created)
	})
}

func Test_OrderService_FindByID(t *testing.T) {
	t.Run("owner can read", func(t *testing.T) {
		svc := NewService(&mockOrderStore{order: storedOrder("pending", 3120), items: storedItems()}, &mockUserStore{}, &mockPublisher{})

		found, err := svc.FindByID(context.Background(), mockUserID, mockOrderID)
		require.NoError(t, err)
		assert.Equal(t, mockOrderID, found.ID)
		require.Len(t, found.Items, 1)
	})

	t.Run("other user is denied", func(t *testing.T) {
		svc := NewService(&mockOrderStore{order: storedOrder("pending", 3120), items: storedItems()}, &mockUserStore{}, &mockPublisher{})

		_, err := svc.FindByID(context.Background(), uuid.New(), mockOrderID)
		assert.ErrorIs(t, err, ordererrors.ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewService(&mockOrderStore{error: ordererrors.ErrOrderNotFound}, &mockUserStore{}, &mockPublisher{})

		_, err := svc.FindByID(context.Background(), mockUserID, mockOrderID)
		assert.ErrorIs(t, err, ordererrors.ErrOrderNotFound)
	})
}

func Test_OrderService_FindAllOrders(t *testing.T) {
	orders := []store.Order{*storedOrder("paid", 3120)}
	users := []userstore.User{{ID: mockUserID, Name: "Wanjiku Kamau", Email: "wanjiku@example.com", Role: "customer"}}
	svc := NewService(&mockOrderStore{orders: &orders}, &mockUserStore{users: users}, &mockPublisher{})

	list, err := svc.FindAllOrders(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, *list, 1)
	assert.Equal(t, "Wanjiku Kamau", (*list)[0].OwnerName)
	assert.Equal(t, "wanjiku@example.com", (*list)[0].OwnerEmail)
}

func Test_OrderService_UpdateStatus(t *testing.T) {
	t.Run("unknown status is rejected before the store is called", func(t *testing.T) {
		orderStore := &mockOrderStore{}
		svc := NewService(orderStore, &mockUserStore{}, &mockPublisher{})

		_, err := svc.UpdateStatus(context.Background(), StatusUpdateDto{ID: mockOrderID, Status: "shipped"})
		assert.ErrorIs(t, err, ordererrors.ErrUnknownStatus)
		assert.Empty(t, orderStore.updateTarget)
	})

	t.Run("valid transition with payment reference", func(t *testing.T) {
		ref := "EQ-9921"
		orderStore := &mockOrderStore{order: storedOrder("paid", 3120)}
		publisher := &mockPublisher{}
		svc := NewService(orderStore, &mockUserStore{}, publisher)

		updated, err := svc.UpdateStatus(context.Background(), StatusUpdateDto{ID: mockOrderID, Status: "paid", PaymentReference: &ref})
		require.NoError(t, err)
		assert.Equal(t, "paid", updated.Status)
		assert.Equal(t, status.Paid, orderStore.updateTarget)
		require.NotNil(t, orderStore.updateRef)
		assert.Equal(t, ref, *orderStore.updateRef)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, "orders.status_changed", publisher.events[0].Subject())
	})

	t.Run("invalid transition propagates", func(t *testing.T) {
		orderStore := &mockOrderStore{error: ordererrors.ErrInvalidTransition}
		svc := NewService(orderStore, &mockUserStore{}, &mockPublisher{})

		_, err := svc.UpdateStatus(context.Background(), StatusUpdateDto{ID: mockOrderID, Status: "delivered"})
		assert.ErrorIs(t, err, ordererrors.ErrInvalidTransition)
	})
}

func Test_OrderService_Stats(t *testing.T) {
	svc := NewService(&mockOrderStore{stats: &store.Stats{
		TotalOrders:      3,
		Pending:          1,
		Paid:             1,
		Delivered:        1,
		TotalRevenue:     500,
	}}, &mockUserStore{}, &mockPublisher{})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(500), stats.TotalRevenue)
}

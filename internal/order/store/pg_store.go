package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	ordererrors "github.com/skmunene/dukahub/internal/order/errors"
	"github.com/skmunene/dukahub/internal/order/status"
)

const orderColumns = `id, user_id, customer_name, phone, county, subcounty,
	payment_method, payment_reference, status, total_amount, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, name, unit_name,
	pieces_per_unit, quantity, unit_price, image`

type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Order, *[]OrderItem, error) {
	var order *Order
	var orderItems *[]OrderItem

	// Use transaction to ensure the order and its items are read consistently
	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ordererrors.ErrOrderNotFound
			}
			return ordererrors.ErrFailedToFindOrder
		}
		items, err := p.findItems(ctx, tx, id)
		if err != nil {
			return ordererrors.ErrFailedToFindOrderItems
		}
		order = o
		orderItems = &items
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}

	return order, orderItems, nil
}

func (p *PgStore) FindOrdersByUserID(ctx context.Context, params *FindOrdersByUserIDParams) (*[]Order, error) {
	// Single query, no transaction needed
	rows, err := p.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		params.UserID, params.Limit, params.Offset)
	if err != nil {
		return nil, ordererrors.ErrFailedToFindUserOrders
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, ordererrors.ErrFailedToFindUserOrders
	}
	return &orders, nil
}

func (p *PgStore) FindAll(ctx context.Context, params *FindAllParams) (*[]Order, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		params.Limit, params.Offset)
	if err != nil {
		return nil, ordererrors.ErrFailedToFindOrders
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, ordererrors.ErrFailedToFindOrders
	}
	return &orders, nil
}

// CreateOrder runs the whole placement as one transaction: every line's
// stock check-and-deduct, the order insert and the item inserts either all
// commit or all roll back.
func (p *PgStore) CreateOrder(ctx context.Context, orderParams *CreateOrderParams, items *[]CreateOrderItemParams) (*Order, *[]OrderItem, error) {
	var createdOrder *Order
	var createdItems *[]OrderItem

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		for i := range *items {
			if err := p.deductStock(ctx, tx, &(*items)[i]); err != nil {
				return err
			}
		}

		order, err := scanOrder(tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, customer_name, phone, county, subcounty,
			                     payment_method, status, total_amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING `+orderColumns,
			orderParams.UserID, orderParams.CustomerName, orderParams.Phone,
			orderParams.County, orderParams.Subcounty, orderParams.PaymentMethod,
			string(status.Pending), orderParams.TotalAmount))
		if err != nil {
			return ordererrors.ErrCreateOrder
		}

		orderItems := make([]OrderItem, 0, len(*items))
		for _, item := range *items {
			orderItem, err := scanOrderItem(tx.QueryRow(ctx,
				`INSERT INTO order_items (order_id, product_id, name, unit_name,
				                          pieces_per_unit, quantity, unit_price, image)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 RETURNING `+orderItemColumns,
				order.ID, item.ProductID, item.Name, item.UnitName,
				item.PiecesPerUnit, item.Quantity, item.UnitPrice, item.Image))
			if err != nil {
				return ordererrors.ErrCreateOrderItem
			}
			orderItems = append(orderItems, *orderItem)
		}
		createdOrder = order
		createdItems = &orderItems
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}

	return createdOrder, createdItems, nil
}

// deductStock verifies and deducts one line's base pieces under a row lock,
// so concurrent orders for the same product serialize on the product row.
func (p *PgStore) deductStock(ctx context.Context, tx pgx.Tx, item *CreateOrderItemParams) error {
	required := item.RequiredStock()

	var name string
	var stock int32
	err := tx.QueryRow(ctx,
		`SELECT name, stock FROM products WHERE id = $1 FOR UPDATE`,
		item.ProductID).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s: %w", item.ProductID, ordererrors.ErrProductNotFound)
		}
		return fmt.Errorf("failed to read stock for product %s: %w", item.ProductID, err)
	}

	if int64(stock) < required {
		return fmt.Errorf("%s (%s): available %d, required %d: %w",
			name, item.UnitName, stock, required, ordererrors.ErrInsufficientStock)
	}

	_, err = tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
		item.ProductID, required)
	if err != nil {
		return fmt.Errorf("failed to deduct stock for product %s: %w", item.ProductID, err)
	}
	return nil
}

// UpdateStatus locks the order row, validates the transition against the
// then-current status and applies it. Racing updates serialize on the lock;
// each one is validated against what the previous writer left behind.
func (p *PgStore) UpdateStatus(ctx context.Context, id uuid.UUID, target status.Status, paymentReference *string) (*Order, error) {
	var updated *Order

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		current, err := scanOrder(tx.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ordererrors.ErrOrderNotFound
			}
			return ordererrors.ErrFailedToFindOrder
		}

		from, err := status.Parse(current.Status)
		if err != nil {
			return err
		}
		next, err := status.Transition(from, target)
		if err != nil {
			return err
		}

		// The payment reference is only meaningful when entering paid.
		var ref *string
		if next == status.Paid {
			ref = paymentReference
		}

		order, err := scanOrder(tx.QueryRow(ctx,
			`UPDATE orders
			 SET status = $2,
			     payment_reference = COALESCE($3, payment_reference),
			     updated_at = now()
			 WHERE id = $1
			 RETURNING `+orderColumns,
			id, string(next), ref))
		if err != nil {
			return ordererrors.ErrUpdateOrder
		}
		updated = order
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return updated, nil
}

// Stats recomputes the aggregates with one query; there is no cached value.
func (p *PgStore) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := p.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status = 'pending'),
		        count(*) FILTER (WHERE status = 'paid'),
		        count(*) FILTER (WHERE status = 'ready_for_delivery'),
		        count(*) FILTER (WHERE status = 'delivered'),
		        COALESCE(sum(total_amount) FILTER (WHERE status <> 'pending'), 0)
		 FROM orders`).
		Scan(&s.TotalOrders, &s.Pending, &s.Paid, &s.ReadyForDelivery, &s.Delivered, &s.TotalRevenue)
	if err != nil {
		return nil, ordererrors.ErrFailedToComputeStats
	}
	return &s, nil
}

func (p *PgStore) findItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.UnitName, &item.PiecesPerUnit, &item.Quantity, &item.UnitPrice, &item.Image); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ordererrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return ordererrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ordererrors.ErrTransactionCommit
	}

	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.Phone, &o.County,
		&o.Subcounty, &o.PaymentMethod, &o.PaymentReference, &o.Status,
		&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderItem(row pgx.Row) (*OrderItem, error) {
	var item OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
		&item.UnitName, &item.PiecesPerUnit, &item.Quantity, &item.UnitPrice, &item.Image)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.Phone, &o.County,
			&o.Subcounty, &o.PaymentMethod, &o.PaymentReference, &o.Status,
			&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

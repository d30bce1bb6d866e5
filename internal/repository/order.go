package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/backoffice/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_id, total, created_at)
		VALUES ($1, $2, $3, $4)`

	createLineItemSQL = `INSERT INTO order_line_items (order_id, position, product_id, unit_price)
		VALUES ($1, $2, $3, $4)`

	getOrderSQL = `SELECT id, customer_id, total, created_at FROM orders WHERE id = $1`

	getLineItemsSQL = `SELECT position, product_id, unit_price
		FROM order_line_items WHERE order_id = $1 ORDER BY position`

	lineItemsProductFKey = "order_line_items_product_id_fkey"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository that uses db.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order header and its line items in one transaction.
// Any failure rolls the whole unit back. Foreign key violations raised by a
// concurrently deleted customer or product map to order.ErrCustomerGone and
// *order.ProductGoneError.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return pgx.BeginTxFunc(ctx, r.db, writeTx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, createOrderSQL, o.ID, o.CustomerID, o.Total, o.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err, ordersCustomerFKey) {
				return fmt.Errorf("creating order %q: %w", o.ID, order.ErrCustomerGone)
			}
			return fmt.Errorf("creating order %q: %w", o.ID, err)
		}

		for _, item := range o.Items {
			_, err := tx.Exec(ctx, createLineItemSQL, o.ID, item.Position, item.ProductID, item.UnitPrice)
			if err != nil {
				if isForeignKeyViolation(err, lineItemsProductFKey) {
					return fmt.Errorf("creating line item %d of order %q: %w",
						item.Position, o.ID, &order.ProductGoneError{ProductID: item.ProductID})
				}
				return fmt.Errorf("creating line item %d of order %q: %w", item.Position, o.ID, err)
			}
		}
		return nil
	})
}

// GetByID returns an order together with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.db.QueryRow(ctx, getOrderSQL, id).Scan(&o.ID, &o.CustomerID, &o.Total, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	rows, err := r.db.Query(ctx, getLineItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting line items of order %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.LineItem, error) {
		var item order.LineItem
		err := row.Scan(&item.Position, &item.ProductID, &item.UnitPrice)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting line items of order %q: %w", id, err)
	}
	return &o, nil
}

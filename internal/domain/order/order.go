package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors returned by Repository implementations.
var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrCustomerGone is returned by Create when the customer disappeared
	// between validation and insert.
	ErrCustomerGone = errors.New("order customer no longer exists")
)

// ProductGoneError is returned by Repository.Create when a product
// disappeared between validation and insert.
type ProductGoneError struct {
	ProductID int64
}

func (e *ProductGoneError) Error() string {
	return fmt.Sprintf("order product %d no longer exists", e.ProductID)
}

// Order is a recorded purchase. Total is the sum of the line items' unit
// prices captured when the order was created.
type Order struct {
	ID         string
	CustomerID int64
	Total      decimal.Decimal
	CreatedAt  time.Time
	Items      []LineItem
}

// LineItem records that a product was part of an order. Position is the
// 1-based index in the original request, so the same product may repeat.
type LineItem struct {
	Position  int
	ProductID int64
	UnitPrice decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores the order header and all of its line items as one
	// atomic unit: either everything is committed or nothing is.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
}

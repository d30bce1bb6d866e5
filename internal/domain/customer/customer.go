package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors returned by Repository implementations.
var (
	// ErrNotFound is returned when the requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicateEmail is returned when the email violates the uniqueness constraint.
	ErrDuplicateEmail = errors.New("customer email already exists")
	// ErrHasOrders is returned by Delete when at least one order references the customer.
	ErrHasOrders = errors.New("customer has orders")
)

// Customer is a registered buyer.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// NewCustomer holds the fields supplied when registering a customer.
type NewCustomer struct {
	Name  string
	Email string
	Phone string
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c NewCustomer) (int64, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Search(ctx context.Context, term string) ([]Customer, error)
	// Delete removes the customer unless an order references it, checking
	// and deleting atomically.
	Delete(ctx context.Context, id int64) error
}

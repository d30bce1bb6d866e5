package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/backoffice/internal/domain/customer"
)

const (
	customerColumns = `id, name, email, phone, created_at`

	createCustomerSQL = `INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3) RETURNING id`

	getCustomerByIDSQL = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	listCustomersSQL = `SELECT ` + customerColumns + ` FROM customers ORDER BY name, id`

	searchCustomersSQL = `SELECT ` + customerColumns + ` FROM customers
		WHERE name ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\'
		ORDER BY name, id`

	lockCustomerSQL = `SELECT id FROM customers WHERE id = $1 FOR UPDATE`

	customerHasOrdersSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE customer_id = $1)`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`

	customersEmailKey   = "customers_email_key"
	ordersCustomerFKey  = "orders_customer_id_fkey"
	likeEscapeCharacter = `\`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	db DB
}

// NewCustomerRepository returns a CustomerRepository that uses db.
func NewCustomerRepository(db DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer and returns its identifier. A clash on the email
// uniqueness constraint is reported as customer.ErrDuplicateEmail.
func (r *CustomerRepository) Create(ctx context.Context, c customer.NewCustomer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, createCustomerSQL, c.Name, c.Email, c.Phone).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, customersEmailKey) {
			return 0, fmt.Errorf("creating customer %q: %w", c.Email, customer.ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("creating customer %q: %w", c.Email, err)
	}
	return id, nil
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByIDSQL, id)
}

// GetByEmail returns the customer registered with email.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.getOne(ctx, getCustomerByEmailSQL, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, sql string, arg any) (*customer.Customer, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting customer %v: %w", arg, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %v: %w", arg, err)
	}
	return &c, nil
}

// List returns all customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.db.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Search returns customers whose name or email contains term, ignoring case.
// LIKE wildcards in term are matched literally.
func (r *CustomerRepository) Search(ctx context.Context, term string) ([]customer.Customer, error) {
	rows, err := r.db.Query(ctx, searchCustomersSQL, "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, fmt.Errorf("searching customers %q: %w", term, err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Delete removes a customer inside a transaction: the row is locked, orders
// referencing it are checked, then it is deleted. The foreign key on
// orders.customer_id backs the check for writers that raced past the lock.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginTxFunc(ctx, r.db, writeTx, func(tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, lockCustomerSQL, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return customer.ErrNotFound
			}
			return fmt.Errorf("locking customer %d: %w", id, err)
		}

		var hasOrders bool
		if err := tx.QueryRow(ctx, customerHasOrdersSQL, id).Scan(&hasOrders); err != nil {
			return fmt.Errorf("checking orders of customer %d: %w", id, err)
		}
		if hasOrders {
			return customer.ErrHasOrders
		}

		if _, err := tx.Exec(ctx, deleteCustomerSQL, id); err != nil {
			if isForeignKeyViolation(err, ordersCustomerFKey) {
				return customer.ErrHasOrders
			}
			return fmt.Errorf("deleting customer %d: %w", id, err)
		}
		return nil
	})
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	return c, err
}

var likeReplacer = strings.NewReplacer(
	likeEscapeCharacter, likeEscapeCharacter+likeEscapeCharacter,
	"%", likeEscapeCharacter+"%",
	"_", likeEscapeCharacter+"_",
)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

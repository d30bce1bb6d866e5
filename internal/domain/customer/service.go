// Package customer manages the customer registry: validated creation,
// lookups, search, and deletion guarded against existing orders.
package customer

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/validation"
)

const entity = "customer"

// Service encapsulates customer business rules on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a customer Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input and registers a new customer, returning its
// identifier. Invalid input is rejected before the repository is called.
func (s *Service) Create(ctx context.Context, name, email, phone string) (int64, error) {
	violations := validation.Customer(name, email)
	violations = append(violations, validation.Phone(phone)...)
	if len(violations) > 0 {
		return 0, &apperr.ValidationError{Entity: entity, Violations: violations}
	}

	id, err := s.repo.Create(ctx, NewCustomer{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return 0, &apperr.DuplicateEmailError{Email: strings.TrimSpace(email)}
		}
		return 0, apperr.Storage("create customer", err)
	}

	zctx.From(ctx).Info("Customer created", zap.Int64("customer_id", id))
	return id, nil
}

// Find returns the customer with the given identifier.
func (s *Service) Find(ctx context.Context, id int64) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, apperr.Storage("find customer", err)
	}
	return c, nil
}

// FindByEmail returns the customer registered with email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &apperr.InvalidArgumentError{Argument: "email", Reason: "must not be blank"}
	}
	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: entity, ID: email}
		}
		return nil, apperr.Storage("find customer by email", err)
	}
	return c, nil
}

// List returns all customers ordered by name.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Storage("list customers", err)
	}
	return customers, nil
}

// Search returns customers whose name or email contains term, ignoring case.
// A blank term is rejected without querying storage.
func (s *Service) Search(ctx context.Context, term string) ([]Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, &apperr.InvalidArgumentError{Argument: "term", Reason: "must not be blank"}
	}
	customers, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, apperr.Storage("search customers", err)
	}
	return customers, nil
}

// Delete removes a customer. It fails with a ReferentialIntegrityError while
// any order references the customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		zctx.From(ctx).Info("Customer deleted", zap.Int64("customer_id", id))
		return nil
	case errors.Is(err, ErrNotFound):
		return notFound(id)
	case errors.Is(err, ErrHasOrders):
		return &apperr.ReferentialIntegrityError{
			Entity: entity,
			ID:     strconv.FormatInt(id, 10),
			Reason: "customer has orders",
		}
	default:
		return apperr.Storage("delete customer", err)
	}
}

func notFound(id int64) error {
	return &apperr.NotFoundError{Entity: entity, ID: strconv.FormatInt(id, 10)}
}

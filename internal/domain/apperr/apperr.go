// Package apperr defines the failure kinds returned by the back-office
// services. Callers match them with errors.As; every kind except StorageError
// is recoverable by correcting the input and retrying.
package apperr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// ValidationError reports field-rule violations. Nothing was written.
type ValidationError struct {
	Entity     string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Violations, "; "))
}

// DuplicateEmailError indicates the email is already used by another customer.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %q already registered", e.Email)
}

// NotFoundError indicates the addressed entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// CustomerNotFoundError indicates an order referenced a customer that does
// not exist.
type CustomerNotFoundError struct {
	CustomerID int64
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %d not found", e.CustomerID)
}

// ProductNotFoundError lists the product identifiers of an order request that
// did not resolve, in request order.
type ProductNotFoundError struct {
	ProductIDs []int64
}

func (e *ProductNotFoundError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("products not found: %s", strings.Join(ids, ", "))
}

// ReferentialIntegrityError indicates a mutation was refused because other
// records depend on the target.
type ReferentialIntegrityError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s cannot be modified: %s", e.Entity, e.ID, e.Reason)
}

// InvalidArgumentError reports a malformed call parameter.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}

// StorageError wraps a backing-store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError for op. A nil err yields nil and an
// error that already is a StorageError is returned unchanged.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Recoverable reports whether the caller can fix the failure by changing its
// input. Storage failures and unknown errors are not recoverable.
func Recoverable(err error) bool {
	var (
		validation *ValidationError
		duplicate  *DuplicateEmailError
		notFound   *NotFoundError
		customer   *CustomerNotFoundError
		product    *ProductNotFoundError
		integrity  *ReferentialIntegrityError
		argument   *InvalidArgumentError
	)
	switch {
	case errors.As(err, &validation),
		errors.As(err, &duplicate),
		errors.As(err, &notFound),
		errors.As(err, &customer),
		errors.As(err, &product),
		errors.As(err, &integrity),
		errors.As(err, &argument):
		return true
	default:
		return false
	}
}

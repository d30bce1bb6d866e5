// Package report produces read-only aggregates over committed orders.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/internal/domain/apperr"
)

// CustomerSales is one row of the sales-by-customer report.
type CustomerSales struct {
	CustomerID     int64
	Name           string
	TotalPurchases decimal.Decimal
	Orders         int
}

// Repository runs the aggregate queries.
type Repository interface {
	// SalesByCustomer returns every customer with the sum of its order
	// totals, highest first, customers without orders last.
	SalesByCustomer(ctx context.Context) ([]CustomerSales, error)
}

// Service exposes the reports.
type Service struct {
	repo Repository
}

// NewService creates a report Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SalesByCustomer aggregates committed order totals per customer. Customers
// with no orders are included with a zero total.
func (s *Service) SalesByCustomer(ctx context.Context) ([]CustomerSales, error) {
	rows, err := s.repo.SalesByCustomer(ctx)
	if err != nil {
		return nil, apperr.Storage("sales by customer", err)
	}
	return rows, nil
}

// GrandTotal sums TotalPurchases over rows.
func GrandTotal(rows []CustomerSales) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalPurchases)
	}
	return total
}

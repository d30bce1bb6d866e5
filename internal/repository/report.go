package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/xenking/backoffice/internal/domain/report"
)

const salesByCustomerSQL = `SELECT c.id, c.name, COALESCE(SUM(o.total), 0), COUNT(o.id)
	FROM customers c
	LEFT JOIN orders o ON o.customer_id = c.id
	GROUP BY c.id, c.name
	ORDER BY SUM(o.total) DESC NULLS LAST, c.name, c.id`

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository backed by PostgreSQL.
type ReportRepository struct {
	db DB
}

// NewReportRepository returns a ReportRepository that uses db.
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SalesByCustomer sums committed order totals per customer in a single
// statement, so it reads one consistent snapshot.
func (r *ReportRepository) SalesByCustomer(ctx context.Context) ([]report.CustomerSales, error) {
	rows, err := r.db.Query(ctx, salesByCustomerSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sales by customer: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.CustomerSales, error) {
		var s report.CustomerSales
		err := row.Scan(&s.CustomerID, &s.Name, &s.TotalPurchases, &s.Orders)
		return s, err
	})
}

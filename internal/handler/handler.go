// Package handler exposes the back-office services over HTTP. Requests and
// responses are JSON, encoded with jx; routing is chi.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/domain/report"
	"github.com/xenking/backoffice/pkg/httpmiddleware"
)

// CustomerService is implemented by *customer.Service.
type CustomerService interface {
	Create(ctx context.Context, name, email, phone string) (int64, error)
	Find(ctx context.Context, id int64) (*customer.Customer, error)
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
	Search(ctx context.Context, term string) ([]customer.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// ProductService is implemented by *product.Service.
type ProductService interface {
	Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error)
	Find(ctx context.Context, id int64) (*product.Product, error)
	List(ctx context.Context) ([]product.Product, error)
	AdjustStock(ctx context.Context, id int64, quantity int) (int, error)
}

// OrderService is implemented by *order.Service.
type OrderService interface {
	CreateOrder(ctx context.Context, customerID int64, productIDs []int64) (*order.Order, error)
	Get(ctx context.Context, id string) (*order.Order, error)
}

// ReportService is implemented by *report.Service.
type ReportService interface {
	SalesByCustomer(ctx context.Context) ([]report.CustomerSales, error)
}

var (
	_ CustomerService = (*customer.Service)(nil)
	_ ProductService  = (*product.Service)(nil)
	_ OrderService    = (*order.Service)(nil)
	_ ReportService   = (*report.Service)(nil)
)

// Config holds non-dependency settings for the Handler.
type Config struct {
	// RequestTimeout bounds every API request. Zero disables the limit.
	RequestTimeout time.Duration
	// MaxBodyBytes caps request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Handler serves the /api routes.
type Handler struct {
	customers CustomerService
	products  ProductService
	orders    OrderService
	reports   ReportService
	cfg       Config
}

// New constructs a Handler.
func New(cfg Config, customers CustomerService, products ProductService, orders OrderService, reports ReportService) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
		reports:   reports,
		cfg:       cfg,
	}
}

// Register mounts the API under /api on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(httpmiddleware.LogRequests(), httpmiddleware.LabelRoute())
		if h.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(h.cfg.RequestTimeout))
		}

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.createCustomer)
			r.Get("/", h.listCustomers)
			r.Get("/{id}", h.getCustomer)
			r.Delete("/{id}", h.deleteCustomer)
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.createProduct)
			r.Get("/", h.listProducts)
			r.Get("/{id}", h.getProduct)
			r.Put("/{id}/stock", h.adjustStock)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.createOrder)
			r.Get("/{id}", h.getOrder)
		})
		r.Get("/reports/sales-by-customer", h.salesByCustomer)
	})
}

// Router returns a chi router serving only the API routes.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return readAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
}

// Package order places orders: it checks that the customer and every product
// exist, snapshots the total, and persists the order atomically.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/product"
)

const instrumentationName = "github.com/xenking/backoffice/internal/domain/order"

// CustomerLookup resolves customers by identifier.
type CustomerLookup interface {
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
}

// ProductLookup resolves a batch of products by identifier.
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}

// Option configures a Service.
type Option func(*Service)

// WithMeterProvider sets the meter provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider used for order spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracerProvider = tp }
}

// Service encapsulates order placement business logic.
type Service struct {
	customers CustomerLookup
	products  ProductLookup
	orders    Repository
	now       func() time.Time

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	created        metric.Int64Counter
	rejected       metric.Int64Counter
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	customers CustomerLookup,
	products ProductLookup,
	orders Repository,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		customers:      customers,
		products:       products,
		orders:         orders,
		now:            time.Now,
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meterProvider.Meter(instrumentationName)
	var err error
	if s.created, err = meter.Int64Counter("orders.created",
		metric.WithDescription("Orders committed"),
	); err != nil {
		return nil, errors.Wrap(err, "create orders.created counter")
	}
	if s.rejected, err = meter.Int64Counter("orders.rejected",
		metric.WithDescription("Order requests refused before or during persistence"),
	); err != nil {
		return nil, errors.Wrap(err, "create orders.rejected counter")
	}
	s.tracer = s.tracerProvider.Tracer(instrumentationName)

	return s, nil
}

// CreateOrder records an order for customerID containing one line item per
// entry of productIDs (repeats allowed). The customer and all products must
// exist; the total is the sum of the products' current prices. Nothing is
// persisted unless the whole order is.
//
// Stock levels are not touched: inventory is adjusted separately through the
// product service.
func (s *Service) CreateOrder(ctx context.Context, customerID int64, productIDs []int64) (_ *Order, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Create", trace.WithAttributes(
		attribute.Int64("customer.id", customerID),
		attribute.Int("order.items", len(productIDs)),
	))
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(rerr))))
		}
		span.End()
	}()

	if len(productIDs) == 0 {
		return nil, &apperr.InvalidArgumentError{Argument: "productIDs", Reason: "at least one product required"}
	}

	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, &apperr.CustomerNotFoundError{CustomerID: customerID}
		}
		return nil, apperr.Storage("get customer", err)
	}

	// Batch fetch the distinct products in a single query.
	fetched, err := s.products.GetByIDs(ctx, distinct(productIDs))
	if err != nil {
		return nil, apperr.Storage("get products", err)
	}
	productMap := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	// Every requested identifier, repeats included, must resolve.
	var missing []int64
	items := make([]LineItem, 0, len(productIDs))
	total := decimal.Zero
	for i, id := range productIDs {
		p, ok := productMap[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		items = append(items, LineItem{
			Position:  i + 1,
			ProductID: id,
			UnitPrice: p.Price,
		})
		total = total.Add(p.Price)
	}
	if len(missing) > 0 {
		return nil, &apperr.ProductNotFoundError{ProductIDs: missing}
	}

	o := &Order{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Total:      total.Round(2),
		CreatedAt:  s.now().UTC(),
		Items:      items,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		var gone *ProductGoneError
		switch {
		case errors.Is(err, ErrCustomerGone):
			return nil, &apperr.CustomerNotFoundError{CustomerID: customerID}
		case errors.As(err, &gone):
			return nil, &apperr.ProductNotFoundError{ProductIDs: []int64{gone.ProductID}}
		default:
			return nil, apperr.Storage("create order", err)
		}
	}

	s.created.Add(ctx, 1)
	span.SetAttributes(attribute.String("order.id", o.ID))
	zctx.From(ctx).Info("Order created",
		zap.String("order_id", o.ID),
		zap.Int64("customer_id", customerID),
		zap.Int("items", len(items)),
		zap.Stringer("total", o.Total),
	)

	return o, nil
}

// Get returns an order together with its line items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &apperr.InvalidArgumentError{Argument: "id", Reason: "must be a UUID"}
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &apperr.NotFoundError{Entity: "order", ID: id}
		}
		return nil, apperr.Storage("get order", err)
	}
	return o, nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func rejectReason(err error) string {
	var (
		customerErr *apperr.CustomerNotFoundError
		productErr  *apperr.ProductNotFoundError
		argErr      *apperr.InvalidArgumentError
	)
	switch {
	case errors.As(err, &customerErr):
		return "customer_not_found"
	case errors.As(err, &productErr):
		return "product_not_found"
	case errors.As(err, &argErr):
		return "invalid_argument"
	default:
		return "storage"
	}
}

package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/backoffice/db"
	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/product"
)

// --- Fakes ---

type fakeCustomers struct {
	mu       sync.Mutex
	byEmail  map[string]customer.Customer
	lookups  []string
	createFn func(name, email string) error
	listErr  error
	nextID   int64
}

func newFakeCustomers(existing ...string) *fakeCustomers {
	f := &fakeCustomers{byEmail: map[string]customer.Customer{}}
	for _, email := range existing {
		f.nextID++
		f.byEmail[email] = customer.Customer{ID: f.nextID, Email: email}
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, name, email, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createFn != nil {
		if err := f.createFn(name, email); err != nil {
			return 0, err
		}
	}
	if _, ok := f.byEmail[email]; ok {
		return 0, &apperr.DuplicateEmailError{Email: email}
	}
	f.nextID++
	f.byEmail[email] = customer.Customer{ID: f.nextID, Name: name, Email: email}
	return f.nextID, nil
}

func (f *fakeCustomers) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, email)
	c, ok := f.byEmail[email]
	if !ok {
		return nil, &apperr.NotFoundError{Entity: "customer", ID: email}
	}
	return &c, nil
}

func (f *fakeCustomers) List(context.Context) ([]customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []customer.Customer
	for _, c := range f.byEmail {
		out = append(out, c)
	}
	return out, nil
}

type fakeProducts struct {
	created []string
	err     func(name string, price decimal.Decimal) error
}

func (f *fakeProducts) Create(_ context.Context, name string, price decimal.Decimal, _ int) (int64, error) {
	if f.err != nil {
		if err := f.err(name, price); err != nil {
			return 0, err
		}
	}
	f.created = append(f.created, name)
	return int64(len(f.created)), nil
}

// --- Tests ---

func TestDecodeCatalog(t *testing.T) {
	c, err := DecodeCatalog([]byte(`{
		"version": 2,
		"customers": [{"name":"Ana Costa","email":"ana@email.com","tags":["vip"]}],
		"products": [
			{"name":"Mouse","price":"80.00","stock":25},
			{"name":"Cabo","price":12.5}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, []CustomerRecord{{Name: "Ana Costa", Email: "ana@email.com"}}, c.Customers)
	require.Len(t, c.Products, 2)
	assert.True(t, decimal.RequireFromString("80").Equal(c.Products[0].Price))
	assert.Equal(t, 25, c.Products[0].Stock)
	assert.True(t, decimal.RequireFromString("12.5").Equal(c.Products[1].Price))
	assert.Zero(t, c.Products[1].Stock)
}

func TestDecodeCatalog_Errors(t *testing.T) {
	for _, doc := range []string{
		``,
		`[]`,
		`{"products":[{"price":"abc"}]}`,
		`{"products":[{"price":null}]}`,
		`{"customers":[{"email":5}]}`,
	} {
		_, err := DecodeCatalog([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestSampleCatalogDecodes(t *testing.T) {
	c, err := DecodeCatalog(db.SampleCatalog)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Customers)
	assert.NotEmpty(t, c.Products)
}

func TestReadCatalogFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(plain, db.SampleCatalog, 0o600))

	gzPath := filepath.Join(dir, "catalog.json.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := pgzip.NewWriter(f)
	_, err = gz.Write(db.SampleCatalog)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	fromPlain, err := ReadCatalogFile(plain)
	require.NoError(t, err)
	fromGz, err := ReadCatalogFile(gzPath)
	require.NoError(t, err)
	assert.Equal(t, fromPlain, fromGz)

	_, err = ReadCatalogFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestImport(t *testing.T) {
	customers := newFakeCustomers("marla@email.com")
	products := &fakeProducts{}

	res, err := New(customers, products).Import(context.Background(), &Catalog{
		Customers: []CustomerRecord{
			{Name: "Ana Costa", Email: "ana@email.com"},
			{Name: "Marla Santos", Email: "marla@email.com"},
			{Name: "Ana Again", Email: "ana@email.com"},
			{Name: "Al", Email: "al@email.com"},
		},
		Products: []ProductRecord{
			{Name: "Mouse", Price: decimal.RequireFromString("80"), Stock: 1},
			{Name: "Free", Price: decimal.Zero},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.CustomersDuplicate)
	assert.Equal(t, 2, res.CustomersCreated)
	assert.Equal(t, 2, res.ProductsCreated)
	assert.Contains(t, customers.lookups, "marla@email.com")
	assert.Contains(t, customers.lookups, "ana@email.com")
}

func TestImport_RejectedRecordsAreCounted(t *testing.T) {
	customers := newFakeCustomers()
	customers.createFn = func(name, _ string) error {
		if len(name) < 3 {
			return &apperr.ValidationError{Entity: "customer", Violations: []string{"name too short"}}
		}
		return nil
	}
	products := &fakeProducts{err: func(_ string, price decimal.Decimal) error {
		if !price.IsPositive() {
			return &apperr.ValidationError{Entity: "product", Violations: []string{"price must be positive"}}
		}
		return nil
	}}

	res, err := New(customers, products).Import(context.Background(), &Catalog{
		Customers: []CustomerRecord{{Name: "Al", Email: "al@email.com"}, {Name: "Bruna", Email: "b@email.com"}},
		Products:  []ProductRecord{{Name: "Free", Price: decimal.Zero}, {Name: "Mouse", Price: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, Result{
		CustomersCreated:  1,
		CustomersRejected: 1,
		ProductsCreated:   1,
		ProductsRejected:  1,
	}, res)
	assert.Empty(t, customers.lookups, "fresh emails never hit the lookup")
}

// catalogRepo is a product.Repository that only records inserts.
type catalogRepo struct {
	mu      sync.Mutex
	created []product.NewProduct
}

func (r *catalogRepo) Create(_ context.Context, p product.NewProduct) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, p)
	return int64(len(r.created)), nil
}

func (r *catalogRepo) List(context.Context) ([]product.Product, error) { return nil, nil }

func (r *catalogRepo) GetByID(context.Context, int64) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (r *catalogRepo) GetByIDs(context.Context, []int64) ([]product.Product, error) { return nil, nil }

func (r *catalogRepo) SetStock(context.Context, int64, int) (int, error) { return 0, product.ErrNotFound }

func TestImport_UnstorableProductsAreRejected(t *testing.T) {
	repo := &catalogRepo{}

	res, err := New(newFakeCustomers(), product.NewService(repo)).Import(context.Background(), &Catalog{
		Products: []ProductRecord{
			{Name: "Sticker", Price: decimal.RequireFromString("0.004")},
			{Name: "Cable", Price: decimal.RequireFromString("80.005")},
			{Name: "Yacht", Price: decimal.RequireFromString("12345678901.00")},
			{Name: "Screws", Price: decimal.RequireFromString("0.10"), Stock: 1 << 31},
			{Name: "Mouse Logitech", Price: decimal.RequireFromString("80.00"), Stock: 25},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Result{ProductsCreated: 1, ProductsRejected: 4}, res)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Mouse Logitech", repo.created[0].Name)
}

func TestImport_StorageFailureAborts(t *testing.T) {
	customers := newFakeCustomers()
	customers.createFn = func(string, string) error {
		return apperr.Storage("create customer", errors.New("connection reset"))
	}

	_, err := New(customers, &fakeProducts{}).Import(context.Background(), &Catalog{
		Customers: []CustomerRecord{{Name: "Ana Costa", Email: "ana@email.com"}},
	})
	var sErr *apperr.StorageError
	require.ErrorAs(t, err, &sErr)
}

func TestImport_ListFailureAborts(t *testing.T) {
	customers := newFakeCustomers()
	customers.listErr = errors.New("db down")

	_, err := New(customers, &fakeProducts{}).Import(context.Background(), &Catalog{})
	require.ErrorContains(t, err, "list existing customers")
}

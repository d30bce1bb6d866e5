//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/backoffice/internal/app"
)

var (
	baseURL    string
	httpClient *http.Client
)

// Response types are defined locally so the suite only sees the wire format.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code       int      `json:"code"`
	Message    string   `json:"message"`
	Violations []string `json:"violations"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type customerResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type customerListResponse struct {
	Customers []customerResponse `json:"customers"`
}

type productResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Stock        int    `json:"stock"`
	ValueInStock string `json:"valueInStock"`
}

type productListResponse struct {
	Products        []productResponse `json:"products"`
	TotalStockValue string            `json:"totalStockValue"`
}

type orderRequest struct {
	CustomerID int64   `json:"customerId"`
	ProductIDs []int64 `json:"productIds"`
}

type orderResponse struct {
	ID         string `json:"id"`
	CustomerID int64  `json:"customerId"`
	Total      string `json:"total"`
	Items      []struct {
		Position  int    `json:"position"`
		ProductID int64  `json:"productId"`
		UnitPrice string `json:"unitPrice"`
	} `json:"items"`
}

type salesResponse struct {
	Rows []struct {
		CustomerID     int64  `json:"customerId"`
		Name           string `json:"name"`
		TotalPurchases string `json:"totalPurchases"`
		Orders         int    `json:"orders"`
	} `json:"rows"`
	GrandTotal string `json:"grandTotal"`
}

type noopTelemetry struct{}

func (noopTelemetry) MeterProvider() metric.MeterProvider { return metricnoop.NewMeterProvider() }
func (noopTelemetry) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "store",
				"POSTGRES_PASSWORD": "store",
				"POSTGRES_DB":       "store",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	host, err := ctr.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	addr, err := freeAddr()
	if err != nil {
		log.Fatalf("pick listen address: %v", err)
	}
	cfg := &app.Config{
		Addr:           addr,
		RequestTimeout: 10 * time.Second,
		MaxBodyBytes:   1 << 20,
		Database: app.DatabaseConfig{
			URL: fmt.Sprintf("postgres://store:store@%s:%s/store?sslmode=disable", host, port.Port()),
		},
		Graceful: app.GracefulConfig{ShutdownTimeout: 5 * time.Second},
	}

	srvCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.Run(srvCtx, zap.NewNop(), noopTelemetry{}, cfg) }()

	baseURL = "http://" + addr
	httpClient = &http.Client{Timeout: 10 * time.Second}
	if err := waitReady(ctx, done); err != nil {
		log.Fatalf("wait for api: %v", err)
	}
	log.Printf("API available at %s", baseURL)

	result := m.Run()

	stop()
	if err := <-done; err != nil {
		log.Printf("api shutdown: %v", err)
	}
	return result
}

func freeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return l.Addr().String(), nil
}

// waitReady polls /readyz until the server reports ready or exits.
func waitReady(ctx context.Context, done <-chan error) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for readiness (last: %s): %w", lastErr, ctx.Err())
		case err := <-done:
			return fmt.Errorf("server exited: %v", err)
		case <-ticker.C:
			resp, err := httpClient.Get(baseURL + "/readyz")
			if err != nil {
				lastErr = err.Error()
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Sprintf("status %d", resp.StatusCode)
		}
	}
}

// HTTP helpers.

func do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	return resp
}

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()
	return do(t, http.MethodGet, path, nil)
}

func doPost(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return do(t, http.MethodPost, path, body)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("expected %d, got %d (%s)", want, resp.StatusCode, e.Message)
	}
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return v
}

// createCustomer registers a customer with a unique email and returns its id.
func createCustomer(t *testing.T, name string) int64 {
	t.Helper()
	email := fmt.Sprintf("%s.%d@email.com", t.Name(), time.Now().UnixNano())
	resp := doPost(t, "/api/customers", map[string]string{"name": name, "email": email})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)
	return decodeJSON[idResponse](t, resp).ID
}

func createProduct(t *testing.T, name, price string, stock int) int64 {
	t.Helper()
	resp := doPost(t, "/api/products", map[string]any{"name": name, "price": price, "stock": stock})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)
	return decodeJSON[idResponse](t, resp).ID
}

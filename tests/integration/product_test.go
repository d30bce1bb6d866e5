//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreateProduct_Validation(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{"name": "Mouse", "price": "0"})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestGetProduct(t *testing.T) {
	id := createProduct(t, "Notebook Dell", "3500", 5)

	resp := doGet(t, fmt.Sprintf("/api/products/%d", id))
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	p := decodeJSON[productResponse](t, resp)
	if p.Price != "3500.00" {
		t.Errorf("price: got %q, want 3500.00", p.Price)
	}
	if p.ValueInStock != "17500.00" {
		t.Errorf("valueInStock: got %q, want 17500.00", p.ValueInStock)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999999")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNotFound)
}

func TestListProducts(t *testing.T) {
	id := createProduct(t, "Mouse Logitech", "80.00", 25)

	resp := doGet(t, "/api/products")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	list := decodeJSON[productListResponse](t, resp)
	found := false
	for _, p := range list.Products {
		found = found || p.ID == id
	}
	if !found {
		t.Errorf("product %d not listed", id)
	}
	if list.TotalStockValue == "" {
		t.Error("totalStockValue missing")
	}
}

func TestAdjustStock(t *testing.T) {
	id := createProduct(t, "Teclado Mecânico", "350.00", 10)

	resp := do(t, http.MethodPut, fmt.Sprintf("/api/products/%d/stock", id), map[string]int{"quantity": 4})
	resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	resp = doGet(t, fmt.Sprintf("/api/products/%d", id))
	defer resp.Body.Close()
	if p := decodeJSON[productResponse](t, resp); p.Stock != 4 {
		t.Errorf("stock: got %d, want 4", p.Stock)
	}

	neg := do(t, http.MethodPut, fmt.Sprintf("/api/products/%d/stock", id), map[string]int{"quantity": -1})
	defer neg.Body.Close()
	expectStatus(t, neg, http.StatusBadRequest)
}

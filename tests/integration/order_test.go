//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestPlaceOrder_EmptyProducts(t *testing.T) {
	customerID := createCustomer(t, "Ana Costa")

	resp := doPost(t, "/api/orders", orderRequest{CustomerID: customerID, ProductIDs: []int64{}})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestPlaceOrder_UnknownCustomer(t *testing.T) {
	productID := createProduct(t, "Mouse Logitech", "80.00", 25)

	resp := doPost(t, "/api/orders", orderRequest{CustomerID: 999999, ProductIDs: []int64{productID}})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusUnprocessableEntity)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	customerID := createCustomer(t, "Ana Costa")
	productID := createProduct(t, "Mouse Logitech", "80.00", 25)

	resp := doPost(t, "/api/orders", orderRequest{CustomerID: customerID, ProductIDs: []int64{productID, 999999}})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusUnprocessableEntity)

	// Nothing is recorded for a rejected order.
	sales := doGet(t, "/api/reports/sales-by-customer")
	defer sales.Body.Close()
	for _, row := range decodeJSON[salesResponse](t, sales).Rows {
		if row.CustomerID == customerID && row.Orders != 0 {
			t.Errorf("rejected order was recorded: %+v", row)
		}
	}
}

func TestPlaceOrder(t *testing.T) {
	customerID := createCustomer(t, "Ana Costa")
	mouse := createProduct(t, "Mouse Logitech", "80.00", 25)
	keyboard := createProduct(t, "Teclado Mecânico", "350.00", 10)

	resp := doPost(t, "/api/orders", orderRequest{CustomerID: customerID, ProductIDs: []int64{mouse, keyboard, mouse}})
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusCreated)

	o := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(o.ID) {
		t.Errorf("order id %q is not a UUID", o.ID)
	}
	if o.Total != "510.00" {
		t.Errorf("total: got %q, want 510.00", o.Total)
	}
	if len(o.Items) != 3 {
		t.Fatalf("items: got %d, want 3", len(o.Items))
	}
	for i, item := range o.Items {
		if item.Position != i+1 {
			t.Errorf("item %d position: got %d", i, item.Position)
		}
	}

	get := doGet(t, "/api/orders/"+o.ID)
	defer get.Body.Close()
	expectStatus(t, get, http.StatusOK)
	if got := decodeJSON[orderResponse](t, get); got.Total != o.Total || len(got.Items) != 3 {
		t.Errorf("stored order differs: %+v", got)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNotFound)
}

func TestSalesByCustomer(t *testing.T) {
	buyer := createCustomer(t, "Zeca Pagodinho")
	idle := createCustomer(t, "Zélia Duncan")
	monitor := createProduct(t, "Monitor LG 24\"", "800.00", 8)

	for range 2 {
		resp := doPost(t, "/api/orders", orderRequest{CustomerID: buyer, ProductIDs: []int64{monitor}})
		resp.Body.Close()
		expectStatus(t, resp, http.StatusCreated)
	}

	resp := doGet(t, "/api/reports/sales-by-customer")
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusOK)

	report := decodeJSON[salesResponse](t, resp)
	rows := map[int64]int{}
	for i, row := range report.Rows {
		rows[row.CustomerID] = i
	}
	bi, ok := rows[buyer]
	if !ok {
		t.Fatalf("buyer %d missing from report", buyer)
	}
	if b := report.Rows[bi]; b.TotalPurchases != "1600.00" || b.Orders != 2 {
		t.Errorf("buyer row: %+v", b)
	}
	ii, ok := rows[idle]
	if !ok {
		t.Fatalf("customer without orders %d missing from report", idle)
	}
	if report.Rows[ii].TotalPurchases != "0.00" {
		t.Errorf("idle total: got %q, want 0.00", report.Rows[ii].TotalPurchases)
	}
	if bi > ii {
		t.Error("customers are not ordered by total purchases")
	}
	if report.GrandTotal == "" {
		t.Error("grandTotal missing")
	}
}

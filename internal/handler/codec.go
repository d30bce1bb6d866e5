package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/domain/report"
)

// errBadBody marks request bodies that are not the expected JSON document.
var errBadBody = errors.New("malformed request body")

// readAll reads a request body. An http.MaxBytesError is kept intact so the
// response can be 413.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Wrap(err, "read body")
		}
		return nil, errors.Wrap(errBadBody, err.Error())
	}
	return data, nil
}

type customerRequest struct {
	Name  string
	Email string
	Phone string
}

func decodeCustomerRequest(data []byte) (req customerRequest, err error) {
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "email":
			req.Email, err = d.Str()
		case "phone":
			req.Phone, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return req, badBody(err)
}

type productRequest struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

func decodeProductRequest(data []byte) (req productRequest, err error) {
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			req.Name, err = d.Str()
		case "price":
			req.Price, err = decodeMoney(d)
		case "stock":
			req.Stock, err = d.Int()
		default:
			return d.Skip()
		}
		return err
	})
	return req, badBody(err)
}

func decodeStockRequest(data []byte) (quantity int, err error) {
	seen := false
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		seen = true
		quantity, err = d.Int()
		return err
	})
	if err == nil && !seen {
		err = errors.New(`missing "quantity"`)
	}
	return quantity, badBody(err)
}

type orderRequest struct {
	CustomerID int64
	ProductIDs []int64
}

func decodeOrderRequest(data []byte) (req orderRequest, err error) {
	err = jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customerId":
			req.CustomerID, err = d.Int64()
			return err
		case "productIds":
			return d.Arr(func(d *jx.Decoder) error {
				id, err := d.Int64()
				req.ProductIDs = append(req.ProductIDs, id)
				return err
			})
		default:
			return d.Skip()
		}
	})
	return req, badBody(err)
}

// decodeMoney accepts a JSON string ("80.00") or number (80) so amounts can
// travel without float rounding.
func decodeMoney(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = string(n)
	default:
		return decimal.Zero, errors.New("amount must be a string or number")
	}
	return decimal.NewFromString(raw)
}

func badBody(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errBadBody, err.Error())
}

// Responses. Money is rendered as a fixed two-decimal string.

func money(e *jx.Encoder, v decimal.Decimal) {
	e.Str(v.StringFixed(2))
}

func timestamp(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func encodeID(e *jx.Encoder, id int64) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
	})
}

func encodeCustomer(e *jx.Encoder, c customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(c.Phone) })
		e.Field("createdAt", func(e *jx.Encoder) { timestamp(e, c.CreatedAt) })
	})
}

func encodeCustomers(e *jx.Encoder, customers []customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("customers", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, c := range customers {
					encodeCustomer(e, c)
				}
			})
		})
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { money(e, p.Price) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("valueInStock", func(e *jx.Encoder) { money(e, p.ValueInStock()) })
		e.Field("createdAt", func(e *jx.Encoder) { timestamp(e, p.CreatedAt) })
	})
}

func encodeProducts(e *jx.Encoder, products []product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range products {
					encodeProduct(e, p)
				}
			})
		})
		e.Field("totalStockValue", func(e *jx.Encoder) { money(e, product.TotalStockValue(products)) })
	})
}

func encodeStock(e *jx.Encoder, id int64, stock int) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(id) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(stock) })
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("customerId", func(e *jx.Encoder) { e.Int64(o.CustomerID) })
		e.Field("total", func(e *jx.Encoder) { money(e, o.Total) })
		e.Field("createdAt", func(e *jx.Encoder) { timestamp(e, o.CreatedAt) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("position", func(e *jx.Encoder) { e.Int(item.Position) })
						e.Field("productId", func(e *jx.Encoder) { e.Int64(item.ProductID) })
						e.Field("unitPrice", func(e *jx.Encoder) { money(e, item.UnitPrice) })
					})
				}
			})
		})
	})
}

func encodeSales(e *jx.Encoder, rows []report.CustomerSales) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("rows", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, row := range rows {
					e.Obj(func(e *jx.Encoder) {
						e.Field("customerId", func(e *jx.Encoder) { e.Int64(row.CustomerID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(row.Name) })
						e.Field("totalPurchases", func(e *jx.Encoder) { money(e, row.TotalPurchases) })
						e.Field("orders", func(e *jx.Encoder) { e.Int(row.Orders) })
					})
				}
			})
		})
		e.Field("grandTotal", func(e *jx.Encoder) { money(e, report.GrandTotal(rows)) })
	})
}

// writeJSON renders encode into w with the given status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

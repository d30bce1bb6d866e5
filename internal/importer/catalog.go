package importer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
)

// Catalog is a seed document:
//
//	{"customers":[{"name","email","phone"}],"products":[{"name","price","stock"}]}
type Catalog struct {
	Customers []CustomerRecord
	Products  []ProductRecord
}

// CustomerRecord is one customer entry of a catalog.
type CustomerRecord struct {
	Name  string
	Email string
	Phone string
}

// ProductRecord is one product entry of a catalog. Price accepts a JSON
// string or number.
type ProductRecord struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// ReadCatalogFile reads a catalog from path. Files ending in .gz are
// decompressed with pgzip.
func ReadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	c, err := DecodeCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return c, nil
}

// DecodeCatalog parses a catalog document. Unknown fields are ignored.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "customers":
			return d.Arr(func(d *jx.Decoder) error {
				rec, err := decodeCustomer(d)
				c.Customers = append(c.Customers, rec)
				return err
			})
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				rec, err := decodeProduct(d)
				c.Products = append(c.Products, rec)
				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return &c, nil
}

func decodeCustomer(d *jx.Decoder) (rec CustomerRecord, err error) {
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			rec.Name, err = d.Str()
		case "email":
			rec.Email, err = d.Str()
		case "phone":
			rec.Phone, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return rec, err
}

func decodeProduct(d *jx.Decoder) (rec ProductRecord, err error) {
	err = d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			rec.Name, err = d.Str()
		case "price":
			rec.Price, err = decodePrice(d)
		case "stock":
			rec.Stock, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return rec, err
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
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
		return decimal.Zero, errors.New("price must be a string or number")
	}
	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse price %q", raw)
	}
	return p, nil
}

// Package validation holds the field-level business rules for customers and
// products. The checks are pure: no storage access, no side effects.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Violation messages reported by the rules below.
const (
	NameRequired     = "name required"
	NameTooShort     = "name too short"
	EmailRequired    = "email required"
	EmailInvalid     = "email invalid"
	PhoneInvalid     = "phone invalid"
	PriceNotPositive = "price must be positive"
	PriceTooPrecise  = "price has more than 2 decimal places"
	PriceTooLarge    = "price too large"
)

const (
	minCustomerNameLen = 3
	minPhoneLen        = 10
	priceScale         = 2
)

// maxPrice is the first value a NUMERIC(12,2) column cannot hold.
var maxPrice = decimal.New(1, 12-priceScale)

// Customer checks a customer's name and email. Every rule is evaluated; an
// empty result means the input is valid.
func Customer(name, email string) []string {
	var violations []string

	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		violations = append(violations, NameRequired)
	case utf8.RuneCountInString(trimmed) < minCustomerNameLen:
		violations = append(violations, NameTooShort)
	}

	switch {
	case strings.TrimSpace(email) == "":
		violations = append(violations, EmailRequired)
	case !strings.Contains(email, "@"):
		violations = append(violations, EmailInvalid)
	}

	return violations
}

// Phone checks an optional phone number: empty is fine, anything shorter than
// ten characters is not.
func Phone(phone string) []string {
	phone = strings.TrimSpace(phone)
	if phone != "" && utf8.RuneCountInString(phone) < minPhoneLen {
		return []string{PhoneInvalid}
	}
	return nil
}

// Product checks a product's name and unit price. A missing price is the zero
// decimal and is reported as not positive. The price must be stored exactly:
// at most two decimal places and ten integer digits.
func Product(name string, price decimal.Decimal) []string {
	var violations []string

	if strings.TrimSpace(name) == "" {
		violations = append(violations, NameRequired)
	}
	switch {
	case !price.IsPositive():
		violations = append(violations, PriceNotPositive)
	case !price.Equal(price.Truncate(priceScale)):
		violations = append(violations, PriceTooPrecise)
	case price.GreaterThanOrEqual(maxPrice):
		violations = append(violations, PriceTooLarge)
	}

	return violations
}

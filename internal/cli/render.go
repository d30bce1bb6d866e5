package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/backoffice/internal/domain/apperr"
	"github.com/xenking/backoffice/internal/domain/customer"
	"github.com/xenking/backoffice/internal/domain/order"
	"github.com/xenking/backoffice/internal/domain/product"
	"github.com/xenking/backoffice/internal/domain/report"
	"github.com/xenking/backoffice/internal/importer"
)

var (
	accent  = lipgloss.Color("#D97706")
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(fg).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(fg).Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	passStyle   = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(faint)
)

// newTable builds a table whose columns listed in numeric are right aligned.
func newTable(headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderCustomers(title string, customers []customer.Customer) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	if len(customers) == 0 {
		b.WriteString(dimStyle.Render("No customers.") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10), c.Name, c.Email, orDash(c.Phone),
		})
	}
	b.WriteString(newTable([]string{"ID", "NAME", "EMAIL", "PHONE"}, rows, 0) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Total: %d customer(s)", len(customers))) + "\n")
	return b.String()
}

func renderProducts(products []product.Product) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Products") + "\n")
	if len(products) == 0 {
		b.WriteString(dimStyle.Render("No products.") + "\n")
		return b.String()
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			money(p.Price),
			strconv.Itoa(p.Stock),
			money(p.ValueInStock()),
		})
	}
	b.WriteString(newTable([]string{"ID", "NAME", "PRICE", "STOCK", "IN STOCK"}, rows, 0, 2, 3, 4) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Total: %d product(s)", len(products))) + "\n")
	b.WriteString(fmt.Sprintf("Total stock value: %s\n",
		passStyle.Render(money(product.TotalStockValue(products)))))
	return b.String()
}

func renderOrder(o *order.Order) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Order "+o.ID) + "\n")
	b.WriteString(fmt.Sprintf("Customer: %d\n", o.CustomerID))
	b.WriteString(fmt.Sprintf("Created:  %s\n", o.CreatedAt.Format("2006-01-02 15:04:05")))
	rows := make([][]string, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, []string{
			strconv.Itoa(it.Position),
			strconv.FormatInt(it.ProductID, 10),
			money(it.UnitPrice),
		})
	}
	b.WriteString(newTable([]string{"#", "PRODUCT", "UNIT PRICE"}, rows, 0, 1, 2) + "\n")
	b.WriteString(fmt.Sprintf("Total: %s\n", passStyle.Render(money(o.Total))))
	return b.String()
}

func renderSales(rows []report.CustomerSales) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sales by customer") + "\n")
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No customers.") + "\n")
		return b.String()
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			strconv.FormatInt(r.CustomerID, 10),
			r.Name,
			strconv.Itoa(r.Orders),
			money(r.TotalPurchases),
		})
	}
	b.WriteString(newTable([]string{"ID", "CUSTOMER", "ORDERS", "TOTAL"}, cells, 0, 2, 3) + "\n")
	b.WriteString(fmt.Sprintf("Grand total: %s\n",
		passStyle.Render(money(report.GrandTotal(rows)))))
	return b.String()
}

func renderImport(res importer.Result) string {
	rows := [][]string{
		{"customers", strconv.Itoa(res.CustomersCreated), strconv.Itoa(res.CustomersDuplicate), strconv.Itoa(res.CustomersRejected)},
		{"products", strconv.Itoa(res.ProductsCreated), "-", strconv.Itoa(res.ProductsRejected)},
	}
	return titleStyle.Render("Catalog import") + "\n" +
		newTable([]string{"", "CREATED", "DUPLICATE", "REJECTED"}, rows, 1, 2, 3) + "\n"
}

func renderSuccess(msg string) string {
	return passStyle.Render("✓") + " " + msg + "\n"
}

// RenderError formats err for the terminal, listing validation violations
// one per line.
func RenderError(err error) string {
	var vErr *apperr.ValidationError
	if errors.As(err, &vErr) {
		var b strings.Builder
		b.WriteString(failStyle.Render("✗") + " invalid " + vErr.Entity + ":\n")
		for _, v := range vErr.Violations {
			b.WriteString("  - " + v + "\n")
		}
		return b.String()
	}
	return failStyle.Render("✗") + " " + err.Error() + "\n"
}

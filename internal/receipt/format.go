package receipt

import (
	"fmt"
	"strings"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
	"github.com/shopspring/decimal"
)

type Formatter struct {
	Currency string
}

// Format renders r with the default currency symbol.
func Format(r Receipt) string {
	return Formatter{Currency: money.DefaultCurrency}.Format(r)
}

func (f Formatter) Format(r Receipt) string {
	var b strings.Builder
	b.WriteString("Receipt:\n")
	if r.Number > 0 {
		fmt.Fprintf(&b, "No. %d\n", r.Number)
	}
	for _, ln := range r.Lines {
		fmt.Fprintf(&b, "%s x%d - %s\n", ln.Name, ln.Quantity, f.amount(ln.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s", f.amount(r.Total))
	fmt.Fprintf(&b, "\nPayment: %s", f.amount(r.Payment))
	fmt.Fprintf(&b, "\nChange: %s", f.amount(r.Change))
	return b.String()
}

func (f Formatter) amount(d decimal.Decimal) string {
	return money.Format(f.Currency, d)
}

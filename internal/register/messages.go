package register

import (
	"github.com/shopspring/decimal"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/money"
)

// Messages shown to the cashier by every interaction layer.
const (
	MsgItemAdded           = "Item added to order."
	MsgSelectItem          = "Please select an item to add."
	MsgInsufficientPayment = "Insufficient payment. Please enter an amount greater than or equal to the total."
	MsgInvalidInput        = "Invalid input. Please enter a valid number."
)

// TotalText is the running total line, e.g. "Total: ₱525.00".
func TotalText(currency string, total decimal.Decimal) string {
	return "Total: " + money.Format(currency, total)
}

package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound        = errors.New("item not in order")
	ErrInsufficientPayment = errors.New("insufficient payment")
)

// InsufficientPaymentError carries both amounts so callers can build their
// own message. It matches ErrInsufficientPayment with errors.Is.
type InsufficientPaymentError struct {
	Total   decimal.Decimal
	Payment decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %s, payment %s", e.Total.StringFixed(2), e.Payment.StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

// Shortfall is how much more the customer has to pay.
func (e *InsufficientPaymentError) Shortfall() decimal.Decimal {
	return e.Total.Sub(e.Payment)
}

// Package money holds the boundary helpers for currency amounts: parsing
// user-entered payment text and rendering amounts for display.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display symbol used by the register.
const DefaultCurrency = "₱"

// ErrInvalidAmount is returned for payment text that is empty, not a plain
// non-negative decimal, or too large.
var ErrInvalidAmount = errors.New("invalid amount")

// Plain digits with an optional fraction: no sign, no exponent. The caps keep
// every accepted amount cheap to compare and render.
var amountPattern = regexp.MustCompile(`^[0-9]{1,12}(\.[0-9]{1,4})?$`)

// Parse converts raw payment text into a decimal amount. Surrounding
// whitespace and a leading currency symbol are ignored; symbol defaults to
// DefaultCurrency when empty.
func Parse(symbol, text string) (decimal.Decimal, error) {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimPrefix(s, symbol))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(text))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(text))
	}
	return d, nil
}

func truncate(s string) string {
	const limit = 32
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Format renders an amount with the given symbol, rounded to two places.
// Rounding happens here only; stored amounts keep full precision.
func Format(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

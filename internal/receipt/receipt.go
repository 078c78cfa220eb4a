// Package receipt defines the immutable record produced by a successful
// checkout and its text rendering.
package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Receipt is a snapshot; nothing in it refers back to the order it came from.
// Number, RegisterID and IssuedAt are zero until a register stamps them.
type Receipt struct {
	Number     int64           `json:"number,omitempty"`
	RegisterID string          `json:"registerId,omitempty"`
	IssuedAt   time.Time       `json:"issuedAt,omitzero"`
	Lines      []Line          `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	Payment    decimal.Decimal `json:"payment"`
	Change     decimal.Decimal `json:"change"`
}

package catalog

import "github.com/shopspring/decimal"

// MenuItem is an immutable catalog entry. Name is unique within a catalog.
type MenuItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

package order

import (
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateEmpty    State = "empty"
	StateBuilding State = "building"
)

// LineItem is one catalog item and its quantity. Quantity is at least 1 for
// as long as the line is part of an order.
type LineItem struct {
	Item     catalog.MenuItem
	Quantity int
}

func (l LineItem) Total() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Line is the read-only view of a LineItem handed to interaction layers.
type Line struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Snapshot struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	State State           `json:"state"`
}

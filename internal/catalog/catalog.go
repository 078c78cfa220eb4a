// Package catalog holds the fixed list of items a register can sell.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownItem   = errors.New("unknown menu item")
	ErrInvalidItem   = errors.New("invalid menu item")
	ErrDuplicateItem = errors.New("duplicate menu item")
)

// Catalog is read-only after construction.
type Catalog struct {
	items  []MenuItem
	byName map[string]int
}

func New(items []MenuItem) (*Catalog, error) {
	c := &Catalog{
		items:  make([]MenuItem, 0, len(items)),
		byName: make(map[string]int, len(items)),
	}
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidItem)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: %s has negative price %s", ErrInvalidItem, name, it.UnitPrice)
		}
		if _, ok := c.byName[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, name)
		}
		c.byName[name] = len(c.items)
		c.items = append(c.items, MenuItem{Name: name, UnitPrice: it.UnitPrice})
	}
	return c, nil
}

// Default returns the coffee bar menu the register ships with.
func Default() *Catalog {
	c, err := New([]MenuItem{
		{Name: "Espresso", UnitPrice: decimal.NewFromInt(150)},
		{Name: "Americano", UnitPrice: decimal.NewFromInt(175)},
		{Name: "Cappuccino", UnitPrice: decimal.NewFromInt(200)},
		{Name: "Latte", UnitPrice: decimal.NewFromInt(225)},
		{Name: "Mocha", UnitPrice: decimal.NewFromInt(250)},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Items returns the menu in display order. The slice is a copy.
func (c *Catalog) Items() []MenuItem {
	out := make([]MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Lookup(name string) (MenuItem, bool) {
	i, ok := c.byName[name]
	if !ok {
		return MenuItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Len() int {
	return len(c.items)
}

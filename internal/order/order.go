// Package order implements the cart of a single register: line items keyed
// by item name, the running total and the checkout transition.
//
// An Order is not safe for concurrent use; see package register.
package order

import (
	"fmt"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
	"github.com/shopspring/decimal"
)

type Order struct {
	lines []LineItem
}

func New() *Order {
	return &Order{}
}

// AddItem bumps the quantity of an existing line with the same name, or
// appends a new line with quantity 1. Lines keep their first-added position.
func (o *Order) AddItem(item catalog.MenuItem) {
	if i := o.find(item.Name); i >= 0 {
		o.lines[i].Quantity++
		return
	}
	o.lines = append(o.lines, LineItem{Item: item, Quantity: 1})
}

func (o *Order) Increment(name string) error {
	i := o.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	o.lines[i].Quantity++
	return nil
}

// Decrement removes the line instead of leaving it at quantity 0.
func (o *Order) Decrement(name string) error {
	i := o.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	if o.lines[i].Quantity <= 1 {
		o.removeAt(i)
		return nil
	}
	o.lines[i].Quantity--
	return nil
}

func (o *Order) Remove(name string) error {
	i := o.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	o.removeAt(i)
	return nil
}

func (o *Order) Clear() {
	o.lines = nil
}

// Total is recomputed from the lines on every call.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ln := range o.lines {
		total = total.Add(ln.Total())
	}
	return total
}

// ValidatePayment reports whether Checkout would accept payment, without
// touching the order.
func (o *Order) ValidatePayment(payment decimal.Decimal) error {
	total := o.Total()
	if payment.LessThan(total) {
		return &InsufficientPaymentError{Total: total, Payment: payment}
	}
	return nil
}

// Checkout either returns a receipt and empties the order, or returns an
// *InsufficientPaymentError and leaves the order as it was.
func (o *Order) Checkout(payment decimal.Decimal) (receipt.Receipt, error) {
	if err := o.ValidatePayment(payment); err != nil {
		return receipt.Receipt{}, err
	}

	total := o.Total()
	r := receipt.Receipt{
		Lines:   make([]receipt.Line, 0, len(o.lines)),
		Total:   total,
		Payment: payment,
		Change:  payment.Sub(total),
	}
	for _, ln := range o.lines {
		r.Lines = append(r.Lines, receipt.Line{
			Name:      ln.Item.Name,
			Quantity:  ln.Quantity,
			UnitPrice: ln.Item.UnitPrice,
			LineTotal: ln.Total(),
		})
	}

	o.Clear()
	return r, nil
}

func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		Lines: make([]Line, 0, len(o.lines)),
		Total: o.Total(),
		State: o.State(),
	}
	for _, ln := range o.lines {
		s.Lines = append(s.Lines, Line{
			Name:      ln.Item.Name,
			UnitPrice: ln.Item.UnitPrice,
			Quantity:  ln.Quantity,
			LineTotal: ln.Total(),
		})
	}
	return s
}

func (o *Order) State() State {
	if len(o.lines) == 0 {
		return StateEmpty
	}
	return StateBuilding
}

func (o *Order) Len() int {
	return len(o.lines)
}

// Quantity returns 0 for names not in the order.
func (o *Order) Quantity(name string) int {
	if i := o.find(name); i >= 0 {
		return o.lines[i].Quantity
	}
	return 0
}

func (o *Order) find(name string) int {
	for i := range o.lines {
		if o.lines[i].Item.Name == name {
			return i
		}
	}
	return -1
}

func (o *Order) removeAt(i int) {
	o.lines = append(o.lines[:i], o.lines[i+1:]...)
}

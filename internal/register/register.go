// Package register serializes access to one order per cash register and
// ties checkout to receipt numbering and publication.
package register

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/events"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/order"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
)

var (
	ErrNoSelection = errors.New("no item selected")
	ErrInvalidID   = errors.New("invalid register id")
)

type Sequencer interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

type Publisher interface {
	PublishReceiptIssued(ctx context.Context, meta events.EventMeta, r receipt.Receipt) error
}

// Deps are shared by every register of a Registry. Publisher may be nil.
type Deps struct {
	Catalog   *catalog.Catalog
	Sequencer Sequencer
	Publisher Publisher
	Logger    *log.Logger
	Now       func() time.Time
}

type Register struct {
	id   string
	deps Deps

	mu        sync.Mutex
	order     *order.Order
	selection string
}

func New(id string, deps Deps) (*Register, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if deps.Sequencer == nil {
		return nil, errors.New("sequencer is required")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Register{id: id, deps: deps, order: order.New()}, nil
}

func (r *Register) ID() string {
	return r.id
}

func (r *Register) Snapshot() order.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Snapshot()
}

// Select remembers a menu item for a later AddSelected.
func (r *Register) Select(name string) error {
	if _, ok := r.deps.Catalog.Lookup(name); !ok {
		return fmt.Errorf("%w: %s", catalog.ErrUnknownItem, name)
	}
	r.mu.Lock()
	r.selection = name
	r.mu.Unlock()
	return nil
}

func (r *Register) Selection() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selection
}

// AddSelected adds the pending selection and resets it.
func (r *Register) AddSelected() (order.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selection == "" {
		return r.order.Snapshot(), ErrNoSelection
	}
	name := r.selection
	r.selection = ""
	item, ok := r.deps.Catalog.Lookup(name)
	if !ok {
		return r.order.Snapshot(), fmt.Errorf("%w: %s", catalog.ErrUnknownItem, name)
	}
	r.order.AddItem(item)
	return r.order.Snapshot(), nil
}

func (r *Register) Add(name string) (order.Snapshot, error) {
	item, ok := r.deps.Catalog.Lookup(name)
	if !ok {
		return r.Snapshot(), fmt.Errorf("%w: %s", catalog.ErrUnknownItem, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order.AddItem(item)
	return r.order.Snapshot(), nil
}

func (r *Register) Increment(name string) (order.Snapshot, error) {
	return r.mutate(func(o *order.Order) error { return o.Increment(name) })
}

func (r *Register) Decrement(name string) (order.Snapshot, error) {
	return r.mutate(func(o *order.Order) error { return o.Decrement(name) })
}

func (r *Register) Remove(name string) (order.Snapshot, error) {
	return r.mutate(func(o *order.Order) error { return o.Remove(name) })
}

// Clear cancels the order and drops any pending selection.
func (r *Register) Clear() order.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order.Clear()
	r.selection = ""
	return r.order.Snapshot()
}

// Checkout settles the order. The payment check, receipt numbering and the
// clear happen under the register lock; on any error the order is untouched.
// Publication happens afterwards and its failure does not undo the sale.
func (r *Register) Checkout(ctx context.Context, payment decimal.Decimal, meta events.EventMeta) (receipt.Receipt, error) {
	rec, err := r.settle(ctx, payment)
	if err != nil {
		return receipt.Receipt{}, err
	}

	if r.deps.Publisher != nil {
		if meta.PartitionKey == "" {
			meta.PartitionKey = r.id
		}
		if err := r.deps.Publisher.PublishReceiptIssued(ctx, meta, rec); err != nil {
			r.deps.Logger.Printf("publish receipt %d for register %s failed: %v", rec.Number, r.id, err)
		}
	}
	return rec, nil
}

func (r *Register) settle(ctx context.Context, payment decimal.Decimal) (receipt.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.order.ValidatePayment(payment); err != nil {
		return receipt.Receipt{}, err
	}

	number, err := r.deps.Sequencer.NextSequence(ctx, r.id)
	if err != nil {
		return receipt.Receipt{}, fmt.Errorf("reserve receipt number: %w", err)
	}

	rec, err := r.order.Checkout(payment)
	if err != nil {
		return receipt.Receipt{}, err
	}
	rec.Number = number
	rec.RegisterID = r.id
	rec.IssuedAt = r.deps.Now().UTC()
	r.selection = ""
	return rec, nil
}

func (r *Register) mutate(fn func(o *order.Order) error) (order.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := fn(r.order); err != nil {
		return r.order.Snapshot(), err
	}
	return r.order.Snapshot(), nil
}

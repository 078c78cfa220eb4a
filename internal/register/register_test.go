package register

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Yorinashi/Kopi-ni-yoshi/internal/catalog"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/events"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/order"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/receipt"
	"github.com/Yorinashi/Kopi-ni-yoshi/internal/sequence"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSequencer struct {
	nextFn func(ctx context.Context, partitionKey string) (int64, error)
}

func (f *fakeSequencer) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	return f.nextFn(ctx, partitionKey)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []receipt.Receipt
	metas     []events.EventMeta
	err       error
}

func (f *fakePublisher) PublishReceiptIssued(_ context.Context, meta events.EventMeta, r receipt.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, r)
	f.metas = append(f.metas, meta)
	return nil
}

var fixedNow = time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)

func newTestRegister(t *testing.T, pub Publisher) *Register {
	t.Helper()
	reg, err := New("front", Deps{
		Catalog:   catalog.Default(),
		Sequencer: sequence.NewMemory(),
		Publisher: pub,
		Logger:    log.New(&bytes.Buffer{}, "", 0),
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return reg
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewValidation(t *testing.T) {
	_, err := New("", Deps{Catalog: catalog.Default(), Sequencer: sequence.NewMemory()})
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = New("front", Deps{Sequencer: sequence.NewMemory()})
	require.Error(t, err)

	_, err = New("front", Deps{Catalog: catalog.Default()})
	require.Error(t, err)
}

func TestAddUnknownItem(t *testing.T) {
	reg := newTestRegister(t, nil)

	snap, err := reg.Add("Frappe")
	require.ErrorIs(t, err, catalog.ErrUnknownItem)
	require.Empty(t, snap.Lines)
	require.Equal(t, order.StateEmpty, snap.State)
}

func TestSelectThenAdd(t *testing.T) {
	reg := newTestRegister(t, nil)

	_, err := reg.AddSelected()
	require.ErrorIs(t, err, ErrNoSelection)

	require.ErrorIs(t, reg.Select("Frappe"), catalog.ErrUnknownItem)
	require.Empty(t, reg.Selection())

	require.NoError(t, reg.Select("Latte"))
	require.Equal(t, "Latte", reg.Selection())

	snap, err := reg.AddSelected()
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	require.Equal(t, "Latte", snap.Lines[0].Name)
	require.Empty(t, reg.Selection())

	_, err = reg.AddSelected()
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestLineOperations(t *testing.T) {
	reg := newTestRegister(t, nil)

	_, err := reg.Add("Espresso")
	require.NoError(t, err)
	snap, err := reg.Increment("Espresso")
	require.NoError(t, err)
	require.Equal(t, 2, snap.Lines[0].Quantity)
	require.True(t, snap.Total.Equal(d(300)))

	snap, err = reg.Decrement("Espresso")
	require.NoError(t, err)
	require.Equal(t, 1, snap.Lines[0].Quantity)

	_, err = reg.Increment("Mocha")
	require.ErrorIs(t, err, order.ErrItemNotFound)

	snap, err = reg.Remove("Espresso")
	require.NoError(t, err)
	require.Empty(t, snap.Lines)

	_, err = reg.Remove("Espresso")
	require.ErrorIs(t, err, order.ErrItemNotFound)
}

func TestClearDropsSelection(t *testing.T) {
	reg := newTestRegister(t, nil)
	_, err := reg.Add("Mocha")
	require.NoError(t, err)
	require.NoError(t, reg.Select("Latte"))

	snap := reg.Clear()
	require.Empty(t, snap.Lines)
	require.Empty(t, reg.Selection())
}

func TestCheckoutNumbersAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	reg := newTestRegister(t, pub)

	_, err := reg.Add("Espresso")
	require.NoError(t, err)
	_, err = reg.Add("Espresso")
	require.NoError(t, err)
	_, err = reg.Add("Latte")
	require.NoError(t, err)

	rec, err := reg.Checkout(context.Background(), d(600), events.EventMeta{CorrelationID: "c-1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Number)
	require.Equal(t, "front", rec.RegisterID)
	require.Equal(t, fixedNow, rec.IssuedAt)
	require.True(t, rec.Total.Equal(d(525)))
	require.True(t, rec.Change.Equal(d(75)))
	require.Empty(t, reg.Snapshot().Lines)

	require.Len(t, pub.published, 1)
	require.Equal(t, "front", pub.metas[0].PartitionKey)
	require.Equal(t, "c-1", pub.metas[0].CorrelationID)

	rec, err = reg.Checkout(context.Background(), d(0), events.EventMeta{})
	require.NoError(t, err)
	require.Equal(t, int64(2), rec.Number)
	require.True(t, rec.Total.IsZero())
}

func TestCheckoutInsufficientPaymentKeepsOrder(t *testing.T) {
	calls := 0
	reg, err := New("front", Deps{
		Catalog: catalog.Default(),
		Sequencer: &fakeSequencer{nextFn: func(context.Context, string) (int64, error) {
			calls++
			return int64(calls), nil
		}},
		Logger: log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)

	_, err = reg.Add("Mocha")
	require.NoError(t, err)
	before := reg.Snapshot()

	_, err = reg.Checkout(context.Background(), d(100), events.EventMeta{})
	require.ErrorIs(t, err, order.ErrInsufficientPayment)

	var insufficient *order.InsufficientPaymentError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Total.Equal(d(250)))
	assert.True(t, insufficient.Payment.Equal(d(100)))

	assert.Equal(t, before, reg.Snapshot())
	assert.Zero(t, calls, "no receipt number is reserved for a rejected payment")
}

func TestCheckoutSequencerFailureKeepsOrder(t *testing.T) {
	reg, err := New("front", Deps{
		Catalog: catalog.Default(),
		Sequencer: &fakeSequencer{nextFn: func(context.Context, string) (int64, error) {
			return 0, errors.New("db down")
		}},
	})
	require.NoError(t, err)

	_, err = reg.Add("Latte")
	require.NoError(t, err)

	_, err = reg.Checkout(context.Background(), d(500), events.EventMeta{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "reserve receipt number")
	require.Len(t, reg.Snapshot().Lines, 1)
}

func TestCheckoutPublishFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	reg, err := New("front", Deps{
		Catalog:   catalog.Default(),
		Sequencer: sequence.NewMemory(),
		Publisher: &fakePublisher{err: errors.New("broker unavailable")},
		Logger:    log.New(&logs, "", 0),
	})
	require.NoError(t, err)

	_, err = reg.Add("Americano")
	require.NoError(t, err)

	rec, err := reg.Checkout(context.Background(), d(200), events.EventMeta{})
	require.NoError(t, err)
	require.True(t, rec.Change.Equal(d(25)))
	require.Contains(t, logs.String(), "broker unavailable")
	require.Empty(t, reg.Snapshot().Lines)
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	reg := newTestRegister(t, nil)

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, _ = reg.Add("Espresso")
				_ = reg.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := reg.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.Equal(t, workers*perWorker, snap.Lines[0].Quantity)
	require.True(t, snap.Total.Equal(d(150*workers*perWorker)))
}

func TestConcurrentCheckoutsGetDistinctNumbers(t *testing.T) {
	pub := &fakePublisher{}
	reg := newTestRegister(t, pub)

	const n = 20
	numbers := make(chan int64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := reg.Checkout(context.Background(), d(0), events.EventMeta{})
			if err == nil {
				numbers <- rec.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for num := range numbers {
		require.False(t, seen[num], "duplicate receipt number %d", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	require.Len(t, pub.published, n)
}

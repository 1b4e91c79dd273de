package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, f *fixture, lines ...CartLine) *order.Order {
	t.Helper()
	o, _, err := f.assembler(t).Create(context.Background(), checkout(lines...))
	require.NoError(t, err)
	return o
}

func TestTransition_CancelReleasesStock(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	o := placeOrder(t, f, CartLine{ProductID: "shirt1", Size: "M", Quantity: 2})
	require.Equal(t, 3, f.stock(t, "shirt1", "M"))

	res, err := m.Transition(context.Background(), o.ID, order.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, order.StatusNew, res.From)
	assert.Equal(t, order.StatusCancelled, res.Order.Status)
	assert.True(t, res.StockReleased)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))

	_, err = m.Transition(context.Background(), o.ID, order.StatusCancelled)
	assert.True(t, errors.Is(err, fault.ErrInvalidTransition))
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
}

func TestTransition_ConcurrentCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	o := placeOrder(t, f, CartLine{ProductID: "shirt1", Size: "L", Quantity: 2})

	var wg sync.WaitGroup
	var won atomic.Int32
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Transition(context.Background(), o.ID, order.StatusCancelled)
			if err == nil {
				won.Add(1)
				return
			}
			assert.True(t,
				errors.Is(err, fault.ErrConflict) || errors.Is(err, fault.ErrInvalidTransition),
				"got %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, 2, f.stock(t, "shirt1", "L"))
}

func TestTransition_Rules(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	ctx := context.Background()
	o := placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})

	// Fulfilment steps may be skipped but never reversed.
	res, err := m.Transition(ctx, o.ID, order.StatusAssembly)
	require.NoError(t, err)
	assert.False(t, res.StockReleased)

	_, err = m.Transition(ctx, o.ID, order.StatusPaid)
	var fe *fault.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fault.CodeInvalidTransition, fe.Code)
	assert.Equal(t, "assembly", fe.From)
	assert.Equal(t, "paid", fe.To)

	_, err = m.Transition(ctx, o.ID, "lost")
	assert.True(t, errors.Is(err, fault.ErrValidation))

	_, err = m.Transition(ctx, "missing", order.StatusPaid)
	assert.True(t, errors.Is(err, fault.ErrNotFound))

	_, err = m.Transition(ctx, o.ID, order.StatusCompleted)
	require.NoError(t, err)
	_, err = m.Transition(ctx, o.ID, order.StatusCancelled)
	assert.True(t, errors.Is(err, fault.ErrInvalidTransition))
	assert.Equal(t, 9, f.stock(t, "cap1", "OS"))
}

func TestSetTracking(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	ctx := context.Background()
	o := placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})

	got, err := m.SetTracking(ctx, o.ID, " TRK-1 ")
	require.NoError(t, err)
	require.NotNil(t, got.TrackingNumber)
	assert.Equal(t, "TRK-1", *got.TrackingNumber)
	assert.Equal(t, o.TotalPrice, got.TotalPrice)

	got, err = m.SetTracking(ctx, o.ID, "")
	require.NoError(t, err)
	assert.Nil(t, got.TrackingNumber)

	_, err = m.SetTracking(ctx, o.ID, strings.Repeat("x", 65))
	assert.True(t, errors.Is(err, fault.ErrValidation))

	_, err = m.SetTracking(ctx, "missing", "TRK")
	assert.True(t, errors.Is(err, fault.ErrNotFound))

	_, err = m.Transition(ctx, o.ID, order.StatusCancelled)
	require.NoError(t, err)
	_, err = m.SetTracking(ctx, o.ID, "TRK-2")
	assert.True(t, errors.Is(err, fault.ErrConflict))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	ctx := context.Background()

	open := placeOrder(t, f, CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	released, err := m.Delete(ctx, open.ID)
	require.NoError(t, err)
	assert.True(t, released)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))

	done := placeOrder(t, f, CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	_, err = m.Transition(ctx, done.ID, order.StatusCompleted)
	require.NoError(t, err)
	released, err = m.Delete(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, released)
	assert.Equal(t, 4, f.stock(t, "shirt1", "M"))

	_, err = m.Delete(ctx, done.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
	assert.Zero(t, f.orderCount(t))
}

func TestDelete_RacingCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)

	for i := 0; i < 5; i++ {
		o := placeOrder(t, f, CartLine{ProductID: "shirt1", Size: "L", Quantity: 2})
		require.Equal(t, 0, f.stock(t, "shirt1", "L"))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.Transition(context.Background(), o.ID, order.StatusCancelled)
			if err != nil {
				assert.True(t,
					errors.Is(err, fault.ErrNotFound) || errors.Is(err, fault.ErrConflict),
					"got %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := m.Delete(context.Background(), o.ID)
			if err != nil {
				assert.True(t, errors.Is(err, fault.ErrConflict), "got %v", err)
			}
		}()
		wg.Wait()

		assert.Equal(t, 2, f.stock(t, "shirt1", "L"), "round %d", i)
		_, _ = m.Delete(context.Background(), o.ID)
	}
}

func TestRepository_DeleteInStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})

	moved, err := f.repo.UpdateStatus(ctx, o.ID, order.StatusNew, order.StatusCancelled)
	require.NoError(t, err)
	require.True(t, moved)

	deleted, err := f.repo.DeleteInStatus(ctx, o.ID, order.StatusNew)
	require.NoError(t, err)
	assert.False(t, deleted, "a stale status must not delete")
	assert.Equal(t, int64(1), f.orderCount(t))

	deleted, err = f.repo.DeleteInStatus(ctx, o.ID, order.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, f.orderCount(t))
}

func TestListAndLookup(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.repo, f.ledger, f.logger)
	ctx := context.Background()

	first := placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})
	placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})
	_, err := m.Transition(ctx, first.ID, order.StatusPaid)
	require.NoError(t, err)

	all, total, err := m.List(ctx, ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	paid, total, err := m.List(ctx, ListRequest{Status: order.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, first.ID, paid[0].ID)

	mine, _, err := m.List(ctx, ListRequest{CustomerID: "ann@example.com", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, _, err = m.List(ctx, ListRequest{Status: "lost"})
	assert.True(t, errors.Is(err, fault.ErrValidation))
	_, _, err = m.List(ctx, ListRequest{Offset: -1})
	assert.True(t, errors.Is(err, fault.ErrValidation))

	got, err := m.GetByRef(ctx, " "+strings.ToLower(first.Ref)+" ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRepository_SnapshotIsImmutable(t *testing.T) {
	f := newFixture(t)
	o := placeOrder(t, f, CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})

	err := f.db.Model(o).Updates(map[string]any{"total_price": 1}).Error
	assert.True(t, errors.Is(err, order.ErrImmutable))
}

package order

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/go-monolith/mono/pkg/types"
)

// Manager runs the back-office operations on existing orders.
type Manager struct {
	repo   *Repository
	stock  StockLedger
	logger types.Logger
}

// NewManager creates an order manager.
func NewManager(repo *Repository, stock StockLedger, logger types.Logger) *Manager {
	return &Manager{repo: repo, stock: stock, logger: logger}
}

// Get returns one order by id.
func (m *Manager) Get(ctx context.Context, id string) (*order.Order, error) {
	return m.repo.FindByID(ctx, id)
}

// GetByRef returns one order by public reference.
func (m *Manager) GetByRef(ctx context.Context, ref string) (*order.Order, error) {
	return m.repo.FindByRef(ctx, strings.ToUpper(strings.TrimSpace(ref)))
}

// List returns a page of orders.
func (m *Manager) List(ctx context.Context, req ListRequest) ([]order.Order, int64, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, 0, fault.Validation("unknown status %q", req.Status)
	}
	if req.Limit < 0 || req.Offset < 0 {
		return nil, 0, fault.Validation("limit and offset must not be negative")
	}
	return m.repo.List(ctx, req)
}

// Transition moves an order to a new status. Cancelling releases the
// order's stock. The update is conditional on the status that was read, so
// two concurrent cancellations release stock once.
func (m *Manager) Transition(ctx context.Context, id string, to order.Status) (*TransitionResponse, error) {
	if !to.Valid() {
		return nil, fault.Validation("unknown status %q", to)
	}

	o, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if !from.CanTransitionTo(to) {
		return nil, fault.InvalidTransition(string(from), string(to))
	}

	moved, err := m.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fault.Conflict("order %s changed status concurrently, reload and retry", o.Ref)
	}
	o.Status = to
	o.UpdatedAt = time.Now()

	resp := &TransitionResponse{Order: o, From: from}
	if to == order.StatusCancelled && from.HoldsStock() {
		resp.StockReleased = m.release(ctx, o)
	}
	return resp, nil
}

// SetTracking stores or clears the tracking number.
func (m *Manager) SetTracking(ctx context.Context, id, trackingNumber string) (*order.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if len(trackingNumber) > 64 {
		return nil, fault.Validation("tracking number must be at most 64 characters")
	}
	var tracking *string
	if trackingNumber != "" {
		tracking = &trackingNumber
	}

	ok, err := m.repo.SetTracking(ctx, id, tracking)
	if err != nil {
		return nil, err
	}
	if !ok {
		o, err := m.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fault.Conflict("order %s is %s, tracking cannot be changed", o.Ref, o.Status)
	}
	return m.repo.FindByID(ctx, id)
}

// Delete removes an order record. Stock held by an open order is returned.
// The delete is conditional on the status that was read, so a concurrent
// cancellation and delete release stock once.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	o, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	deleted, err := m.repo.DeleteInStatus(ctx, id, o.Status)
	if err != nil {
		return false, err
	}
	if !deleted {
		if _, err := m.repo.FindByID(ctx, id); err != nil {
			return false, err
		}
		return false, fault.Conflict("order %s changed status concurrently, reload and retry", o.Ref)
	}
	if o.Status.Terminal() {
		return false, nil
	}
	return m.release(ctx, o), nil
}

func (m *Manager) release(ctx context.Context, o *order.Order) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultCompensateTimeout)
	defer cancel()
	return releaseItems(ctx, m.stock, m.logger, o.ID, o.Items)
}

package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/database"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"gorm.io/gorm"
)

// errDuplicate is returned by Create when the idempotency key or reference
// is already taken.
var errDuplicate = errors.New("order already exists")

// Store is the persistence the assembler needs.
type Store interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id string) (*order.Order, error)
	FindByIdempotencyKey(ctx context.Context, customerID, key string) (*order.Order, error)
	Delete(ctx context.Context, id string) error
}

// Repository provides access to order storage.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return errDuplicate
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByID retrieves an order by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByRef retrieves an order by its public reference.
func (r *Repository) FindByRef(ctx context.Context, ref string) (*order.Order, error) {
	return r.findOne(ctx, "ref = ?", ref)
}

// FindByIdempotencyKey returns the customer's order created with key, or
// nil. Keys are scoped per customer.
func (r *Repository) FindByIdempotencyKey(ctx context.Context, customerID, key string) (*order.Order, error) {
	o, err := r.findOne(ctx, "customer_id = ? AND idempotency_key = ?", customerID, key)
	if errors.Is(err, fault.ErrNotFound) {
		return nil, nil
	}
	return o, err
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Where(query, args...).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("order", fmt.Sprint(args[len(args)-1]))
		}
		return nil, fault.Unavailable("order", fmt.Errorf("failed to find order: %w", err))
	}
	return &o, nil
}

// List returns a page of orders, newest first, and the total match count.
func (r *Repository) List(ctx context.Context, req ListRequest) ([]order.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&order.Order{})
	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}
	if req.CustomerID != "" {
		q = q.Where("customer_id = ?", req.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fault.Unavailable("order", fmt.Errorf("failed to count orders: %w", err))
	}

	q = q.Order("created_at DESC, id")
	if req.Limit > 0 {
		q = q.Limit(req.Limit)
	}
	if req.Offset > 0 {
		q = q.Offset(req.Offset)
	}

	orders := []order.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, fault.Unavailable("order", fmt.Errorf("failed to list orders: %w", err))
	}
	return orders, total, nil
}

// UpdateStatus moves an order from one status to another. It reports false
// when the order was no longer in from.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to order.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if err := result.Error; err != nil {
		return false, fault.Unavailable("order", fmt.Errorf("failed to update status: %w", err))
	}
	return result.RowsAffected == 1, nil
}

// SetTracking stores the tracking number on an order that is not cancelled.
// It reports false when no such order exists.
func (r *Repository) SetTracking(ctx context.Context, id string, tracking *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ? AND status <> ?", id, order.StatusCancelled).
		Updates(map[string]any{"tracking_number": tracking, "updated_at": time.Now()})
	if err := result.Error; err != nil {
		return false, fault.Unavailable("order", fmt.Errorf("failed to set tracking number: %w", err))
	}
	return result.RowsAffected == 1, nil
}

// DeleteInStatus removes an order only while it is still in status. It
// reports false when the order moved on or is gone.
func (r *Repository) DeleteInStatus(ctx context.Context, id string, status order.Status) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "id = ? AND status = ?", id, status)
	if err := result.Error; err != nil {
		return false, fault.Unavailable("order", fmt.Errorf("failed to delete order: %w", err))
	}
	return result.RowsAffected == 1, nil
}

// Delete removes an order record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fault.Unavailable("order", fmt.Errorf("failed to delete order: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("order", id)
	}
	return nil
}

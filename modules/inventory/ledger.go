package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stockCeiling is the level above which a release is logged as suspicious.
const stockCeiling = 1_000_000

// Ledger is the authority for sellable quantity per (product, size).
// Every mutation is a single conditional statement.
type Ledger struct {
	db     *gorm.DB
	logger types.Logger
}

// NewLedger creates a ledger over the product_variants table.
func NewLedger(db *gorm.DB, logger types.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// GetStock returns the current stock. A missing variant is NotFound and
// callers treat it as zero.
func (l *Ledger) GetStock(ctx context.Context, productID, size string) (int, error) {
	var v catalog.Variant
	err := l.db.WithContext(ctx).
		Select("stock").
		Where("product_id = ? AND size = ?", productID, size).
		Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fault.VariantNotFound(productID, size)
		}
		return 0, fault.Unavailable("inventory", fmt.Errorf("failed to read stock: %w", err))
	}
	return v.Stock, nil
}

// Reserve decrements stock by quantity if at least that much is available.
// It returns the stock left after the reservation, or -1 when the follow-up
// read fails.
func (l *Ledger) Reserve(ctx context.Context, productID, size string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fault.Validation("quantity must be positive, got %d", quantity)
	}

	result := l.db.WithContext(ctx).
		Model(&catalog.Variant{}).
		Where("product_id = ? AND size = ? AND stock >= ?", productID, size, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if err := result.Error; err != nil {
		return 0, fault.Unavailable("inventory", fmt.Errorf("failed to reserve stock: %w", err))
	}

	if result.RowsAffected == 0 {
		available, err := l.GetStock(ctx, productID, size)
		if err != nil && !errors.Is(err, fault.ErrNotFound) {
			return 0, err
		}
		return 0, fault.InsufficientStock(productID, size, quantity, available)
	}

	remaining, err := l.GetStock(ctx, productID, size)
	if err != nil {
		// The reservation landed; the follow-up read only feeds notifications.
		l.logger.Warn("Failed to read stock after reservation",
			"product_id", productID, "size", size, "error", err)
		return -1, nil
	}
	return remaining, nil
}

// Release returns quantity to stock.
func (l *Ledger) Release(ctx context.Context, productID, size string, quantity int) error {
	if quantity <= 0 {
		return fault.Validation("quantity must be positive, got %d", quantity)
	}

	result := l.db.WithContext(ctx).
		Model(&catalog.Variant{}).
		Where("product_id = ? AND size = ?", productID, size).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now(),
		})
	if err := result.Error; err != nil {
		return fault.Unavailable("inventory", fmt.Errorf("failed to release stock: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.VariantNotFound(productID, size)
	}

	if stock, err := l.GetStock(ctx, productID, size); err == nil && stock > stockCeiling {
		l.logger.Warn("Stock above sanity ceiling after release",
			"product_id", productID, "size", size, "stock", stock, "released", quantity)
	}
	return nil
}

// SetStock creates or overwrites a variant's stock level.
func (l *Ledger) SetStock(ctx context.Context, productID, size string, stock int) (*catalog.Variant, error) {
	if productID == "" || size == "" {
		return nil, fault.Validation("product_id and size are required")
	}
	if stock < 0 {
		return nil, fault.Validation("stock must not be negative, got %d", stock)
	}

	v := &catalog.Variant{ProductID: productID, Size: size, Stock: stock, UpdatedAt: time.Now()}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "size"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock", "updated_at"}),
	}).Create(v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fault.NotFound("product", productID)
		}
		return nil, fault.Unavailable("inventory", fmt.Errorf("failed to set stock: %w", err))
	}
	return v, nil
}

// ListVariants returns all variants of a product ordered by size.
func (l *Ledger) ListVariants(ctx context.Context, productID string) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	if err := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("size").
		Find(&variants).Error; err != nil {
		return nil, fault.Unavailable("inventory", fmt.Errorf("failed to list variants: %w", err))
	}
	return variants, nil
}

// DeleteVariant removes a size from a product.
func (l *Ledger) DeleteVariant(ctx context.Context, productID, size string) error {
	result := l.db.WithContext(ctx).Delete(&catalog.Variant{}, "product_id = ? AND size = ?", productID, size)
	if err := result.Error; err != nil {
		return fault.Unavailable("inventory", fmt.Errorf("failed to delete variant: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.VariantNotFound(productID, size)
	}
	return nil
}

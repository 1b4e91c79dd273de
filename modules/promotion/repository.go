package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/database"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/promo"
	"gorm.io/gorm"
)

// Repository provides access to promo code storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new promo code repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCode retrieves a promo code by its canonical code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*promo.PromoCode, error) {
	var p promo.PromoCode
	if err := r.db.WithContext(ctx).First(&p, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.PromoNotFound(code)
		}
		return nil, fault.Unavailable("promotion", fmt.Errorf("failed to find promo code: %w", err))
	}
	return &p, nil
}

// Create saves a new promo code.
func (r *Repository) Create(ctx context.Context, p *promo.PromoCode) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fault.Conflict("promo code %s already exists", p.Code)
		}
		return fault.Unavailable("promotion", fmt.Errorf("failed to create promo code: %w", err))
	}
	return nil
}

// Update writes the given columns of a promo code.
func (r *Repository) Update(ctx context.Context, code string, columns map[string]any) error {
	columns["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&promo.PromoCode{}).Where("code = ?", code).Updates(columns)
	if err := result.Error; err != nil {
		return fault.Unavailable("promotion", fmt.Errorf("failed to update promo code: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.PromoNotFound(code)
	}
	return nil
}

// List returns promo codes ordered by code.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]promo.PromoCode, error) {
	q := r.db.WithContext(ctx).Order("code")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var codes []promo.PromoCode
	if err := q.Find(&codes).Error; err != nil {
		return nil, fault.Unavailable("promotion", fmt.Errorf("failed to list promo codes: %w", err))
	}
	return codes, nil
}

// Redeem increments usage_count by one if the code is active and below its
// cap. The re-check and increment are one statement, so two checkouts cannot
// both take the last redemption of a capped code.
func (r *Repository) Redeem(ctx context.Context, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&promo.PromoCode{}).
		Where("code = ? AND is_active = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", code, true).
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now(),
		})
	if err := result.Error; err != nil {
		return false, fault.Unavailable("promotion", fmt.Errorf("failed to redeem promo code: %w", err))
	}
	return result.RowsAffected == 1, nil
}

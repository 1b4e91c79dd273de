package promotion

import (
	"context"
	"time"

	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/promo"
)

// Admin manages promo codes for the back-office.
type Admin struct {
	repo *Repository
}

// NewAdmin creates a promo code manager.
func NewAdmin(repo *Repository) *Admin {
	return &Admin{repo: repo}
}

// Create validates and stores a new promo code.
func (a *Admin) Create(ctx context.Context, req CreateRequest) (*promo.PromoCode, error) {
	if req.TargetAudience == "" {
		req.TargetAudience = promo.AudienceAll
	}
	now := time.Now()
	p := &promo.PromoCode{
		Code:           promo.Normalize(req.Code),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		IsActive:       req.IsActive,
		UsageLimit:     req.UsageLimit,
		MinOrderAmount: req.MinOrderAmount,
		TargetAudience: req.TargetAudience,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := a.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of req. usage_count is never writable.
func (a *Admin) Update(ctx context.Context, req UpdateRequest) (*promo.PromoCode, error) {
	code := promo.Normalize(req.Code)
	p, err := a.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if req.DiscountValue != nil {
		p.DiscountValue = *req.DiscountValue
		columns["discount_value"] = p.DiscountValue
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
		columns["is_active"] = p.IsActive
	}
	if req.ClearUsageLimit {
		p.UsageLimit = nil
		columns["usage_limit"] = nil
	} else if req.UsageLimit != nil {
		p.UsageLimit = req.UsageLimit
		columns["usage_limit"] = *req.UsageLimit
	}
	if req.MinOrderAmount != nil {
		p.MinOrderAmount = *req.MinOrderAmount
		columns["min_order_amount"] = p.MinOrderAmount
	}
	if req.TargetAudience != nil {
		p.TargetAudience = *req.TargetAudience
		columns["target_audience"] = p.TargetAudience
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return p, nil
	}
	if err := a.repo.Update(ctx, code, columns); err != nil {
		return nil, err
	}
	return a.repo.FindByCode(ctx, code)
}

// Get returns one promo code.
func (a *Admin) Get(ctx context.Context, code string) (*promo.PromoCode, error) {
	return a.repo.FindByCode(ctx, promo.Normalize(code))
}

// List returns all promo codes.
func (a *Admin) List(ctx context.Context, activeOnly bool) ([]promo.PromoCode, error) {
	return a.repo.List(ctx, activeOnly)
}

func validate(p *promo.PromoCode) error {
	if !promo.ValidCode(p.Code) {
		return fault.Validation("promo code must be 3-32 characters of A-Z, 0-9, '-' or '_'")
	}
	switch p.DiscountType {
	case promo.DiscountPercent:
		if p.DiscountValue <= 0 || p.DiscountValue > 100 {
			return fault.Validation("percent discount must be between 1 and 100, got %d", p.DiscountValue)
		}
	case promo.DiscountFixed:
		if p.DiscountValue <= 0 {
			return fault.Validation("fixed discount must be positive, got %d", p.DiscountValue)
		}
	default:
		return fault.Validation("discount_type must be percent or fixed, got %q", p.DiscountType)
	}
	if p.UsageLimit != nil && *p.UsageLimit <= 0 {
		return fault.Validation("usage_limit must be positive when set")
	}
	if p.MinOrderAmount < 0 {
		return fault.Validation("min_order_amount must not be negative")
	}
	if !p.TargetAudience.Valid() {
		return fault.Validation("target_audience must be all, vip_only or new_users, got %q", p.TargetAudience)
	}
	return nil
}

package promotion

import (
	"context"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/promo"
)

// Evaluation is a successful promo evaluation.
type Evaluation struct {
	Code     string          `json:"code"`
	Discount int64           `json:"discount"`
	Promo    promo.PromoCode `json:"promo"`
}

// Store is the persistence the evaluator needs.
type Store interface {
	FindByCode(ctx context.Context, code string) (*promo.PromoCode, error)
	Redeem(ctx context.Context, code string) (bool, error)
}

// Evaluator decides whether a promo code applies and what it is worth.
type Evaluator struct {
	store Store
}

// NewEvaluator creates an evaluator over store.
func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate checks code against subtotal and segment. Checks short-circuit in
// order: existence, active flag, usage cap, minimum amount, audience.
// It never changes usage_count.
func (e *Evaluator) Evaluate(ctx context.Context, code string, subtotal int64, segment customer.Segment) (*Evaluation, error) {
	code = promo.Normalize(code)
	if code == "" {
		return nil, fault.Validation("promo code is required")
	}

	p, err := e.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := check(p, subtotal, segment); err != nil {
		return nil, err
	}

	return &Evaluation{
		Code:     p.Code,
		Discount: p.Discount(subtotal),
		Promo:    *p,
	}, nil
}

func check(p *promo.PromoCode, subtotal int64, segment customer.Segment) error {
	if !p.IsActive {
		return fault.PromoInactive(p.Code)
	}
	if p.Exhausted() {
		return fault.UsageLimitReached(p.Code)
	}
	if subtotal < p.MinOrderAmount {
		return fault.MinimumNotMet(p.Code, p.MinOrderAmount-subtotal)
	}
	switch p.TargetAudience {
	case promo.AudienceNewUsers:
		if segment != customer.SegmentNew {
			return fault.AudienceMismatch(p.Code, "new")
		}
	case promo.AudienceVIPOnly:
		if segment != customer.SegmentWhale {
			return fault.AudienceMismatch(p.Code, "VIP")
		}
	}
	return nil
}

// Redeem counts one use of code. When the conditional increment is refused
// the code is reloaded to report why.
func (e *Evaluator) Redeem(ctx context.Context, code string) error {
	code = promo.Normalize(code)
	ok, err := e.store.Redeem(ctx, code)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	p, err := e.store.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return fault.PromoInactive(p.Code)
	}
	return fault.UsageLimitReached(p.Code)
}

package promotion

import (
	"context"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/promo"
)

// Service names registered under services.promotion.*.
const (
	ServiceEvaluate = "evaluate"
	ServiceRedeem   = "redeem"
	ServiceCreate   = "create"
	ServiceUpdate   = "update"
	ServiceGet      = "get"
	ServiceList     = "list"
)

// EvaluateRequest is the request for evaluate.
type EvaluateRequest struct {
	Code     string           `json:"code"`
	Subtotal int64            `json:"subtotal"`
	Segment  customer.Segment `json:"segment"`
}

// EvaluateResponse is the response for evaluate.
type EvaluateResponse struct {
	fault.Reply
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// CodeRequest addresses one promo code.
type CodeRequest struct {
	Code string `json:"code"`
}

// AckResponse is the response for operations that return no data.
type AckResponse struct {
	fault.Reply
	OK bool `json:"ok"`
}

// CreateRequest is the request for create.
type CreateRequest struct {
	Code           string             `json:"code"`
	DiscountType   promo.DiscountType `json:"discount_type"`
	DiscountValue  int64              `json:"discount_value"`
	IsActive       bool               `json:"is_active"`
	UsageLimit     *int               `json:"usage_limit,omitempty"`
	MinOrderAmount int64              `json:"min_order_amount"`
	TargetAudience promo.Audience     `json:"target_audience"`
}

// UpdateRequest is the request for update. Nil fields are left unchanged.
type UpdateRequest struct {
	Code            string          `json:"code"`
	DiscountValue   *int64          `json:"discount_value,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
	UsageLimit      *int            `json:"usage_limit,omitempty"`
	ClearUsageLimit bool            `json:"clear_usage_limit,omitempty"`
	MinOrderAmount  *int64          `json:"min_order_amount,omitempty"`
	TargetAudience  *promo.Audience `json:"target_audience,omitempty"`
}

// PromoResponse is the response for create, update and get.
type PromoResponse struct {
	fault.Reply
	Promo *promo.PromoCode `json:"promo,omitempty"`
}

// ListRequest is the request for list.
type ListRequest struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

// ListResponse is the response for list.
type ListResponse struct {
	fault.Reply
	Promos []promo.PromoCode `json:"promos"`
	Total  int               `json:"total"`
}

// PromotionPort is the contract other modules use for promo codes.
type PromotionPort interface {
	Evaluate(ctx context.Context, code string, subtotal int64, segment customer.Segment) (*Evaluation, error)
	Redeem(ctx context.Context, code string) error
	Create(ctx context.Context, req *CreateRequest) (*promo.PromoCode, error)
	Update(ctx context.Context, req *UpdateRequest) (*promo.PromoCode, error)
	Get(ctx context.Context, code string) (*promo.PromoCode, error)
	List(ctx context.Context, activeOnly bool) ([]promo.PromoCode, error)
}

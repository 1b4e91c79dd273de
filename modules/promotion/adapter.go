package promotion

import (
	"context"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/promo"
	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

// promotionAdapter implements PromotionPort over the promotion module's
// ServiceContainer.
type promotionAdapter struct {
	container mono.ServiceContainer
}

// NewPromotionAdapter creates a new adapter for promotion services.
func NewPromotionAdapter(container mono.ServiceContainer) PromotionPort {
	if container == nil {
		panic("promotion adapter requires non-nil ServiceContainer")
	}
	return &promotionAdapter{container: container}
}

func (a *promotionAdapter) Evaluate(ctx context.Context, code string, subtotal int64, segment customer.Segment) (*Evaluation, error) {
	resp, err := rpc.Call[EvaluateRequest, EvaluateResponse](ctx, a.container, ServiceEvaluate,
		&EvaluateRequest{Code: code, Subtotal: subtotal, Segment: segment})
	if err != nil {
		return nil, err
	}
	return resp.Evaluation, nil
}

func (a *promotionAdapter) Redeem(ctx context.Context, code string) error {
	_, err := rpc.Call[CodeRequest, AckResponse](ctx, a.container, ServiceRedeem, &CodeRequest{Code: code})
	return err
}

func (a *promotionAdapter) Create(ctx context.Context, req *CreateRequest) (*promo.PromoCode, error) {
	resp, err := rpc.Call[CreateRequest, PromoResponse](ctx, a.container, ServiceCreate, req)
	if err != nil {
		return nil, err
	}
	return resp.Promo, nil
}

func (a *promotionAdapter) Update(ctx context.Context, req *UpdateRequest) (*promo.PromoCode, error) {
	resp, err := rpc.Call[UpdateRequest, PromoResponse](ctx, a.container, ServiceUpdate, req)
	if err != nil {
		return nil, err
	}
	return resp.Promo, nil
}

func (a *promotionAdapter) Get(ctx context.Context, code string) (*promo.PromoCode, error) {
	resp, err := rpc.Call[CodeRequest, PromoResponse](ctx, a.container, ServiceGet, &CodeRequest{Code: code})
	if err != nil {
		return nil, err
	}
	return resp.Promo, nil
}

func (a *promotionAdapter) List(ctx context.Context, activeOnly bool) ([]promo.PromoCode, error) {
	resp, err := rpc.Call[ListRequest, ListResponse](ctx, a.container, ServiceList, &ListRequest{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	return resp.Promos, nil
}

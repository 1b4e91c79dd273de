package promotion

import (
	"context"

	"github.com/go-monolith/mono"
)

func (m *Module) evaluate(ctx context.Context, req EvaluateRequest, _ *mono.Msg) (EvaluateResponse, error) {
	var resp EvaluateResponse
	eval, err := m.evaluator.Evaluate(ctx, req.Code, req.Subtotal, req.Segment)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Evaluation = eval
	return resp, nil
}

func (m *Module) redeem(ctx context.Context, req CodeRequest, _ *mono.Msg) (AckResponse, error) {
	var resp AckResponse
	if err := m.evaluator.Redeem(ctx, req.Code); err != nil {
		m.logger.Warn("Promo redemption refused", "code", req.Code, "error", err)
		resp.Fail(err)
		return resp, nil
	}
	resp.OK = true
	return resp, nil
}

func (m *Module) create(ctx context.Context, req CreateRequest, _ *mono.Msg) (PromoResponse, error) {
	var resp PromoResponse
	p, err := m.admin.Create(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Promo code created", "code", p.Code, "type", p.DiscountType, "value", p.DiscountValue)
	resp.Promo = p
	return resp, nil
}

func (m *Module) update(ctx context.Context, req UpdateRequest, _ *mono.Msg) (PromoResponse, error) {
	var resp PromoResponse
	p, err := m.admin.Update(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Promo code updated", "code", p.Code, "active", p.IsActive)
	resp.Promo = p
	return resp, nil
}

func (m *Module) get(ctx context.Context, req CodeRequest, _ *mono.Msg) (PromoResponse, error) {
	var resp PromoResponse
	p, err := m.admin.Get(ctx, req.Code)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Promo = p
	return resp, nil
}

func (m *Module) list(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	var resp ListResponse
	promos, err := m.admin.List(ctx, req.ActiveOnly)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Promos = promos
	resp.Total = len(promos)
	return resp, nil
}

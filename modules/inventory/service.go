package inventory

import (
	"context"
	"time"

	"github.com/example/storefront/events"
	"github.com/go-monolith/mono"
)

func (m *Module) getStock(ctx context.Context, req VariantRequest, _ *mono.Msg) (StockResponse, error) {
	resp := StockResponse{ProductID: req.ProductID, Size: req.Size}
	stock, err := m.ledger.GetStock(ctx, req.ProductID, req.Size)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Stock = stock
	return resp, nil
}

func (m *Module) reserve(ctx context.Context, req QuantityRequest, _ *mono.Msg) (ReserveResponse, error) {
	var resp ReserveResponse
	remaining, err := m.ledger.Reserve(ctx, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Remaining = remaining

	if remaining == 0 {
		m.publishSoldOut(req.ProductID, req.Size)
	}
	return resp, nil
}

func (m *Module) release(ctx context.Context, req QuantityRequest, _ *mono.Msg) (AckResponse, error) {
	var resp AckResponse
	if err := m.ledger.Release(ctx, req.ProductID, req.Size, req.Quantity); err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.OK = true
	return resp, nil
}

func (m *Module) setStock(ctx context.Context, req SetStockRequest, _ *mono.Msg) (VariantResponse, error) {
	var resp VariantResponse
	v, err := m.ledger.SetStock(ctx, req.ProductID, req.Size, req.Stock)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Stock set", "product_id", req.ProductID, "size", req.Size, "stock", req.Stock)
	resp.Variant = v
	return resp, nil
}

func (m *Module) listVariants(ctx context.Context, req ListVariantsRequest, _ *mono.Msg) (ListVariantsResponse, error) {
	var resp ListVariantsResponse
	variants, err := m.ledger.ListVariants(ctx, req.ProductID)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Variants = variants
	return resp, nil
}

func (m *Module) deleteVariant(ctx context.Context, req VariantRequest, _ *mono.Msg) (AckResponse, error) {
	var resp AckResponse
	if err := m.ledger.DeleteVariant(ctx, req.ProductID, req.Size); err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.OK = true
	return resp, nil
}

// publishSoldOut is best-effort; a lost event never affects the reservation.
func (m *Module) publishSoldOut(productID, size string) {
	if m.eventBus == nil {
		return
	}
	event := events.VariantSoldOutEvent{ProductID: productID, Size: size, SoldOutAt: time.Now()}
	if err := events.VariantSoldOutV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish VariantSoldOut event",
			"product_id", productID, "size", size, "error", err)
	}
}

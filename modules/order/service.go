package order

import (
	"context"
	"time"

	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/events"
	"github.com/go-monolith/mono"
)

func (m *Module) create(ctx context.Context, req CreateRequest, _ *mono.Msg) (CreateResponse, error) {
	var resp CreateResponse
	o, replayed, err := m.assembler.Create(ctx, req)
	if err != nil {
		m.logger.Warn("Checkout rejected", "customer_id", req.CustomerID, "error", err)
		resp.Fail(err)
		return resp, nil
	}
	resp.Order = o
	resp.Replayed = replayed

	if !replayed {
		m.publishCreated(o)
	}
	return resp, nil
}

func (m *Module) quote(ctx context.Context, req CreateRequest, _ *mono.Msg) (QuoteResponse, error) {
	var resp QuoteResponse
	q, err := m.assembler.Quote(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Quote = q
	return resp, nil
}

func (m *Module) get(ctx context.Context, req GetRequest, _ *mono.Msg) (OrderResponse, error) {
	var resp OrderResponse
	var (
		o   *order.Order
		err error
	)
	switch {
	case req.ID != "":
		o, err = m.manager.Get(ctx, req.ID)
	case req.Ref != "":
		o, err = m.manager.GetByRef(ctx, req.Ref)
	default:
		err = fault.Validation("order id or ref is required")
	}
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Order = o
	return resp, nil
}

func (m *Module) list(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	var resp ListResponse
	orders, total, err := m.manager.List(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Orders = orders
	resp.Total = total
	return resp, nil
}

func (m *Module) transition(ctx context.Context, req TransitionRequest, _ *mono.Msg) (TransitionResponse, error) {
	res, err := m.manager.Transition(ctx, req.ID, req.Status)
	if err != nil {
		var resp TransitionResponse
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Order status changed",
		"order_id", res.Order.ID, "from", res.From, "to", res.Order.Status, "stock_released", res.StockReleased)
	m.publishStatusChanged(res)
	return *res, nil
}

func (m *Module) setTracking(ctx context.Context, req TrackingRequest, _ *mono.Msg) (OrderResponse, error) {
	var resp OrderResponse
	o, err := m.manager.SetTracking(ctx, req.ID, req.TrackingNumber)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Order = o
	return resp, nil
}

func (m *Module) delete(ctx context.Context, req GetRequest, _ *mono.Msg) (DeleteResponse, error) {
	var resp DeleteResponse
	released, err := m.manager.Delete(ctx, req.ID)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Order deleted", "order_id", req.ID, "stock_released", released)
	resp.OK = true
	resp.StockReleased = released
	return resp, nil
}

// publishCreated is best-effort; the order already exists.
func (m *Module) publishCreated(o *order.Order) {
	if m.eventBus == nil {
		return
	}
	lines := make([]events.OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = events.OrderLine{ProductID: it.ProductID, Name: it.Name, Size: it.Size, Quantity: it.Quantity}
	}
	ev := events.OrderCreatedEvent{
		OrderID:        o.ID,
		Ref:            o.Ref,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerInfo.Name,
		Phone:          o.CustomerInfo.Phone,
		DeliveryMethod: string(o.CustomerInfo.DeliveryMethod),
		PaymentMethod:  string(o.PaymentMethod),
		PromoCode:      o.CustomerInfo.PromoCode,
		TotalPrice:     o.TotalPrice,
		Lines:          lines,
		CreatedAt:      o.CreatedAt,
	}
	if err := events.OrderCreatedV1.Publish(m.eventBus, ev, nil); err != nil {
		m.logger.Error("Failed to publish OrderCreated event", "order_id", o.ID, "error", err)
	}
}

func (m *Module) publishStatusChanged(res *TransitionResponse) {
	if m.eventBus == nil {
		return
	}
	ev := events.OrderStatusChangedEvent{
		OrderID:       res.Order.ID,
		Ref:           res.Order.Ref,
		CustomerID:    res.Order.CustomerID,
		From:          string(res.From),
		To:            string(res.Order.Status),
		StockReleased: res.StockReleased,
		ChangedAt:     time.Now(),
	}
	if res.Order.TrackingNumber != nil {
		ev.TrackingNumber = *res.Order.TrackingNumber
	}
	if err := events.OrderStatusChangedV1.Publish(m.eventBus, ev, nil); err != nil {
		m.logger.Error("Failed to publish OrderStatusChanged event", "order_id", res.Order.ID, "error", err)
	}
}

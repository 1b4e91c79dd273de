package order

import (
	"context"

	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

// orderAdapter implements OrderPort over the order module's
// ServiceContainer.
type orderAdapter struct {
	container mono.ServiceContainer
}

// NewOrderAdapter creates a new adapter for order services.
func NewOrderAdapter(container mono.ServiceContainer) OrderPort {
	if container == nil {
		panic("order adapter requires non-nil ServiceContainer")
	}
	return &orderAdapter{container: container}
}

func (a *orderAdapter) Create(ctx context.Context, req *CreateRequest) (*order.Order, bool, error) {
	resp, err := rpc.Call[CreateRequest, CreateResponse](ctx, a.container, ServiceCreate, req)
	if err != nil {
		return nil, false, err
	}
	return resp.Order, resp.Replayed, nil
}

func (a *orderAdapter) Quote(ctx context.Context, req *CreateRequest) (*Quote, error) {
	resp, err := rpc.Call[CreateRequest, QuoteResponse](ctx, a.container, ServiceQuote, req)
	if err != nil {
		return nil, err
	}
	return resp.Quote, nil
}

func (a *orderAdapter) Get(ctx context.Context, id string) (*order.Order, error) {
	resp, err := rpc.Call[GetRequest, OrderResponse](ctx, a.container, ServiceGet, &GetRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (a *orderAdapter) GetByRef(ctx context.Context, ref string) (*order.Order, error) {
	resp, err := rpc.Call[GetRequest, OrderResponse](ctx, a.container, ServiceGet, &GetRequest{Ref: ref})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (a *orderAdapter) List(ctx context.Context, req *ListRequest) ([]order.Order, int64, error) {
	resp, err := rpc.Call[ListRequest, ListResponse](ctx, a.container, ServiceList, req)
	if err != nil {
		return nil, 0, err
	}
	return resp.Orders, resp.Total, nil
}

func (a *orderAdapter) Transition(ctx context.Context, id string, to order.Status) (*TransitionResponse, error) {
	return rpc.Call[TransitionRequest, TransitionResponse](ctx, a.container, ServiceTransition,
		&TransitionRequest{ID: id, Status: to})
}

func (a *orderAdapter) SetTracking(ctx context.Context, id, trackingNumber string) (*order.Order, error) {
	resp, err := rpc.Call[TrackingRequest, OrderResponse](ctx, a.container, ServiceSetTracking,
		&TrackingRequest{ID: id, TrackingNumber: trackingNumber})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (a *orderAdapter) Delete(ctx context.Context, id string) (bool, error) {
	resp, err := rpc.Call[GetRequest, DeleteResponse](ctx, a.container, ServiceDelete, &GetRequest{ID: id})
	if err != nil {
		return false, err
	}
	return resp.StockReleased, nil
}

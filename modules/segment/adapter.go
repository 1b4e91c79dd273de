package segment

import (
	"context"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

// segmentAdapter implements SegmentPort over the segment module's
// ServiceContainer.
type segmentAdapter struct {
	container mono.ServiceContainer
}

// NewSegmentAdapter creates a new adapter for segment services.
func NewSegmentAdapter(container mono.ServiceContainer) SegmentPort {
	if container == nil {
		panic("segment adapter requires non-nil ServiceContainer")
	}
	return &segmentAdapter{container: container}
}

func (a *segmentAdapter) Classify(ctx context.Context, customerID string) (*customer.Profile, error) {
	resp, err := rpc.Call[ClassifyRequest, ProfileResponse](ctx, a.container, ServiceClassify,
		&ClassifyRequest{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (a *segmentAdapter) ListCustomers(ctx context.Context, req *ListCustomersRequest) (*ListCustomersResponse, error) {
	return rpc.Call[ListCustomersRequest, ListCustomersResponse](ctx, a.container, ServiceListCustomers, req)
}

func (a *segmentAdapter) GetThresholds(ctx context.Context) (*customer.Thresholds, error) {
	resp, err := rpc.Call[ThresholdsRequest, ThresholdsResponse](ctx, a.container, ServiceGetThresholds, &ThresholdsRequest{})
	if err != nil {
		return nil, err
	}
	return &resp.Thresholds, nil
}

func (a *segmentAdapter) SetThresholds(ctx context.Context, vipThreshold int64, churnWindowDays int) (*customer.Thresholds, error) {
	resp, err := rpc.Call[ThresholdsRequest, ThresholdsResponse](ctx, a.container, ServiceSetThresholds,
		&ThresholdsRequest{VIPThreshold: vipThreshold, ChurnWindowDays: churnWindowDays})
	if err != nil {
		return nil, err
	}
	return &resp.Thresholds, nil
}

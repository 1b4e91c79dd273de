package notification

import (
	"context"

	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a new adapter for notification services.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

func (a *notificationAdapter) List(ctx context.Context, req *ListRequest) ([]Notification, error) {
	resp, err := rpc.Call[ListRequest, ListResponse](ctx, a.container, ServiceList, req)
	if err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

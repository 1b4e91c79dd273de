package notification

import (
	"context"
	"time"

	"github.com/example/storefront/domain/fault"
)

// ServiceList is registered under services.notification.list.
const ServiceList = "list"

// Kind classifies a notification.
type Kind string

const (
	KindOrderCreated       Kind = "order_created"
	KindOrderStatusChanged Kind = "order_status_changed"
	KindVariantSoldOut     Kind = "variant_sold_out"
)

// Notification is one entry of the admin feed.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRequest is the request for list. Zero Limit returns the whole feed.
type ListRequest struct {
	Kind  Kind `json:"kind,omitempty"`
	Limit int  `json:"limit,omitempty"`
}

// ListResponse is the response for list, newest first.
type ListResponse struct {
	fault.Reply
	Notifications []Notification `json:"notifications"`
}

// NotificationPort is the contract the API uses to read the feed.
type NotificationPort interface {
	List(ctx context.Context, req *ListRequest) ([]Notification, error)
}

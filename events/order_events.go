package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// OrderLine is the event view of an order item.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// OrderCreatedEvent is emitted after an order is durably created and its
// promo code, if any, redeemed.
type OrderCreatedEvent struct {
	OrderID        string      `json:"order_id"`
	Ref            string      `json:"ref"`
	CustomerID     string      `json:"customer_id"`
	CustomerName   string      `json:"customer_name"`
	Phone          string      `json:"phone"`
	DeliveryMethod string      `json:"delivery_method"`
	PaymentMethod  string      `json:"payment_method"`
	PromoCode      string      `json:"promo_code,omitempty"`
	TotalPrice     int64       `json:"total_price"`
	Lines          []OrderLine `json:"lines"`
	CreatedAt      time.Time   `json:"created_at"`
}

// OrderCreatedV1 is the typed event definition for order creation.
// Subject: events.order.v1.order-created
var OrderCreatedV1 = helper.EventDefinition[OrderCreatedEvent](
	"order", "OrderCreated", "v1",
)

// OrderStatusChangedEvent is emitted on every admin status transition.
type OrderStatusChangedEvent struct {
	OrderID        string    `json:"order_id"`
	Ref            string    `json:"ref"`
	CustomerID     string    `json:"customer_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	StockReleased  bool      `json:"stock_released"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

// OrderStatusChangedV1 is the typed event definition for status changes.
// Subject: events.order.v1.order-status-changed
var OrderStatusChangedV1 = helper.EventDefinition[OrderStatusChangedEvent](
	"order", "OrderStatusChanged", "v1",
)

// Package order holds the durable order record and its status machine.
package order

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrImmutable is returned when an update touches write-once order fields.
var ErrImmutable = errors.New("order items and totals are write-once")

// DeliveryMethod selects how the parcel reaches the customer.
type DeliveryMethod string

const (
	DeliveryPickupPoint DeliveryMethod = "pickup_point"
	DeliveryCourier     DeliveryMethod = "courier"
)

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// Valid reports whether p is an accepted payment method.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCashOnDelivery || p == PaymentBankTransfer
}

// CustomerInfo is the contact and delivery snapshot frozen at checkout.
type CustomerInfo struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email"`
	Address        string         `json:"address"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Comment        string         `json:"comment,omitempty"`
	PromoCode      string         `json:"promo_code,omitempty"`
	Discount       int64          `json:"discount"`
}

// Item is one order line captured at checkout. Price is never re-derived
// from the live product.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Size      string `json:"size"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

// Order is the durable record of a checkout.
type Order struct {
	ID             string        `gorm:"primarykey;size:36" json:"id"`
	Ref            string        `gorm:"size:16;uniqueIndex;not null" json:"ref"`
	CustomerID     string        `gorm:"size:255;index;uniqueIndex:idx_orders_customer_idempotency,priority:1;not null" json:"customer_id"`
	IdempotencyKey *string       `gorm:"size:128;uniqueIndex:idx_orders_customer_idempotency,priority:2" json:"idempotency_key,omitempty"`
	Status         Status        `gorm:"size:16;index;not null" json:"status"`
	CustomerInfo   CustomerInfo  `gorm:"serializer:json;not null" json:"customer_info"`
	Items          []Item        `gorm:"column:order_items;serializer:json;not null" json:"order_items"`
	Subtotal       int64         `gorm:"not null" json:"subtotal"`
	Discount       int64         `gorm:"not null" json:"discount"`
	DeliveryFee    int64         `gorm:"not null" json:"delivery_fee"`
	TotalPrice     int64         `gorm:"not null" json:"total_price"`
	PaymentMethod  PaymentMethod `gorm:"size:32;not null" json:"payment_method"`
	TrackingNumber *string       `gorm:"size:64" json:"tracking_number,omitempty"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName returns the table name for Order model.
func (Order) TableName() string {
	return "orders"
}

// BeforeUpdate rejects any update that touches the checkout snapshot.
func (o *Order) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Items", "CustomerInfo", "Subtotal", "Discount", "DeliveryFee", "TotalPrice", "CreatedAt") {
		return ErrImmutable
	}
	return nil
}

// Units returns the total quantity across all lines.
func (o *Order) Units() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

package api

import (
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	ordermod "github.com/example/storefront/modules/order"
)

// ErrorResponse is the HTTP response for errors. Detail names the variant,
// promo code or status the failure is about.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Detail  *fault.Error `json:"detail,omitempty"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ProductListResponse is the HTTP response for listing products.
type ProductListResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

// StockResponse is the HTTP response for a variant stock lookup.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
	InStock   bool   `json:"in_stock"`
}

// EvaluatePromoRequest is the HTTP request for previewing a promo code.
type EvaluatePromoRequest struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
}

// EvaluatePromoResponse is the HTTP response for a promo preview.
type EvaluatePromoResponse struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
}

// CheckoutRequest is the HTTP request for quoting and placing an order.
type CheckoutRequest struct {
	Cart          []ordermod.CartLine `json:"cart"`
	Customer      order.CustomerInfo  `json:"customer"`
	PromoCode     string              `json:"promo_code,omitempty"`
	PaymentMethod order.PaymentMethod `json:"payment_method"`
}

// OrderCreatedResponse is the HTTP response for placing an order.
type OrderCreatedResponse struct {
	Order    *order.Order `json:"order"`
	Replayed bool         `json:"replayed"`
}

// OrderListResponse is the HTTP response for listing orders.
type OrderListResponse struct {
	Orders []order.Order `json:"orders"`
	Total  int64         `json:"total"`
}

// SetStockRequest is the HTTP request for setting a variant's stock.
type SetStockRequest struct {
	Stock int `json:"stock"`
}

// StatusRequest is the HTTP request for an order status change.
type StatusRequest struct {
	Status order.Status `json:"status"`
}

// TrackingRequest is the HTTP request for setting a tracking number.
type TrackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// ThresholdsRequest is the HTTP request for updating segmentation settings.
type ThresholdsRequest struct {
	VIPThreshold    int64 `json:"vip_threshold"`
	ChurnWindowDays int   `json:"churn_window_days"`
}

// publicProduct hides back-office fields from shoppers.
func publicProduct(p catalog.Product) catalog.Product {
	p.CostPrice = nil
	return p
}

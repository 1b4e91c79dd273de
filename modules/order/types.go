package order

import (
	"context"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/domain/pricing"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
)

// Service names registered under services.order.*.
const (
	ServiceCreate      = "create"
	ServiceQuote       = "quote"
	ServiceGet         = "get"
	ServiceList        = "list"
	ServiceTransition  = "transition"
	ServiceSetTracking = "set-tracking"
	ServiceDelete      = "delete"
)

// CartLine is one client-held cart entry. Prices are never taken from the
// client.
type CartLine struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// CreateRequest is the request for create and quote.
type CreateRequest struct {
	// CustomerID is the identity-provider subject. Guests are keyed by
	// their e-mail address when empty.
	CustomerID     string              `json:"customer_id,omitempty"`
	Cart           []CartLine          `json:"cart"`
	Customer       order.CustomerInfo  `json:"customer"`
	PromoCode      string              `json:"promo_code,omitempty"`
	PaymentMethod  order.PaymentMethod `json:"payment_method"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
}

// CreateResponse is the response for create.
type CreateResponse struct {
	fault.Reply
	Order *order.Order `json:"order,omitempty"`
	// Replayed is true when an earlier order with the same idempotency key
	// was returned.
	Replayed bool `json:"replayed"`
}

// Quote is a checkout preview.
type Quote struct {
	Items     []order.Item      `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Segment   customer.Segment  `json:"segment"`
	PromoCode string            `json:"promo_code,omitempty"`
}

// QuoteResponse is the response for quote.
type QuoteResponse struct {
	fault.Reply
	Quote *Quote `json:"quote,omitempty"`
}

// GetRequest addresses one order by id or public reference.
type GetRequest struct {
	ID  string `json:"id,omitempty"`
	Ref string `json:"ref,omitempty"`
}

// OrderResponse is the response for get and set-tracking.
type OrderResponse struct {
	fault.Reply
	Order *order.Order `json:"order,omitempty"`
}

// ListRequest filters the order list.
type ListRequest struct {
	Status     order.Status `json:"status,omitempty"`
	CustomerID string       `json:"customer_id,omitempty"`
	Limit      int          `json:"limit,omitempty"`
	Offset     int          `json:"offset,omitempty"`
}

// ListResponse is the response for list.
type ListResponse struct {
	fault.Reply
	Orders []order.Order `json:"orders"`
	Total  int64         `json:"total"`
}

// TransitionRequest is the request for transition.
type TransitionRequest struct {
	ID     string       `json:"id"`
	Status order.Status `json:"status"`
}

// TransitionResponse is the response for transition.
type TransitionResponse struct {
	fault.Reply
	Order         *order.Order `json:"order,omitempty"`
	From          order.Status `json:"from"`
	StockReleased bool         `json:"stock_released"`
}

// TrackingRequest is the request for set-tracking. An empty number clears it.
type TrackingRequest struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"tracking_number"`
}

// DeleteResponse is the response for delete.
type DeleteResponse struct {
	fault.Reply
	OK            bool `json:"ok"`
	StockReleased bool `json:"stock_released"`
}

// OrderPort is the contract the API uses for orders.
type OrderPort interface {
	Create(ctx context.Context, req *CreateRequest) (*order.Order, bool, error)
	Quote(ctx context.Context, req *CreateRequest) (*Quote, error)
	Get(ctx context.Context, id string) (*order.Order, error)
	GetByRef(ctx context.Context, ref string) (*order.Order, error)
	List(ctx context.Context, req *ListRequest) ([]order.Order, int64, error)
	Transition(ctx context.Context, id string, to order.Status) (*TransitionResponse, error)
	SetTracking(ctx context.Context, id, trackingNumber string) (*order.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ProductSource supplies authoritative product rows for checkout.
type ProductSource interface {
	Snapshot(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// StockLedger moves stock for checkout and cancellation.
type StockLedger interface {
	GetStock(ctx context.Context, productID, size string) (int, error)
	Reserve(ctx context.Context, productID, size string, quantity int) (int, error)
	Release(ctx context.Context, productID, size string, quantity int) error
}

// Promotions evaluates and redeems promo codes.
type Promotions interface {
	Evaluate(ctx context.Context, code string, subtotal int64, segment customer.Segment) (*promotion.Evaluation, error)
	Redeem(ctx context.Context, code string) error
}

// Segments classifies customers.
type Segments interface {
	Classify(ctx context.Context, customerID string) (*customer.Profile, error)
}

// The service adapters satisfy the assembler's collaborator interfaces.
var (
	_ ProductSource = catalogmod.CatalogPort(nil)
	_ StockLedger   = inventory.InventoryPort(nil)
	_ Promotions    = promotion.PromotionPort(nil)
	_ Segments      = segment.SegmentPort(nil)
)

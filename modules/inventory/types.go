package inventory

import (
	"context"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
)

// Service names registered under services.inventory.*.
const (
	ServiceGetStock      = "get-stock"
	ServiceReserve       = "reserve"
	ServiceRelease       = "release"
	ServiceSetStock      = "set-stock"
	ServiceListVariants  = "list-variants"
	ServiceDeleteVariant = "delete-variant"
)

// VariantRequest addresses one (product, size) pair.
type VariantRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
}

// StockResponse is the response for get-stock.
type StockResponse struct {
	fault.Reply
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}

// QuantityRequest is the request for reserve and release.
type QuantityRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// ReserveResponse is the response for reserve.
type ReserveResponse struct {
	fault.Reply
	Remaining int `json:"remaining"`
}

// AckResponse is the response for operations that return no data.
type AckResponse struct {
	fault.Reply
	OK bool `json:"ok"`
}

// SetStockRequest is the request for set-stock.
type SetStockRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
}

// VariantResponse is the response for set-stock.
type VariantResponse struct {
	fault.Reply
	Variant *catalog.Variant `json:"variant,omitempty"`
}

// ListVariantsRequest is the request for list-variants.
type ListVariantsRequest struct {
	ProductID string `json:"product_id"`
}

// ListVariantsResponse is the response for list-variants.
type ListVariantsResponse struct {
	fault.Reply
	Variants []catalog.Variant `json:"variants"`
}

// InventoryPort is the contract other modules use to read and move stock.
type InventoryPort interface {
	GetStock(ctx context.Context, productID, size string) (int, error)
	Reserve(ctx context.Context, productID, size string, quantity int) (int, error)
	Release(ctx context.Context, productID, size string, quantity int) error
	SetStock(ctx context.Context, productID, size string, stock int) (*catalog.Variant, error)
	ListVariants(ctx context.Context, productID string) ([]catalog.Variant, error)
	DeleteVariant(ctx context.Context, productID, size string) error
}

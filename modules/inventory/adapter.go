package inventory

import (
	"context"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

// inventoryAdapter implements InventoryPort over the inventory module's
// ServiceContainer.
type inventoryAdapter struct {
	container mono.ServiceContainer
}

// NewInventoryAdapter creates a new adapter for inventory services.
func NewInventoryAdapter(container mono.ServiceContainer) InventoryPort {
	if container == nil {
		panic("inventory adapter requires non-nil ServiceContainer")
	}
	return &inventoryAdapter{container: container}
}

func (a *inventoryAdapter) GetStock(ctx context.Context, productID, size string) (int, error) {
	resp, err := rpc.Call[VariantRequest, StockResponse](ctx, a.container, ServiceGetStock,
		&VariantRequest{ProductID: productID, Size: size})
	if err != nil {
		return 0, err
	}
	return resp.Stock, nil
}

func (a *inventoryAdapter) Reserve(ctx context.Context, productID, size string, quantity int) (int, error) {
	resp, err := rpc.Call[QuantityRequest, ReserveResponse](ctx, a.container, ServiceReserve,
		&QuantityRequest{ProductID: productID, Size: size, Quantity: quantity})
	if err != nil {
		return 0, err
	}
	return resp.Remaining, nil
}

func (a *inventoryAdapter) Release(ctx context.Context, productID, size string, quantity int) error {
	_, err := rpc.Call[QuantityRequest, AckResponse](ctx, a.container, ServiceRelease,
		&QuantityRequest{ProductID: productID, Size: size, Quantity: quantity})
	return err
}

func (a *inventoryAdapter) SetStock(ctx context.Context, productID, size string, stock int) (*catalog.Variant, error) {
	resp, err := rpc.Call[SetStockRequest, VariantResponse](ctx, a.container, ServiceSetStock,
		&SetStockRequest{ProductID: productID, Size: size, Stock: stock})
	if err != nil {
		return nil, err
	}
	return resp.Variant, nil
}

func (a *inventoryAdapter) ListVariants(ctx context.Context, productID string) ([]catalog.Variant, error) {
	resp, err := rpc.Call[ListVariantsRequest, ListVariantsResponse](ctx, a.container, ServiceListVariants,
		&ListVariantsRequest{ProductID: productID})
	if err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

func (a *inventoryAdapter) DeleteVariant(ctx context.Context, productID, size string) error {
	_, err := rpc.Call[VariantRequest, AckResponse](ctx, a.container, ServiceDeleteVariant,
		&VariantRequest{ProductID: productID, Size: size})
	return err
}

package catalog

import (
	"context"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/rpc"
	"github.com/go-monolith/mono"
)

// catalogAdapter implements CatalogPort over the catalog module's
// ServiceContainer.
type catalogAdapter struct {
	container mono.ServiceContainer
}

// NewCatalogAdapter creates a new adapter for catalog services.
func NewCatalogAdapter(container mono.ServiceContainer) CatalogPort {
	if container == nil {
		panic("catalog adapter requires non-nil ServiceContainer")
	}
	return &catalogAdapter{container: container}
}

func (a *catalogAdapter) Create(ctx context.Context, req *CreateRequest) (*catalog.Product, error) {
	resp, err := rpc.Call[CreateRequest, ProductResponse](ctx, a.container, ServiceCreate, req)
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

func (a *catalogAdapter) Update(ctx context.Context, req *UpdateRequest) (*catalog.Product, error) {
	resp, err := rpc.Call[UpdateRequest, ProductResponse](ctx, a.container, ServiceUpdate, req)
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

func (a *catalogAdapter) Delete(ctx context.Context, id string) error {
	_, err := rpc.Call[GetRequest, AckResponse](ctx, a.container, ServiceDelete, &GetRequest{ID: id})
	return err
}

func (a *catalogAdapter) Get(ctx context.Context, id string, viewer Viewer) (*catalog.Product, error) {
	resp, err := rpc.Call[GetRequest, ProductResponse](ctx, a.container, ServiceGet, &GetRequest{ID: id, Viewer: viewer})
	if err != nil {
		return nil, err
	}
	return resp.Product, nil
}

func (a *catalogAdapter) List(ctx context.Context, req *ListRequest) ([]catalog.Product, int, error) {
	resp, err := rpc.Call[ListRequest, ListResponse](ctx, a.container, ServiceList, req)
	if err != nil {
		return nil, 0, err
	}
	return resp.Products, resp.Total, nil
}

func (a *catalogAdapter) Snapshot(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	resp, err := rpc.Call[SnapshotRequest, SnapshotResponse](ctx, a.container, ServiceSnapshot, &SnapshotRequest{IDs: ids})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

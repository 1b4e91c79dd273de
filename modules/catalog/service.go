package catalog

import (
	"context"

	"github.com/go-monolith/mono"
)

func (m *Module) create(ctx context.Context, req CreateRequest, _ *mono.Msg) (ProductResponse, error) {
	var resp ProductResponse
	p, err := m.catalog.Create(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Product created", "product_id", p.ID, "name", p.Name, "variants", len(p.Variants))
	resp.Product = p
	return resp, nil
}

func (m *Module) update(ctx context.Context, req UpdateRequest, _ *mono.Msg) (ProductResponse, error) {
	var resp ProductResponse
	p, err := m.catalog.Update(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Product updated", "product_id", p.ID)
	resp.Product = p
	return resp, nil
}

func (m *Module) delete(ctx context.Context, req GetRequest, _ *mono.Msg) (AckResponse, error) {
	var resp AckResponse
	if err := m.catalog.Delete(ctx, req.ID); err != nil {
		resp.Fail(err)
		return resp, nil
	}
	m.logger.Info("Product deleted", "product_id", req.ID)
	resp.OK = true
	return resp, nil
}

func (m *Module) get(ctx context.Context, req GetRequest, _ *mono.Msg) (ProductResponse, error) {
	var resp ProductResponse
	p, err := m.catalog.Get(ctx, req.ID, req.Viewer)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Product = p
	return resp, nil
}

func (m *Module) list(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	var resp ListResponse
	products, total, err := m.catalog.List(ctx, req)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Products = products
	resp.Total = total
	return resp, nil
}

func (m *Module) snapshot(ctx context.Context, req SnapshotRequest, _ *mono.Msg) (SnapshotResponse, error) {
	var resp SnapshotResponse
	products, err := m.catalog.Snapshot(ctx, req.IDs)
	if err != nil {
		resp.Fail(err)
		return resp, nil
	}
	resp.Products = products
	return resp, nil
}

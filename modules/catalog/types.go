package catalog

import (
	"context"
	"time"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
)

// Service names registered under services.catalog.*.
const (
	ServiceCreate   = "create"
	ServiceUpdate   = "update"
	ServiceDelete   = "delete"
	ServiceGet      = "get"
	ServiceList     = "list"
	ServiceSnapshot = "snapshot"
)

// Viewer describes who is reading the catalog.
type Viewer struct {
	// VIP shoppers see VIP-only products.
	VIP bool `json:"vip,omitempty"`
	// Admin sees hidden and unreleased products too.
	Admin bool `json:"admin,omitempty"`
}

// VariantInput is an initial size and stock for a new product.
type VariantInput struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// CreateRequest is the request for create.
type CreateRequest struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         int64              `json:"price"`
	CostPrice     *int64             `json:"cost_price,omitempty"`
	Categories    []catalog.Category `json:"categories"`
	CollectionIDs []string           `json:"collection_ids"`
	Images        []string           `json:"images"`
	IsHidden      bool               `json:"is_hidden"`
	IsNew         bool               `json:"is_new"`
	IsVIPOnly     bool               `json:"is_vip_only"`
	ReleaseDate   *time.Time         `json:"release_date,omitempty"`
	Variants      []VariantInput     `json:"variants"`
}

// UpdateRequest is the request for update. Nil fields are left unchanged.
type UpdateRequest struct {
	ID               string              `json:"id"`
	Name             *string             `json:"name,omitempty"`
	Description      *string             `json:"description,omitempty"`
	Price            *int64              `json:"price,omitempty"`
	CostPrice        *int64              `json:"cost_price,omitempty"`
	ClearCostPrice   bool                `json:"clear_cost_price,omitempty"`
	Categories       *[]catalog.Category `json:"categories,omitempty"`
	CollectionIDs    *[]string           `json:"collection_ids,omitempty"`
	Images           *[]string           `json:"images,omitempty"`
	IsHidden         *bool               `json:"is_hidden,omitempty"`
	IsNew            *bool               `json:"is_new,omitempty"`
	IsVIPOnly        *bool               `json:"is_vip_only,omitempty"`
	ReleaseDate      *time.Time          `json:"release_date,omitempty"`
	ClearReleaseDate bool                `json:"clear_release_date,omitempty"`
}

// GetRequest is the request for get and delete.
type GetRequest struct {
	ID     string `json:"id"`
	Viewer Viewer `json:"viewer"`
}

// ProductResponse is the response for create, update and get.
type ProductResponse struct {
	fault.Reply
	Product *catalog.Product `json:"product,omitempty"`
}

// AckResponse is the response for operations that return no data.
type AckResponse struct {
	fault.Reply
	OK bool `json:"ok"`
}

// ListRequest is the request for list.
type ListRequest struct {
	Category catalog.Category `json:"category,omitempty"`
	Viewer   Viewer           `json:"viewer"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// ListResponse is the response for list.
type ListResponse struct {
	fault.Reply
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

// SnapshotRequest is the request for snapshot.
type SnapshotRequest struct {
	IDs []string `json:"ids"`
}

// SnapshotResponse carries authoritative product rows keyed by id.
type SnapshotResponse struct {
	fault.Reply
	Products map[string]catalog.Product `json:"products"`
}

// CatalogPort is the contract other modules use to read and manage products.
type CatalogPort interface {
	Create(ctx context.Context, req *CreateRequest) (*catalog.Product, error)
	Update(ctx context.Context, req *UpdateRequest) (*catalog.Product, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string, viewer Viewer) (*catalog.Product, error)
	List(ctx context.Context, req *ListRequest) ([]catalog.Product, int, error)
	Snapshot(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

package catalog

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/modules/cache"
	"github.com/example/storefront/paging"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	listKey          = "list:all"
	productKeyPrefix = "product:"
)

// Catalog serves product reads through the cache and applies admin writes.
// Cached entries never include variants: stock is always read fresh.
type Catalog struct {
	repo   *Repository
	cache  cache.Store
	group  singleflight.Group
	logger types.Logger
	now    func() time.Time
}

// NewCatalog creates a catalog over repo with the given cache.
func NewCatalog(repo *Repository, store cache.Store, logger types.Logger) *Catalog {
	return &Catalog{
		repo:   repo,
		cache:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and stores a product with its initial variants.
func (c *Catalog) Create(ctx context.Context, req CreateRequest) (*catalog.Product, error) {
	now := c.now()
	p := &catalog.Product{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		Categories:    req.Categories,
		CollectionIDs: req.CollectionIDs,
		Images:        req.Images,
		IsHidden:      req.IsHidden,
		IsNew:         req.IsNew,
		IsVIPOnly:     req.IsVIPOnly,
		ReleaseDate:   req.ReleaseDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, v := range req.Variants {
		size := strings.TrimSpace(v.Size)
		if size == "" {
			return nil, fault.Validation("variant size is required")
		}
		if seen[size] {
			return nil, fault.Validation("duplicate variant size %s", size)
		}
		if v.Stock < 0 {
			return nil, fault.Validation("stock for size %s must not be negative", size)
		}
		seen[size] = true
		p.Variants = append(p.Variants, catalog.Variant{Size: size, Stock: v.Stock, UpdatedAt: now})
	}

	if err := c.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	c.invalidate(ctx, p.ID)
	return p, nil
}

// Update applies the non-nil fields of req.
func (c *Catalog) Update(ctx context.Context, req UpdateRequest) (*catalog.Product, error) {
	p, err := c.repo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		columns = append(columns, "name")
	}
	if req.Description != nil {
		p.Description = *req.Description
		columns = append(columns, "description")
	}
	if req.Price != nil {
		p.Price = *req.Price
		columns = append(columns, "price")
	}
	if req.ClearCostPrice {
		p.CostPrice = nil
		columns = append(columns, "cost_price")
	} else if req.CostPrice != nil {
		p.CostPrice = req.CostPrice
		columns = append(columns, "cost_price")
	}
	if req.Categories != nil {
		p.Categories = *req.Categories
		columns = append(columns, "categories")
	}
	if req.CollectionIDs != nil {
		p.CollectionIDs = *req.CollectionIDs
		columns = append(columns, "collection_ids")
	}
	if req.Images != nil {
		p.Images = *req.Images
		columns = append(columns, "images")
	}
	if req.IsHidden != nil {
		p.IsHidden = *req.IsHidden
		columns = append(columns, "is_hidden")
	}
	if req.IsNew != nil {
		p.IsNew = *req.IsNew
		columns = append(columns, "is_new")
	}
	if req.IsVIPOnly != nil {
		p.IsVIPOnly = *req.IsVIPOnly
		columns = append(columns, "is_vip_only")
	}
	if req.ClearReleaseDate {
		p.ReleaseDate = nil
		columns = append(columns, "release_date")
	} else if req.ReleaseDate != nil {
		p.ReleaseDate = req.ReleaseDate
		columns = append(columns, "release_date")
	}

	if err := validate(p); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return p, nil
	}
	if err := c.repo.Update(ctx, p, columns); err != nil {
		return nil, err
	}
	c.invalidate(ctx, p.ID)
	return p, nil
}

// Delete removes a product and its variants.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// Get returns one product with fresh variants. Products the viewer may not
// see are reported as not found.
func (c *Catalog) Get(ctx context.Context, id string, viewer Viewer) (*catalog.Product, error) {
	p, err := c.cachedProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.Admin && !p.VisibleTo(c.now(), viewer.VIP) {
		return nil, fault.NotFound("product", id)
	}

	variants, err := c.repo.Variants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]
	return p, nil
}

// List returns a page of products the viewer may see, with fresh variants,
// and the total number of matches.
func (c *Catalog) List(ctx context.Context, req ListRequest) ([]catalog.Product, int, error) {
	if req.Category != "" && !req.Category.Valid() {
		return nil, 0, fault.Validation("unknown category %q", req.Category)
	}

	all, err := c.cachedList(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := c.now()
	matched := make([]catalog.Product, 0, len(all))
	for _, p := range all {
		if !req.Viewer.Admin && !p.VisibleTo(now, req.Viewer.VIP) {
			continue
		}
		if req.Category != "" && !slices.Contains(p.Categories, req.Category) {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	products := paging.Slice(matched, req.Offset, req.Limit)

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	variants, err := c.repo.Variants(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		products[i].Variants = variants[products[i].ID]
	}
	return products, total, nil
}

// Snapshot returns the authoritative rows for ids straight from the
// database, bypassing the cache. Checkout prices from this.
func (c *Catalog) Snapshot(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	products, err := c.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (c *Catalog) cachedProduct(ctx context.Context, id string) (*catalog.Product, error) {
	key := productKeyPrefix + id

	var p catalog.Product
	if hit, err := c.cache.Get(ctx, key, &p); err != nil {
		c.logger.Warn("Cache read failed", "key", key, "error", err)
	} else if hit {
		return &p, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		found, err := c.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, found); err != nil {
			c.logger.Warn("Cache write failed", "key", key, "error", err)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	// Shared with other callers of Do; hand out a copy.
	cp := *v.(*catalog.Product)
	return &cp, nil
}

func (c *Catalog) cachedList(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if hit, err := c.cache.Get(ctx, listKey, &products); err != nil {
		c.logger.Warn("Cache read failed", "key", listKey, "error", err)
	} else if hit {
		return products, nil
	}

	v, err, _ := c.group.Do(listKey, func() (any, error) {
		found, err := c.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, listKey, found); err != nil {
			c.logger.Warn("Cache write failed", "key", listKey, "error", err)
		}
		return found, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]catalog.Product)
	return append([]catalog.Product(nil), shared...), nil
}

func (c *Catalog) invalidate(ctx context.Context, id string) {
	if err := c.cache.Delete(ctx, productKeyPrefix+id, listKey); err != nil {
		c.logger.Warn("Cache invalidation failed", "product_id", id, "error", err)
	}
}

func validate(p *catalog.Product) error {
	if p.Name == "" {
		return fault.Validation("product name is required")
	}
	if p.Price <= 0 {
		return fault.Validation("price must be positive, got %d", p.Price)
	}
	if p.CostPrice != nil && *p.CostPrice < 0 {
		return fault.Validation("cost_price must not be negative")
	}
	for _, cat := range p.Categories {
		if !cat.Valid() {
			return fault.Validation("unknown category %q", cat)
		}
	}
	return nil
}

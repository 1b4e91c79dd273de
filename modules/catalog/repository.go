package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/database"
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
	"gorm.io/gorm"
)

// Repository provides access to product storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a product together with its initial variants in one
// transaction.
func (r *Repository) Create(ctx context.Context, p *catalog.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variants := p.Variants
		p.Variants = nil
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if len(variants) > 0 {
			for i := range variants {
				variants[i].ProductID = p.ID
			}
			if err := tx.Create(&variants).Error; err != nil {
				return err
			}
		}
		p.Variants = variants
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fault.Conflict("product %s already exists", p.ID)
		}
		return fault.Unavailable("catalog", fmt.Errorf("failed to create product: %w", err))
	}
	return nil
}

// FindByID retrieves a product without its variants.
func (r *Repository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("product", id)
		}
		return nil, fault.Unavailable("catalog", fmt.Errorf("failed to find product: %w", err))
	}
	return &p, nil
}

// FindByIDs retrieves the products with the given ids. Missing ids are
// simply absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	var products []catalog.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fault.Unavailable("catalog", fmt.Errorf("failed to load products: %w", err))
	}
	return products, nil
}

// List returns every product, newest first.
func (r *Repository) List(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC, id").Find(&products).Error; err != nil {
		return nil, fault.Unavailable("catalog", fmt.Errorf("failed to list products: %w", err))
	}
	return products, nil
}

// Variants returns the current variant rows of the given products keyed by
// product id.
func (r *Repository) Variants(ctx context.Context, ids ...string) (map[string][]catalog.Variant, error) {
	byProduct := make(map[string][]catalog.Variant, len(ids))
	if len(ids) == 0 {
		return byProduct, nil
	}
	var variants []catalog.Variant
	if err := r.db.WithContext(ctx).Where("product_id IN ?", ids).Order("product_id, size").Find(&variants).Error; err != nil {
		return nil, fault.Unavailable("catalog", fmt.Errorf("failed to load variants: %w", err))
	}
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	return byProduct, nil
}

// Update writes the named columns of p. A struct update is used so the
// JSON serializer applies to list columns.
func (r *Repository) Update(ctx context.Context, p *catalog.Product, columns []string) error {
	p.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	result := r.db.WithContext(ctx).Model(p).Select(columns).Updates(p)
	if err := result.Error; err != nil {
		return fault.Unavailable("catalog", fmt.Errorf("failed to update product: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product; its variants go with it through the foreign key
// cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fault.Unavailable("catalog", fmt.Errorf("failed to delete product: %w", err))
	}
	if result.RowsAffected == 0 {
		return fault.NotFound("product", id)
	}
	return nil
}

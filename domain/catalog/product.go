// Package catalog defines products, their size variants and who may see them.
package catalog

import (
	"time"
)

// Category is a product taxonomy tag.
type Category string

const (
	CategoryTShirts     Category = "tshirts"
	CategoryHoodies     Category = "hoodies"
	CategoryPants       Category = "pants"
	CategoryAccessories Category = "accessories"
	CategoryOuterwear   Category = "outerwear"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTShirts, CategoryHoodies, CategoryPants, CategoryAccessories, CategoryOuterwear:
		return true
	}
	return false
}

// Product is a sellable catalog entry. Sellable quantity lives on its Variants.
type Product struct {
	ID            string     `gorm:"primarykey;size:36" json:"id"`
	Name          string     `gorm:"size:200;not null" json:"name"`
	Description   string     `gorm:"size:2000" json:"description"`
	Price         int64      `gorm:"not null;check:price > 0" json:"price"`
	CostPrice     *int64     `json:"cost_price,omitempty"`
	Categories    []Category `gorm:"serializer:json" json:"categories"`
	CollectionIDs []string   `gorm:"serializer:json" json:"collection_ids"`
	Images        []string   `gorm:"serializer:json" json:"images"`
	IsHidden      bool       `gorm:"not null;default:false" json:"is_hidden"`
	IsNew         bool       `gorm:"not null;default:false" json:"is_new"`
	IsVIPOnly     bool       `gorm:"column:is_vip_only;not null;default:false" json:"is_vip_only"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Variants      []Variant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}

// Variant is the stock authority for one (product, size) pair.
type Variant struct {
	ProductID string    `gorm:"primarykey;size:36" json:"product_id"`
	Size      string    `gorm:"primarykey;size:16" json:"size"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for Variant model.
func (Variant) TableName() string {
	return "product_variants"
}

// Released reports whether the release date, if any, has passed.
func (p *Product) Released(now time.Time) bool {
	return p.ReleaseDate == nil || !p.ReleaseDate.After(now)
}

// VisibleTo reports whether a shopper sees the product in the storefront.
// VIP-only products are shown to VIP shoppers only.
func (p *Product) VisibleTo(now time.Time, vip bool) bool {
	if p.IsHidden || !p.Released(now) {
		return false
	}
	return !p.IsVIPOnly || vip
}

// Image returns the first image, used as the order line thumbnail.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Margin returns price minus cost when the cost is known.
func (p *Product) Margin() (int64, bool) {
	if p.CostPrice == nil {
		return 0, false
	}
	return p.Price - *p.CostPrice, true
}

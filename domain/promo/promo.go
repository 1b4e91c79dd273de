// Package promo defines promo codes and the discount they grant.
package promo

import (
	"regexp"
	"strings"
	"time"
)

// DiscountType selects how DiscountValue is applied.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// Audience restricts which customer segments may redeem a code.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceVIPOnly  Audience = "vip_only"
	AudienceNewUsers Audience = "new_users"
)

// Valid reports whether a is a known audience.
func (a Audience) Valid() bool {
	return a == AudienceAll || a == AudienceVIPOnly || a == AudienceNewUsers
}

// PromoCode is a discount code. Code is stored in canonical upper case.
type PromoCode struct {
	Code           string       `gorm:"primarykey;size:32" json:"code"`
	DiscountType   DiscountType `gorm:"size:16;not null" json:"discount_type"`
	DiscountValue  int64        `gorm:"not null" json:"discount_value"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
	UsageLimit     *int         `json:"usage_limit,omitempty"`
	UsageCount     int          `gorm:"not null;default:0" json:"usage_count"`
	MinOrderAmount int64        `gorm:"not null;default:0" json:"min_order_amount"`
	TargetAudience Audience     `gorm:"size:16;not null;default:'all'" json:"target_audience"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TableName returns the table name for PromoCode model.
func (PromoCode) TableName() string {
	return "promocodes"
}

// Exhausted reports whether a usage cap exists and has been reached.
func (p *PromoCode) Exhausted() bool {
	return p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit
}

// Discount computes the discount for subtotal. Percent discounts round down.
// The result never exceeds subtotal.
func (p *PromoCode) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	switch p.DiscountType {
	case DiscountPercent:
		d = subtotal * p.DiscountValue / 100
	case DiscountFixed:
		d = p.DiscountValue
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Normalize trims and upper-cases a user-entered code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code has an acceptable shape.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

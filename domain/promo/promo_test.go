package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SALE10", Normalize("  sale10 \n"))
	assert.True(t, ValidCode(Normalize("summer-24")))
	assert.False(t, ValidCode("AB"))
	assert.False(t, ValidCode("NO SPACES"))
}

func TestPromoCode_Discount(t *testing.T) {
	tests := []struct {
		name     string
		promo    PromoCode
		subtotal int64
		want     int64
	}{
		{"percent floors", PromoCode{DiscountType: DiscountPercent, DiscountValue: 10}, 999, 99},
		{"percent full", PromoCode{DiscountType: DiscountPercent, DiscountValue: 100}, 500, 500},
		{"fixed below subtotal", PromoCode{DiscountType: DiscountFixed, DiscountValue: 300}, 2000, 300},
		{"fixed capped at subtotal", PromoCode{DiscountType: DiscountFixed, DiscountValue: 2500}, 2000, 2000},
		{"empty cart", PromoCode{DiscountType: DiscountFixed, DiscountValue: 100}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.promo.Discount(tt.subtotal)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
			assert.LessOrEqual(t, got, max(tt.subtotal, 0))
		})
	}
}

func TestPromoCode_Exhausted(t *testing.T) {
	limit := 1
	assert.True(t, (&PromoCode{UsageLimit: &limit, UsageCount: 1}).Exhausted())
	assert.False(t, (&PromoCode{UsageLimit: &limit, UsageCount: 0}).Exhausted())
	assert.False(t, (&PromoCode{UsageCount: 1000}).Exhausted())
}

package cli

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/config"
	"github.com/example/storefront/database/dbtest"
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/domain/promo"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func TestSeedDemo_RerunIsHarmless(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	res, err := seedDemo(ctx, db, &mockLogger{}, now)
	require.NoError(t, err)
	assert.Equal(t, len(demoProducts(now)), res.Products)
	assert.Equal(t, len(demoPromos()), res.Promos)

	res, err = seedDemo(ctx, db, &mockLogger{}, now)
	require.NoError(t, err)
	assert.Zero(t, res.Products)
	assert.Zero(t, res.Promos)

	var products, variants, codes int64
	require.NoError(t, db.Model(&catalog.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&catalog.Variant{}).Count(&variants).Error)
	require.NoError(t, db.Model(&promo.PromoCode{}).Count(&codes).Error)
	assert.Equal(t, int64(7), products)
	assert.Equal(t, int64(15), variants)
	assert.Equal(t, int64(3), codes)
}

func TestSeedDemo_CatalogCoversVisibilityRules(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	var hidden, vipOnly, unreleased int
	for _, p := range demoProducts(now) {
		if p.IsHidden {
			hidden++
		}
		if p.IsVIPOnly {
			vipOnly++
		}
		if p.ReleaseDate != nil && p.ReleaseDate.After(now) {
			unreleased++
		}
	}
	assert.Equal(t, 1, hidden)
	assert.Equal(t, 1, vipOnly)
	assert.Equal(t, 1, unreleased)
}

func TestDeliveryFees(t *testing.T) {
	fees := deliveryFees(config.CheckoutConfig{
		DeliveryFees: map[string]int64{"pickup_point": 300, "courier": 600},
	})

	assert.Equal(t, map[order.DeliveryMethod]int64{
		order.DeliveryPickupPoint: 300,
		order.DeliveryCourier:     600,
	}, fees)
}

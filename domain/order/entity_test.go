package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Order{}))
	return db
}

func TestOrder_WriteOnceFields(t *testing.T) {
	db := setupTestDB(t)

	o := &Order{
		ID:         "o-1",
		Ref:        "ABCD1234",
		CustomerID: "alice@example.com",
		Status:     StatusNew,
		CustomerInfo: CustomerInfo{
			Name:           "Alice",
			Email:          "alice@example.com",
			DeliveryMethod: DeliveryCourier,
		},
		Items:         []Item{{ProductID: "shirt1", Name: "Shirt", Size: "M", Price: 1000, Quantity: 2, LineTotal: 2000}},
		Subtotal:      2000,
		DeliveryFee:   600,
		TotalPrice:    2600,
		PaymentMethod: PaymentCard,
	}
	require.NoError(t, db.Create(o).Error)

	err := db.Model(&Order{ID: o.ID}).Updates(map[string]any{"total_price": 1}).Error
	assert.True(t, errors.Is(err, ErrImmutable))

	err = db.Model(&Order{ID: o.ID}).Updates(map[string]any{"order_items": []Item{}}).Error
	assert.True(t, errors.Is(err, ErrImmutable))

	require.NoError(t, db.Model(&Order{ID: o.ID}).Updates(map[string]any{"status": StatusPaid}).Error)

	var got Order
	require.NoError(t, db.First(&got, "id = ?", o.ID).Error)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, int64(2600), got.TotalPrice)
	assert.Equal(t, o.Items, got.Items)
	assert.Equal(t, 2, got.Units())
}

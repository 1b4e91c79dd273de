package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// VariantSoldOutEvent is emitted when a reservation takes a variant to zero.
type VariantSoldOutEvent struct {
	ProductID string    `json:"product_id"`
	Size      string    `json:"size"`
	SoldOutAt time.Time `json:"sold_out_at"`
}

// VariantSoldOutV1 is the typed event definition for sold-out variants.
// Subject: events.inventory.v1.variant-sold-out
var VariantSoldOutV1 = helper.EventDefinition[VariantSoldOutEvent](
	"inventory", "VariantSoldOut", "v1",
)

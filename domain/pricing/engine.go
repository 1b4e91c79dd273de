// Package pricing turns priced lines, a promo discount and a delivery method
// into a payable total. It performs no I/O.
package pricing

import (
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
)

// Line is a priced cart line.
type Line struct {
	Price    int64 `json:"price"`
	Quantity int   `json:"quantity"`
}

// Breakdown is the result of pricing a cart.
type Breakdown struct {
	Subtotal    int64 `json:"subtotal"`
	Discount    int64 `json:"discount"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// Engine prices carts against a delivery fee table.
type Engine struct {
	fees map[order.DeliveryMethod]int64
}

// DefaultFees is used when no fee table is configured.
var DefaultFees = map[order.DeliveryMethod]int64{
	order.DeliveryPickupPoint: 300,
	order.DeliveryCourier:     600,
}

// NewEngine creates an engine. A nil or empty table falls back to DefaultFees.
func NewEngine(fees map[order.DeliveryMethod]int64) *Engine {
	if len(fees) == 0 {
		fees = DefaultFees
	}
	table := make(map[order.DeliveryMethod]int64, len(fees))
	for k, v := range fees {
		table[k] = v
	}
	return &Engine{fees: table}
}

// Fee returns the delivery fee for method.
func (e *Engine) Fee(method order.DeliveryMethod) (int64, error) {
	fee, ok := e.fees[method]
	if !ok {
		return 0, fault.UnknownDeliveryMethod(string(method))
	}
	return fee, nil
}

// Subtotal sums price times quantity.
func Subtotal(lines []Line) int64 {
	var s int64
	for _, l := range lines {
		s += l.Price * int64(l.Quantity)
	}
	return s
}

// Price computes the breakdown. The discount is clamped to [0, subtotal] and
// the total never drops below the delivery fee.
func (e *Engine) Price(lines []Line, promoDiscount int64, method order.DeliveryMethod) (Breakdown, error) {
	fee, err := e.Fee(method)
	if err != nil {
		return Breakdown{}, err
	}

	subtotal := Subtotal(lines)
	discount := min(max(promoDiscount, 0), max(subtotal, 0))

	total := subtotal - discount + fee
	if total < fee {
		total = fee
	}

	return Breakdown{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: fee,
		Total:       total,
	}, nil
}

// Package customer classifies shoppers into segments from their order
// history.
package customer

import (
	"time"
)

// Segment is a derived commercial tier.
type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentRegular Segment = "regular"
	SegmentWhale   Segment = "whale"
	SegmentChurn   Segment = "churn"
)

// Valid reports whether s is a known segment.
func (s Segment) Valid() bool {
	switch s {
	case SegmentNew, SegmentRegular, SegmentWhale, SegmentChurn:
		return true
	}
	return false
}

// Aggregate is the order history summary of one customer. Cancelled orders
// are excluded before aggregation.
type Aggregate struct {
	TotalSpent    int64      `json:"total_spent"`
	OrdersCount   int        `json:"orders_count"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
}

// Profile is an aggregate with its classification.
type Profile struct {
	CustomerID string  `json:"customer_id"`
	Segment    Segment `json:"segment"`
	Aggregate
}

// Thresholds tune classification. Stored as a single admin-editable row.
type Thresholds struct {
	ID              uint      `gorm:"primarykey" json:"-"`
	VIPThreshold    int64     `gorm:"not null" json:"vip_threshold"`
	ChurnWindowDays int       `gorm:"not null" json:"churn_window_days"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for Thresholds model.
func (Thresholds) TableName() string {
	return "segment_settings"
}

// ChurnWindow returns the trailing inactivity window.
func (t Thresholds) ChurnWindow() time.Duration {
	return time.Duration(t.ChurnWindowDays) * 24 * time.Hour
}

// Classify derives the segment. Rules apply in order: whale, new, churn,
// regular.
func Classify(agg Aggregate, th Thresholds, now time.Time) Segment {
	switch {
	case agg.OrdersCount > 0 && agg.TotalSpent >= th.VIPThreshold:
		return SegmentWhale
	case agg.OrdersCount == 0:
		return SegmentNew
	case agg.LastOrderDate != nil && now.Sub(*agg.LastOrderDate) > th.ChurnWindow():
		return SegmentChurn
	default:
		return SegmentRegular
	}
}

package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	th := Thresholds{VIPThreshold: 15000, ChurnWindowDays: 90}
	recent := now.AddDate(0, 0, -10)
	stale := now.AddDate(0, 0, -120)

	tests := []struct {
		name string
		agg  Aggregate
		want Segment
	}{
		{"no orders", Aggregate{}, SegmentNew},
		{"whale", Aggregate{TotalSpent: 20000, OrdersCount: 3, LastOrderDate: &recent}, SegmentWhale},
		{"whale at threshold", Aggregate{TotalSpent: 15000, OrdersCount: 1, LastOrderDate: &recent}, SegmentWhale},
		{"whale even when stale", Aggregate{TotalSpent: 30000, OrdersCount: 2, LastOrderDate: &stale}, SegmentWhale},
		{"churn", Aggregate{TotalSpent: 3000, OrdersCount: 1, LastOrderDate: &stale}, SegmentChurn},
		{"regular", Aggregate{TotalSpent: 3000, OrdersCount: 2, LastOrderDate: &recent}, SegmentRegular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.agg, th, now))
		})
	}
}

func TestClassify_ZeroThresholdDoesNotMakeNewCustomersWhales(t *testing.T) {
	now := time.Now()
	assert.Equal(t, SegmentNew, Classify(Aggregate{}, Thresholds{VIPThreshold: 0, ChurnWindowDays: 30}, now))
}

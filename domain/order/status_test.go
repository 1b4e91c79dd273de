package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusNew, StatusPaid, true},
		{StatusNew, StatusShipping, true},
		{StatusPaid, StatusAssembly, true},
		{StatusShipping, StatusCompleted, true},
		{StatusNew, StatusCancelled, true},
		{StatusShipping, StatusCancelled, true},
		{StatusPaid, StatusNew, false},
		{StatusReady, StatusReady, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusNew, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusNew, Status("lost"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_HoldsStock(t *testing.T) {
	for _, s := range Statuses() {
		assert.Equal(t, s != StatusCancelled, s.HoldsStock(), s)
	}
}

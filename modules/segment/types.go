package segment

import (
	"context"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
)

// Service names registered under services.segment.*.
const (
	ServiceClassify      = "classify"
	ServiceListCustomers = "list-customers"
	ServiceGetThresholds = "get-thresholds"
	ServiceSetThresholds = "set-thresholds"
)

// ClassifyRequest is the request for classify.
type ClassifyRequest struct {
	CustomerID string `json:"customer_id"`
}

// ProfileResponse is the response for classify.
type ProfileResponse struct {
	fault.Reply
	Profile *customer.Profile `json:"profile,omitempty"`
}

// ListCustomersRequest is the request for list-customers.
type ListCustomersRequest struct {
	Segment customer.Segment `json:"segment,omitempty"`
	Limit   int              `json:"limit,omitempty"`
	Offset  int              `json:"offset,omitempty"`
}

// CustomerSummary is one CRM row.
type CustomerSummary struct {
	customer.Profile
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CancelledCount int    `json:"cancelled_count"`
}

// ListCustomersResponse is the response for list-customers.
type ListCustomersResponse struct {
	fault.Reply
	Customers []CustomerSummary `json:"customers"`
	Total     int               `json:"total"`
}

// ThresholdsRequest is the request for get-thresholds and set-thresholds.
type ThresholdsRequest struct {
	VIPThreshold    int64 `json:"vip_threshold,omitempty"`
	ChurnWindowDays int   `json:"churn_window_days,omitempty"`
}

// ThresholdsResponse is the response for get-thresholds and set-thresholds.
type ThresholdsResponse struct {
	fault.Reply
	Thresholds customer.Thresholds `json:"thresholds"`
}

// SegmentPort is the contract other modules use to classify customers.
type SegmentPort interface {
	Classify(ctx context.Context, customerID string) (*customer.Profile, error)
	ListCustomers(ctx context.Context, req *ListCustomersRequest) (*ListCustomersResponse, error)
	GetThresholds(ctx context.Context) (*customer.Thresholds, error)
	SetThresholds(ctx context.Context, vipThreshold int64, churnWindowDays int) (*customer.Thresholds, error)
}

package segment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/paging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsID is the primary key of the single thresholds row.
const settingsID = 1

// Classifier derives customer segments from order history. Nothing is
// cached: every call reads the current orders and thresholds.
type Classifier struct {
	db       *gorm.DB
	defaults customer.Thresholds
	now      func() time.Time
}

// NewClassifier creates a classifier. defaults apply until an admin saves
// thresholds.
func NewClassifier(db *gorm.DB, defaults customer.Thresholds) *Classifier {
	return &Classifier{db: db, defaults: defaults, now: time.Now}
}

// Thresholds returns the saved thresholds or the configured defaults.
func (c *Classifier) Thresholds(ctx context.Context) (customer.Thresholds, error) {
	var th customer.Thresholds
	err := c.db.WithContext(ctx).First(&th, settingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.defaults, nil
	}
	if err != nil {
		return customer.Thresholds{}, fault.Unavailable("segmentation", fmt.Errorf("failed to load thresholds: %w", err))
	}
	return th, nil
}

// SetThresholds validates and saves new thresholds.
func (c *Classifier) SetThresholds(ctx context.Context, vipThreshold int64, churnWindowDays int) (customer.Thresholds, error) {
	if vipThreshold <= 0 {
		return customer.Thresholds{}, fault.Validation("vip_threshold must be positive, got %d", vipThreshold)
	}
	if churnWindowDays < 1 {
		return customer.Thresholds{}, fault.Validation("churn_window_days must be at least 1, got %d", churnWindowDays)
	}

	th := customer.Thresholds{
		ID:              settingsID,
		VIPThreshold:    vipThreshold,
		ChurnWindowDays: churnWindowDays,
		UpdatedAt:       c.now(),
	}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vip_threshold", "churn_window_days", "updated_at"}),
	}).Create(&th).Error
	if err != nil {
		return customer.Thresholds{}, fault.Unavailable("segmentation", fmt.Errorf("failed to save thresholds: %w", err))
	}
	return th, nil
}

// Aggregate summarises the customer's non-cancelled orders.
func (c *Classifier) Aggregate(ctx context.Context, customerID string) (customer.Aggregate, error) {
	var totals struct {
		Total int64
		Count int
	}
	base := func() *gorm.DB {
		return c.db.WithContext(ctx).Model(&order.Order{}).
			Where("customer_id = ? AND status <> ?", customerID, order.StatusCancelled)
	}

	if err := base().Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS count").Scan(&totals).Error; err != nil {
		return customer.Aggregate{}, fault.Unavailable("segmentation", fmt.Errorf("failed to aggregate orders: %w", err))
	}

	agg := customer.Aggregate{TotalSpent: totals.Total, OrdersCount: totals.Count}
	if totals.Count == 0 {
		return agg, nil
	}

	// MAX(created_at) comes back as text on SQLite, so read the newest row.
	var last order.Order
	if err := base().Select("created_at").Order("created_at DESC").Take(&last).Error; err != nil {
		return customer.Aggregate{}, fault.Unavailable("segmentation", fmt.Errorf("failed to read last order: %w", err))
	}
	agg.LastOrderDate = &last.CreatedAt
	return agg, nil
}

// Classify returns the customer's current profile.
func (c *Classifier) Classify(ctx context.Context, customerID string) (*customer.Profile, error) {
	customerID = NormalizeCustomerID(customerID)
	if customerID == "" {
		return nil, fault.Validation("customer_id is required")
	}

	th, err := c.Thresholds(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := c.Aggregate(ctx, customerID)
	if err != nil {
		return nil, err
	}

	return &customer.Profile{
		CustomerID: customerID,
		Segment:    customer.Classify(agg, th, c.now()),
		Aggregate:  agg,
	}, nil
}

// ListCustomers builds the CRM view: every customer with at least one order,
// highest spenders first.
func (c *Classifier) ListCustomers(ctx context.Context, req ListCustomersRequest) ([]CustomerSummary, int, error) {
	if req.Segment != "" && !req.Segment.Valid() {
		return nil, 0, fault.Validation("unknown segment %q", req.Segment)
	}

	th, err := c.Thresholds(ctx)
	if err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	if err := c.db.WithContext(ctx).
		Select("customer_id", "status", "total_price", "customer_info", "created_at").
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, 0, fault.Unavailable("segmentation", fmt.Errorf("failed to load orders: %w", err))
	}

	byCustomer := map[string]*CustomerSummary{}
	for i := range orders {
		o := &orders[i]
		s, ok := byCustomer[o.CustomerID]
		if !ok {
			s = &CustomerSummary{Profile: customer.Profile{CustomerID: o.CustomerID}}
			byCustomer[o.CustomerID] = s
		}
		// Orders are ascending, so the latest contact details win.
		s.Name = o.CustomerInfo.Name
		s.Email = o.CustomerInfo.Email
		s.Phone = o.CustomerInfo.Phone
		if o.Status == order.StatusCancelled {
			s.CancelledCount++
			continue
		}
		s.TotalSpent += o.TotalPrice
		s.OrdersCount++
		created := o.CreatedAt
		s.LastOrderDate = &created
	}

	now := c.now()
	result := make([]CustomerSummary, 0, len(byCustomer))
	for _, s := range byCustomer {
		s.Segment = customer.Classify(s.Aggregate, th, now)
		if req.Segment != "" && s.Segment != req.Segment {
			continue
		}
		result = append(result, *s)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSpent != result[j].TotalSpent {
			return result[i].TotalSpent > result[j].TotalSpent
		}
		return result[i].CustomerID < result[j].CustomerID
	})

	total := len(result)
	return paging.Slice(result, req.Offset, req.Limit), total, nil
}

// NormalizeCustomerID canonicalises guest e-mail identities.
func NormalizeCustomerID(id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, "@") {
		return strings.ToLower(id)
	}
	return id
}

package segment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/domain/customer"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module classifies customers and serves the CRM listing.
type Module struct {
	classifier *Classifier
	logger     types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new segmentation module.
func NewModule(db *gorm.DB, defaults customer.Thresholds, logger types.Logger) *Module {
	return &Module{
		classifier: NewClassifier(db, defaults),
		logger:     logger.WithModule("segment"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "segment"
}

// RegisterServices registers the segmentation services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceClassify, json.Unmarshal, json.Marshal, m.classify,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceClassify, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListCustomers, json.Unmarshal, json.Marshal, m.listCustomers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListCustomers, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetThresholds, json.Unmarshal, json.Marshal, m.getThresholds,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetThresholds, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSetThresholds, json.Unmarshal, json.Marshal, m.setThresholds,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSetThresholds, err)
	}

	m.logger.Info("Registered segment services",
		"services", []string{ServiceClassify, ServiceListCustomers, ServiceGetThresholds, ServiceSetThresholds})
	return nil
}

// Start logs the thresholds in effect.
func (m *Module) Start(ctx context.Context) error {
	th, err := m.classifier.Thresholds(ctx)
	if err != nil {
		return fmt.Errorf("failed to load thresholds: %w", err)
	}
	m.logger.Info("Segment module started",
		"vip_threshold", th.VIPThreshold, "churn_window_days", th.ChurnWindowDays)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Segment module stopped")
	return nil
}

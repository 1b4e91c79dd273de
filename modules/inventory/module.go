package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module exposes the inventory ledger as request-reply services.
type Module struct {
	db       *gorm.DB
	ledger   *Ledger
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new inventory module.
func NewModule(db *gorm.DB, logger types.Logger) *Module {
	logger = logger.WithModule("inventory")
	return &Module{
		db:     db,
		ledger: NewLedger(db, logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "inventory"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.VariantSoldOutV1.ToBase(),
	}
}

// RegisterServices registers the inventory services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetStock, json.Unmarshal, json.Marshal, m.getStock,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStock, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceReserve, json.Unmarshal, json.Marshal, m.reserve,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceReserve, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRelease, json.Unmarshal, json.Marshal, m.release,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRelease, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSetStock, json.Unmarshal, json.Marshal, m.setStock,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSetStock, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListVariants, json.Unmarshal, json.Marshal, m.listVariants,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListVariants, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteVariant, json.Unmarshal, json.Marshal, m.deleteVariant,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteVariant, err)
	}

	m.logger.Info("Registered inventory services",
		"services", []string{ServiceGetStock, ServiceReserve, ServiceRelease, ServiceSetStock, ServiceListVariants, ServiceDeleteVariant})
	return nil
}

// Start verifies the module has a database.
func (m *Module) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, sold-out events will not be published")
	}
	m.logger.Info("Inventory module started")
	return nil
}

// Stop shuts down the module. The shared database is closed by its owner.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Inventory module stopped")
	return nil
}

// Health pings the database.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get sql.DB: %v", err)}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Ledger returns the ledger backing the services.
func (m *Module) Ledger() *Ledger {
	return m.ledger
}

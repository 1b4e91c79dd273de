package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/domain/pricing"
	"github.com/example/storefront/events"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module assembles orders and runs order administration.
type Module struct {
	repo           *Repository
	engine         *pricing.Engine
	persistTimeout time.Duration

	products ProductSource
	stock    StockLedger
	promos   Promotions
	segments Segments

	assembler *Assembler
	manager   *Manager
	eventBus  mono.EventBus
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
)

// NewModule creates a new order module.
func NewModule(db *gorm.DB, engine *pricing.Engine, persistTimeout time.Duration, logger types.Logger) *Module {
	return &Module{
		repo:           NewRepository(db),
		engine:         engine,
		persistTimeout: persistTimeout,
		logger:         logger.WithModule("order"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "order"
}

// Dependencies returns the modules whose services checkout calls.
func (m *Module) Dependencies() []string {
	return []string{"catalog", "inventory", "promotion", "segment"}
}

// SetDependencyServiceContainer wires an adapter for each dependency.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "catalog":
		m.products = catalogmod.NewCatalogAdapter(container)
	case "inventory":
		m.stock = inventory.NewInventoryAdapter(container)
	case "promotion":
		m.promos = promotion.NewPromotionAdapter(container)
	case "segment":
		m.segments = segment.NewSegmentAdapter(container)
	}
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.OrderCreatedV1.ToBase(),
		events.OrderStatusChangedV1.ToBase(),
	}
}

// RegisterServices registers the order services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.create,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceQuote, json.Unmarshal, json.Marshal, m.quote,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceQuote, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGet, json.Unmarshal, json.Marshal, m.get,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGet, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.list,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceTransition, json.Unmarshal, json.Marshal, m.transition,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceTransition, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSetTracking, json.Unmarshal, json.Marshal, m.setTracking,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSetTracking, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.delete,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}

	m.logger.Info("Registered order services",
		"services", []string{ServiceCreate, ServiceQuote, ServiceGet, ServiceList, ServiceTransition, ServiceSetTracking, ServiceDelete})
	return nil
}

// Start builds the assembler once every dependency is wired.
func (m *Module) Start(_ context.Context) error {
	switch {
	case m.products == nil:
		return fmt.Errorf("catalog dependency not set")
	case m.stock == nil:
		return fmt.Errorf("inventory dependency not set")
	case m.promos == nil:
		return fmt.Errorf("promotion dependency not set")
	case m.segments == nil:
		return fmt.Errorf("segment dependency not set")
	}

	assembler, err := NewAssembler(Dependencies{
		Store:          m.repo,
		Products:       m.products,
		Stock:          m.stock,
		Promos:         m.promos,
		Segments:       m.segments,
		Engine:         m.engine,
		Logger:         m.logger,
		PersistTimeout: m.persistTimeout,
	})
	if err != nil {
		return err
	}
	m.assembler = assembler
	m.manager = NewManager(m.repo, m.stock, m.logger)

	if m.eventBus == nil {
		m.logger.Warn("EventBus not set, order events will not be published")
	}
	m.logger.Info("Order module started", "persist_timeout", m.assembler.persistTimeout)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Order module stopped")
	return nil
}

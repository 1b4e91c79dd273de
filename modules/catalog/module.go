package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module manages products and serves storefront reads.
type Module struct {
	catalog *Catalog
	store   cache.Store
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new catalog module reading through store.
func NewModule(db *gorm.DB, store cache.Store, logger types.Logger) *Module {
	logger = logger.WithModule("catalog")
	return &Module{
		catalog: NewCatalog(NewRepository(db), store, logger),
		store:   store,
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// RegisterServices registers the catalog services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.create,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.update,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.delete,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
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
		container, ServiceSnapshot, json.Unmarshal, json.Marshal, m.snapshot,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSnapshot, err)
	}

	m.logger.Info("Registered catalog services",
		"services", []string{ServiceCreate, ServiceUpdate, ServiceDelete, ServiceGet, ServiceList, ServiceSnapshot})
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("cache store not set")
	}
	m.logger.Info("Catalog module started", "cache", m.store.Stats().Enabled)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Catalog module stopped")
	return nil
}

// Catalog returns the catalog backing the services.
func (m *Module) Catalog() *Catalog {
	return m.catalog
}

package promotion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module evaluates, redeems and manages promo codes.
type Module struct {
	repo      *Repository
	evaluator *Evaluator
	admin     *Admin
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new promotion module.
func NewModule(db *gorm.DB, logger types.Logger) *Module {
	repo := NewRepository(db)
	return &Module{
		repo:      repo,
		evaluator: NewEvaluator(repo),
		admin:     NewAdmin(repo),
		logger:    logger.WithModule("promotion"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "promotion"
}

// RegisterServices registers the promotion services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceEvaluate, json.Unmarshal, json.Marshal, m.evaluate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceEvaluate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRedeem, json.Unmarshal, json.Marshal, m.redeem,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRedeem, err)
	}

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
		container, ServiceGet, json.Unmarshal, json.Marshal, m.get,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGet, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.list,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}

	m.logger.Info("Registered promotion services",
		"services", []string{ServiceEvaluate, ServiceRedeem, ServiceCreate, ServiceUpdate, ServiceGet, ServiceList})
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Promotion module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Promotion module stopped")
	return nil
}

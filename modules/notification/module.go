package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/storefront/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module turns domain events into the admin notification feed. Delivering
// the feed to a chat or mail relay is left to an external consumer.
type Module struct {
	feed   *Feed
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a notification module keeping at most capacity entries.
func NewModule(capacity int, logger types.Logger) *Module {
	return &Module{
		feed:   NewFeed(capacity),
		logger: logger.WithModule("notification"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "notification"
}

// Feed returns the underlying feed.
func (m *Module) Feed() *Feed {
	return m.feed
}

// RegisterEventConsumers subscribes to order and inventory events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderCreatedV1, m.handleOrderCreated, m); err != nil {
		return fmt.Errorf("failed to register OrderCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.OrderStatusChangedV1, m.handleOrderStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register OrderStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.VariantSoldOutV1, m.handleVariantSoldOut, m); err != nil {
		return fmt.Errorf("failed to register VariantSoldOut consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"OrderCreated", "OrderStatusChanged", "VariantSoldOut"})
	return nil
}

// RegisterServices registers the feed query service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.list,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}
	m.logger.Info("Registered notification services", "services", []string{ServiceList})
	return nil
}

func (m *Module) handleOrderCreated(_ context.Context, ev events.OrderCreatedEvent, _ *mono.Msg) error {
	lines := make([]string, 0, len(ev.Lines))
	for _, l := range ev.Lines {
		lines = append(lines, fmt.Sprintf("%s (%s) x%d", l.Name, l.Size, l.Quantity))
	}
	msg := fmt.Sprintf("%s, %s: %s. Total %d, %s, %s",
		ev.CustomerName, ev.Phone, strings.Join(lines, "; "), ev.TotalPrice, ev.DeliveryMethod, ev.PaymentMethod)
	if ev.PromoCode != "" {
		msg += ", promo " + ev.PromoCode
	}

	n := m.feed.Add(KindOrderCreated, "New order "+ev.Ref, msg)
	m.logger.Debug("Notification recorded", "id", n.ID, "kind", n.Kind, "ref", ev.Ref)
	return nil
}

func (m *Module) handleOrderStatusChanged(_ context.Context, ev events.OrderStatusChangedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Order %s moved from %s to %s", ev.Ref, ev.From, ev.To)
	if ev.StockReleased {
		msg += ", stock returned"
	}
	if ev.TrackingNumber != "" {
		msg += ", tracking " + ev.TrackingNumber
	}

	n := m.feed.Add(KindOrderStatusChanged, "Order "+ev.Ref+" "+ev.To, msg)
	m.logger.Debug("Notification recorded", "id", n.ID, "kind", n.Kind, "ref", ev.Ref)
	return nil
}

func (m *Module) handleVariantSoldOut(_ context.Context, ev events.VariantSoldOutEvent, _ *mono.Msg) error {
	n := m.feed.Add(KindVariantSoldOut, "Sold out",
		fmt.Sprintf("Size %s of product %s is sold out", ev.Size, ev.ProductID))
	m.logger.Debug("Notification recorded", "id", n.ID, "kind", n.Kind, "product_id", ev.ProductID)
	return nil
}

func (m *Module) list(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	return ListResponse{Notifications: m.feed.List(req.Kind, req.Limit)}, nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Notification module started", "capacity", m.feed.capacity)
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Notification module stopped", "notifications", m.feed.Len())
	return nil
}

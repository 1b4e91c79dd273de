package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/config"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/notification"
	ordermod "github.com/example/storefront/modules/order"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

// Options configures the HTTP module.
type Options struct {
	HTTP     config.HTTPConfig
	Identity config.IdentityConfig
	// CheckoutRateLimit is the number of order submissions allowed per
	// client per minute. Zero disables the limit.
	CheckoutRateLimit int
	// Redis, when set, shares the checkout rate limit across instances.
	Redis *redis.Client
}

// Module is the driving adapter that exposes the storefront and back-office
// REST endpoints. It reaches every other module through its Port.
type Module struct {
	opts     Options
	verifier *Verifier
	app      *fiber.App
	logger   types.Logger

	catalog       catalogmod.CatalogPort
	inventory     inventory.InventoryPort
	promotions    promotion.PromotionPort
	segments      segment.SegmentPort
	orders        ordermod.OrderPort
	notifications notification.NotificationPort
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new API module.
func NewModule(opts Options, logger types.Logger) *Module {
	if opts.Identity.AdminRole == "" {
		opts.Identity.AdminRole = "admin"
	}
	return &Module{
		opts:     opts,
		verifier: NewVerifier(opts.Identity.JWTSecret, opts.Identity.Issuer),
		logger:   logger.WithModule("api"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"catalog", "inventory", "promotion", "segment", "order", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "catalog":
		m.catalog = catalogmod.NewCatalogAdapter(container)
	case "inventory":
		m.inventory = inventory.NewInventoryAdapter(container)
	case "promotion":
		m.promotions = promotion.NewPromotionAdapter(container)
	case "segment":
		m.segments = segment.NewSegmentAdapter(container)
	case "order":
		m.orders = ordermod.NewOrderAdapter(container)
	case "notification":
		m.notifications = notification.NewNotificationAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	switch {
	case m.catalog == nil:
		return fmt.Errorf("catalog dependency not set")
	case m.inventory == nil:
		return fmt.Errorf("inventory dependency not set")
	case m.promotions == nil:
		return fmt.Errorf("promotion dependency not set")
	case m.segments == nil:
		return fmt.Errorf("segment dependency not set")
	case m.orders == nil:
		return fmt.Errorf("order dependency not set")
	case m.notifications == nil:
		return fmt.Errorf("notification dependency not set")
	}

	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.opts.HTTP.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", addr,
		"checkout_rate_limit", m.opts.CheckoutRateLimit, "shared_limiter", m.opts.Redis != nil)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.opts.HTTP.Port,
		},
	}
}

func (m *Module) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api/v1", IdentityMiddleware(m.verifier))

	products := api.Group("/products")
	products.Get("/", m.listProducts)
	products.Get("/:id", m.getProduct)
	products.Get("/:id/stock/:size", m.getStock)

	api.Post("/promo/evaluate", m.evaluatePromo)
	api.Post("/checkout/quote", m.quote)
	api.Post("/orders",
		RateLimitMiddleware(m.opts.Redis, m.opts.CheckoutRateLimit, time.Minute, m.logger),
		m.createOrder)

	me := api.Group("/me", RequireCustomer())
	me.Get("/orders", m.myOrders)
	me.Get("/segment", m.mySegment)

	admin := api.Group("/admin", RequireRole(m.opts.Identity.AdminRole))

	adminProducts := admin.Group("/products")
	adminProducts.Get("/", m.adminListProducts)
	adminProducts.Post("/", m.adminCreateProduct)
	adminProducts.Get("/:id", m.adminGetProduct)
	adminProducts.Patch("/:id", m.adminUpdateProduct)
	adminProducts.Delete("/:id", m.adminDeleteProduct)
	adminProducts.Get("/:id/variants", m.adminListVariants)
	adminProducts.Put("/:id/variants/:size", m.adminSetStock)
	adminProducts.Delete("/:id/variants/:size", m.adminDeleteVariant)

	promos := admin.Group("/promocodes")
	promos.Get("/", m.adminListPromos)
	promos.Post("/", m.adminCreatePromo)
	promos.Get("/:code", m.adminGetPromo)
	promos.Patch("/:code", m.adminUpdatePromo)

	orders := admin.Group("/orders")
	orders.Get("/", m.adminListOrders)
	orders.Get("/:id", m.adminGetOrder)
	orders.Put("/:id/status", m.adminSetStatus)
	orders.Put("/:id/tracking", m.adminSetTracking)
	orders.Delete("/:id", m.adminDeleteOrder)

	customers := admin.Group("/customers")
	customers.Get("/", m.adminListCustomers)
	customers.Get("/:id/segment", m.adminCustomerSegment)

	admin.Get("/settings/segmentation", m.adminGetThresholds)
	admin.Put("/settings/segmentation", m.adminSetThresholds)

	admin.Get("/notifications", m.adminNotifications)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"port":   m.opts.HTTP.Port,
		},
	})
}

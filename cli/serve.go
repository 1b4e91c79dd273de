package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/storefront/config"
	"github.com/example/storefront/database"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/domain/pricing"
	"github.com/example/storefront/modules/api"
	"github.com/example/storefront/modules/cache"
	"github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/notification"
	ordermod "github.com/example/storefront/modules/order"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront application",
	Long: `Start every storefront module inside one mono application and serve
the HTTP API until SIGINT or SIGTERM, then shut down gracefully.

The schema is migrated on startup.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("=== Storefront ===")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return err
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		database.Close(db)
		return fmt.Errorf("failed to create application: %w", err)
	}

	logger := app.Logger()

	cacheModule := cache.NewModule(cfg.Redis, logger)
	defaults := customer.Thresholds{
		VIPThreshold:    cfg.Segmentation.VIPThreshold,
		ChurnWindowDays: cfg.Segmentation.ChurnWindowDays,
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(cacheModule)
	app.Register(catalog.NewModule(db, cacheModule.Store(), logger))
	app.Register(inventory.NewModule(db, logger))
	app.Register(promotion.NewModule(db, logger))
	app.Register(segment.NewModule(db, defaults, logger))
	app.Register(notification.NewModule(notification.DefaultCapacity, logger))
	app.Register(ordermod.NewModule(db, pricing.NewEngine(deliveryFees(cfg.Checkout)), cfg.Checkout.PersistTimeout, logger))
	app.Register(api.NewModule(api.Options{
		HTTP:              cfg.HTTP,
		Identity:          cfg.Identity,
		CheckoutRateLimit: cfg.Checkout.RateLimit,
		Redis:             cacheModule.Client(),
	}, logger))

	if err := app.Start(context.Background()); err != nil {
		database.Close(db)
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
			"database": func(ctx context.Context) error {
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}

func deliveryFees(cfg config.CheckoutConfig) map[order.DeliveryMethod]int64 {
	fees := make(map[order.DeliveryMethod]int64, len(cfg.DeliveryFees))
	for method, fee := range cfg.DeliveryFees {
		fees[order.DeliveryMethod(method)] = fee
	}
	return fees
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Database: %s", cfg.Database.Driver)
	if cfg.RedisEnabled() {
		log.Printf("Redis: %s (catalog cache, shared checkout limiter)", cfg.Redis.Addr)
	} else {
		log.Println("Redis: disabled (no catalog cache, in-process checkout limiter)")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTP.Port)
	log.Println("  GET    /api/v1/products                    - Browse the catalog")
	log.Println("  GET    /api/v1/products/:id/stock/:size    - Stock for one size")
	log.Println("  POST   /api/v1/promo/evaluate              - Check a promo code")
	log.Println("  POST   /api/v1/checkout/quote              - Price a cart")
	log.Println("  POST   /api/v1/orders                      - Place an order")
	log.Println("  GET    /api/v1/me/orders                   - Order history (token)")
	log.Println("  GET    /api/v1/me/segment                  - Customer segment (token)")
	log.Println("  *      /api/v1/admin/...                   - Back office (admin token)")
	log.Println("  GET    /health                             - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

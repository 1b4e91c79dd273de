package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/config"
	"github.com/example/storefront/database"
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/promo"
	"github.com/example/storefront/modules/cache"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/promotion"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog and promo codes",
	Long: `Populate an empty catalog with demo products and stock, and create the
demo promo codes. Products are skipped when the catalog already has any;
existing promo codes are left untouched.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedResult struct {
	Products int
	Promos   int
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	// The application is never started; it only supplies the logger.
	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := seedDemo(ctx, db, app.Logger(), time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d products and %d promo codes\n", res.Products, res.Promos)
	return nil
}

// seedDemo writes the demo data through the catalog and promotion services
// so the usual validation applies.
func seedDemo(ctx context.Context, db *gorm.DB, logger types.Logger, now time.Time) (seedResult, error) {
	var res seedResult

	var count int64
	if err := db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return res, fmt.Errorf("failed to count products: %w", err)
	}

	if count == 0 {
		cat := catalogmod.NewCatalog(catalogmod.NewRepository(db), &cache.Noop{}, logger)
		for _, req := range demoProducts(now) {
			if _, err := cat.Create(ctx, req); err != nil {
				return res, fmt.Errorf("failed to seed product %q: %w", req.Name, err)
			}
			res.Products++
		}
	}

	admin := promotion.NewAdmin(promotion.NewRepository(db))
	for _, req := range demoPromos() {
		_, err := admin.Create(ctx, req)
		if errors.Is(err, fault.ErrConflict) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to seed promo %s: %w", req.Code, err)
		}
		res.Promos++
	}
	return res, nil
}

func demoProducts(now time.Time) []catalogmod.CreateRequest {
	cost := func(v int64) *int64 { return &v }
	dropDate := now.AddDate(0, 0, 30)

	return []catalogmod.CreateRequest{
		{
			Name:        "Logo Tee",
			Description: "Heavyweight cotton tee with a chest print",
			Price:       2500,
			CostPrice:   cost(900),
			Categories:  []catalog.Category{catalog.CategoryTShirts},
			Images:      []string{"logo-tee-front.jpg", "logo-tee-back.jpg"},
			IsNew:       true,
			Variants:    []catalogmod.VariantInput{{Size: "S", Stock: 12}, {Size: "M", Stock: 20}, {Size: "L", Stock: 15}, {Size: "XL", Stock: 4}},
		},
		{
			Name:        "Heavy Hoodie",
			Description: "Brushed fleece hoodie",
			Price:       6500,
			CostPrice:   cost(2600),
			Categories:  []catalog.Category{catalog.CategoryHoodies, catalog.CategoryOuterwear},
			Images:      []string{"hoodie.jpg"},
			Variants:    []catalogmod.VariantInput{{Size: "M", Stock: 8}, {Size: "L", Stock: 6}},
		},
		{
			Name:       "Cargo Pants",
			Price:      5200,
			Categories: []catalog.Category{catalog.CategoryPants},
			Images:     []string{"cargo.jpg"},
			Variants:   []catalogmod.VariantInput{{Size: "30", Stock: 5}, {Size: "32", Stock: 7}, {Size: "34", Stock: 0}},
		},
		{
			Name:       "Washed Cap",
			Price:      1800,
			Categories: []catalog.Category{catalog.CategoryAccessories},
			Images:     []string{"cap.jpg"},
			Variants:   []catalogmod.VariantInput{{Size: "OS", Stock: 40}},
		},
		{
			Name:        "Members Coach Jacket",
			Description: "Available to VIP customers only",
			Price:       14000,
			Categories:  []catalog.Category{catalog.CategoryOuterwear},
			Images:      []string{"coach-jacket.jpg"},
			IsVIPOnly:   true,
			Variants:    []catalogmod.VariantInput{{Size: "M", Stock: 3}, {Size: "L", Stock: 3}},
		},
		{
			Name:        "Winter Drop Parka",
			Price:       19000,
			Categories:  []catalog.Category{catalog.CategoryOuterwear},
			Images:      []string{"parka.jpg"},
			IsNew:       true,
			ReleaseDate: &dropDate,
			Variants:    []catalogmod.VariantInput{{Size: "M", Stock: 10}, {Size: "L", Stock: 10}},
		},
		{
			Name:       "Archive Tee",
			Price:      2000,
			Categories: []catalog.Category{catalog.CategoryTShirts},
			Images:     []string{"archive-tee.jpg"},
			IsHidden:   true,
			Variants:   []catalogmod.VariantInput{{Size: "M", Stock: 2}},
		},
	}
}

func demoPromos() []promotion.CreateRequest {
	limit := 100
	return []promotion.CreateRequest{
		{
			Code:           "WELCOME10",
			DiscountType:   promo.DiscountPercent,
			DiscountValue:  10,
			IsActive:       true,
			TargetAudience: promo.AudienceNewUsers,
		},
		{
			Code:           "SAVE500",
			DiscountType:   promo.DiscountFixed,
			DiscountValue:  500,
			IsActive:       true,
			UsageLimit:     &limit,
			MinOrderAmount: 3000,
			TargetAudience: promo.AudienceAll,
		},
		{
			Code:           "VIP20",
			DiscountType:   promo.DiscountPercent,
			DiscountValue:  20,
			IsActive:       true,
			TargetAudience: promo.AudienceVIPOnly,
		},
	}
}

package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/storefront/database/dbtest"
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/domain/promo"
	"github.com/example/storefront/modules/cache"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockLogger implements types.Logger for testing
type mockLogger struct {
	errors atomic.Int32
}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         { m.errors.Add(1) }
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// fixture wires the assembler to the real ledger, evaluator, classifier
// and catalog over one in-memory database.
type fixture struct {
	db     *gorm.DB
	repo   *Repository
	ledger *inventory.Ledger
	promos *promotion.Repository
	logger *mockLogger
	deps   Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t)
	logger := &mockLogger{}
	f := &fixture{
		db:     db,
		repo:   NewRepository(db),
		ledger: inventory.NewLedger(db, logger),
		promos: promotion.NewRepository(db),
		logger: logger,
	}
	f.deps = Dependencies{
		Store:    f.repo,
		Products: catalogmod.NewCatalog(catalogmod.NewRepository(db), &cache.Noop{}, logger),
		Stock:    f.ledger,
		Promos:   promotion.NewEvaluator(f.promos),
		Segments: segment.NewClassifier(db, customer.Thresholds{VIPThreshold: 15000, ChurnWindowDays: 90}),
		Logger:   logger,
	}

	f.product(t, catalog.Product{ID: "shirt1", Name: "Shirt", Price: 1500, Images: []string{"shirt.jpg"}},
		catalog.Variant{Size: "M", Stock: 5}, catalog.Variant{Size: "L", Stock: 2})
	f.product(t, catalog.Product{ID: "cap1", Name: "Cap", Price: 500},
		catalog.Variant{Size: "OS", Stock: 10})
	return f
}

func (f *fixture) product(t *testing.T, p catalog.Product, variants ...catalog.Variant) {
	t.Helper()
	require.NoError(t, f.db.Create(&p).Error)
	for _, v := range variants {
		v.ProductID = p.ID
		require.NoError(t, f.db.Create(&v).Error)
	}
}

func (f *fixture) assembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(f.deps)
	require.NoError(t, err)
	return a
}

func (f *fixture) stock(t *testing.T, productID, size string) int {
	t.Helper()
	n, err := f.ledger.GetStock(context.Background(), productID, size)
	require.NoError(t, err)
	return n
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&order.Order{}).Count(&n).Error)
	return n
}

func (f *fixture) usage(t *testing.T, code string) int {
	t.Helper()
	p, err := f.promos.FindByCode(context.Background(), code)
	require.NoError(t, err)
	return p.UsageCount
}

func checkout(lines ...CartLine) CreateRequest {
	return CreateRequest{
		Cart: lines,
		Customer: order.CustomerInfo{
			Name:           "Ann",
			Phone:          "+10000000",
			Email:          "Ann@Example.com",
			Address:        "1 Main St",
			DeliveryMethod: order.DeliveryCourier,
		},
		PaymentMethod: order.PaymentCard,
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	o, replayed, err := a.Create(context.Background(), checkout(
		CartLine{ProductID: "shirt1", Size: "M", Quantity: 2},
		CartLine{ProductID: "cap1", Size: "OS", Quantity: 1},
	))
	require.NoError(t, err)
	assert.False(t, replayed)

	assert.Equal(t, order.StatusNew, o.Status)
	assert.Equal(t, "ann@example.com", o.CustomerID)
	assert.Len(t, o.Ref, refLength)
	require.Len(t, o.Items, 2)
	assert.Equal(t, order.Item{
		ProductID: "shirt1", Name: "Shirt", Image: "shirt.jpg", Size: "M",
		Price: 1500, Quantity: 2, LineTotal: 3000,
	}, o.Items[0])
	assert.Equal(t, int64(3500), o.Subtotal)
	assert.Equal(t, int64(600), o.DeliveryFee)
	assert.Equal(t, int64(4100), o.TotalPrice)

	assert.Equal(t, 3, f.stock(t, "shirt1", "M"))
	assert.Equal(t, 9, f.stock(t, "cap1", "OS"))

	stored, err := f.repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Items, stored.Items)
	assert.Equal(t, o.TotalPrice, stored.TotalPrice)
}

func TestCreate_MergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	o, _, err := a.Create(context.Background(), checkout(
		CartLine{ProductID: "shirt1", Size: "M", Quantity: 1},
		CartLine{ProductID: "cap1", Size: "OS", Quantity: 1},
		CartLine{ProductID: "shirt1", Size: "M", Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "shirt1", o.Items[0].ProductID)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, 2, f.stock(t, "shirt1", "M"))
}

// Two checkouts race for the last unit; exactly one wins.
func TestCreate_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	f.product(t, catalog.Product{ID: "tee", Name: "Tee", Price: 1000}, catalog.Variant{Size: "M", Stock: 1})
	a := f.assembler(t)

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := a.Create(context.Background(), checkout(CartLine{ProductID: "tee", Size: "M", Quantity: 1}))
			if err == nil {
				succeeded.Add(1)
				return
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	assert.Equal(t, int32(1), succeeded.Load())
	for err := range errs {
		var fe *fault.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, fault.CodeInsufficientStock, fe.Code)
		assert.Equal(t, 0, *fe.Available)
	}
	assert.Equal(t, 0, f.stock(t, "tee", "M"))
	assert.Equal(t, int64(1), f.orderCount(t))
}

// failingLedger refuses to reserve one variant, as if a concurrent
// checkout drained it after the stock precheck.
type failingLedger struct {
	StockLedger
	productID, size string
}

func (l *failingLedger) Reserve(ctx context.Context, productID, size string, quantity int) (int, error) {
	if productID == l.productID && size == l.size {
		return 0, fault.InsufficientStock(productID, size, quantity, 0)
	}
	return l.StockLedger.Reserve(ctx, productID, size, quantity)
}

func TestCreate_ReservationFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.deps.Stock = &failingLedger{StockLedger: f.ledger, productID: "cap1", size: "OS"}
	a := f.assembler(t)

	_, _, err := a.Create(context.Background(), checkout(
		CartLine{ProductID: "shirt1", Size: "M", Quantity: 2},
		CartLine{ProductID: "shirt1", Size: "L", Quantity: 1},
		CartLine{ProductID: "cap1", Size: "OS", Quantity: 1},
	))

	var fe *fault.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fault.CodeInsufficientStock, fe.Code)
	assert.Equal(t, "cap1", fe.ProductID)

	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
	assert.Equal(t, 2, f.stock(t, "shirt1", "L"))
	assert.Equal(t, 10, f.stock(t, "cap1", "OS"))
	assert.Zero(t, f.orderCount(t))
	assert.Zero(t, f.logger.errors.Load())
}

func TestCreate_PrecheckHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	_, _, err := a.Create(context.Background(), checkout(
		CartLine{ProductID: "shirt1", Size: "M", Quantity: 1},
		CartLine{ProductID: "shirt1", Size: "L", Quantity: 3},
	))

	var fe *fault.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fault.CodeInsufficientStock, fe.Code)
	assert.Equal(t, "only 2 left in size L", fe.Message)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))

	_, _, err = a.Create(context.Background(), checkout(CartLine{ProductID: "shirt1", Size: "XXL", Quantity: 1}))
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

// blockingStore never finishes an insert before its context expires.
type blockingStore struct {
	*Repository
}

func (s *blockingStore) Create(ctx context.Context, _ *order.Order) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCreate_PersistTimeoutReleasesStock(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = &blockingStore{Repository: f.repo}
	f.deps.PersistTimeout = 20 * time.Millisecond
	a := f.assembler(t)

	start := time.Now()
	_, _, err := a.Create(context.Background(), checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 2}))

	assert.True(t, errors.Is(err, fault.ErrServiceUnavailable), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
	assert.Zero(t, f.orderCount(t))
}

func TestCreate_CallerCancellationStillCompensates(t *testing.T) {
	f := newFixture(t)
	f.deps.Store = &blockingStore{Repository: f.repo}
	f.deps.PersistTimeout = time.Minute
	a := f.assembler(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := a.Create(ctx, checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
}

func seedPromo(t *testing.T, f *fixture, p promo.PromoCode) {
	t.Helper()
	if p.TargetAudience == "" {
		p.TargetAudience = promo.AudienceAll
	}
	require.NoError(t, f.promos.Create(context.Background(), &p))
}

func TestCreate_PromoRedeemedOnce(t *testing.T) {
	f := newFixture(t)
	seedPromo(t, f, promo.PromoCode{Code: "SALE10", DiscountType: promo.DiscountPercent, DiscountValue: 10, IsActive: true, MinOrderAmount: 1000})
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 2})
	req.PromoCode = " sale10 "
	o, _, err := a.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(300), o.Discount)
	assert.Equal(t, "SALE10", o.CustomerInfo.PromoCode)
	assert.Equal(t, int64(300), o.CustomerInfo.Discount)
	assert.Equal(t, int64(3000-300+600), o.TotalPrice)
	assert.Equal(t, 1, f.usage(t, "SALE10"))
}

func TestCreate_PromoRejectedBeforeReservation(t *testing.T) {
	f := newFixture(t)
	seedPromo(t, f, promo.PromoCode{Code: "SALE10", DiscountType: promo.DiscountPercent, DiscountValue: 10, IsActive: true, MinOrderAmount: 5000})
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.PromoCode = "SALE10"
	_, _, err := a.Create(context.Background(), req)

	var fe *fault.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fault.CodeMinimumNotMet, fe.Code)
	assert.Equal(t, int64(3500), fe.Shortfall)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
	assert.Zero(t, f.usage(t, "SALE10"))
}

// racingPromotions loses the last redemption to another checkout.
type racingPromotions struct {
	Promotions
}

func (p *racingPromotions) Redeem(_ context.Context, code string) error {
	return fault.UsageLimitReached(code)
}

func TestCreate_RedeemRefusedLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	limit := 1
	seedPromo(t, f, promo.PromoCode{Code: "LAST1", DiscountType: promo.DiscountFixed, DiscountValue: 200, IsActive: true, UsageLimit: &limit})
	f.deps.Promos = &racingPromotions{Promotions: f.deps.Promos}
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.PromoCode = "LAST1"
	_, _, err := a.Create(context.Background(), req)

	assert.True(t, errors.Is(err, fault.ErrUsageLimitReached))
	assert.Zero(t, f.orderCount(t))
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
	assert.Zero(t, f.usage(t, "LAST1"))
	assert.Zero(t, f.logger.errors.Load())
}

func TestCreate_Idempotent(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.IdempotencyKey = "click-42"

	first, replayed, err := a.Create(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := a.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 4, f.stock(t, "shirt1", "M"))
	assert.Equal(t, int64(1), f.orderCount(t))
}

// lateStore misses the first idempotency lookup, as if a concurrent
// checkout with the same key had not committed yet.
type lateStore struct {
	*Repository
	lookups atomic.Int32
}

func (s *lateStore) FindByIdempotencyKey(ctx context.Context, customerID, key string) (*order.Order, error) {
	if s.lookups.Add(1) == 1 {
		return nil, nil
	}
	return s.Repository.FindByIdempotencyKey(ctx, customerID, key)
}

func TestCreate_IdempotencyKeyScopedToCustomer(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.IdempotencyKey = "click-1"
	first, _, err := a.Create(context.Background(), req)
	require.NoError(t, err)

	other := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	other.Customer.Email = "bob@example.com"
	other.IdempotencyKey = "click-1"
	second, replayed, err := a.Create(context.Background(), other)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "bob@example.com", second.CustomerID)

	changed := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 2})
	changed.IdempotencyKey = "click-1"
	_, _, err = a.Create(context.Background(), changed)
	assert.True(t, errors.Is(err, fault.ErrConflict), "got %v", err)

	assert.Equal(t, 3, f.stock(t, "shirt1", "M"))
	assert.Equal(t, int64(2), f.orderCount(t))
}

func TestCreate_IdempotencyRaceReturnsWinner(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.IdempotencyKey = "click-7"
	winner, _, err := a.Create(context.Background(), req)
	require.NoError(t, err)

	f.deps.Store = &lateStore{Repository: f.repo}
	loser := f.assembler(t)

	got, replayed, err := loser.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 4, f.stock(t, "shirt1", "M"), "the losing reservation is released")
}

func TestCreate_NotPurchasable(t *testing.T) {
	f := newFixture(t)
	future := time.Now().Add(72 * time.Hour)
	f.product(t, catalog.Product{ID: "hidden", Name: "Hidden", Price: 100, IsHidden: true}, catalog.Variant{Size: "M", Stock: 1})
	f.product(t, catalog.Product{ID: "drop", Name: "Drop", Price: 100, ReleaseDate: &future}, catalog.Variant{Size: "M", Stock: 1})
	f.product(t, catalog.Product{ID: "gold", Name: "Gold", Price: 100, IsVIPOnly: true}, catalog.Variant{Size: "M", Stock: 1})
	a := f.assembler(t)

	for _, id := range []string{"hidden", "drop", "gold", "ghost"} {
		t.Run(id, func(t *testing.T) {
			_, _, err := a.Create(context.Background(), checkout(CartLine{ProductID: id, Size: "M", Quantity: 1}))
			var fe *fault.Error
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, fault.CodeNotPurchasable, fe.Code)
			assert.Equal(t, id, fe.ProductID)
		})
	}
}

// spendAsWhale places 18700 worth of orders for customerID, or for the
// guest e-mail when customerID is empty.
func spendAsWhale(t *testing.T, f *fixture, a *Assembler, customerID string) {
	t.Helper()

	_, err := f.ledger.SetStock(context.Background(), "cap1", "OS", 100)
	require.NoError(t, err)
	for _, line := range []CartLine{
		{ProductID: "shirt1", Size: "M", Quantity: 5},
		{ProductID: "cap1", Size: "OS", Quantity: 20},
	} {
		req := checkout(line)
		req.CustomerID = customerID
		_, _, err := a.Create(context.Background(), req)
		require.NoError(t, err)
	}
}

func TestCreate_VIPOnlyForWhales(t *testing.T) {
	f := newFixture(t)
	f.product(t, catalog.Product{ID: "gold", Name: "Gold", Price: 100, IsVIPOnly: true}, catalog.Variant{Size: "M", Stock: 1})
	a := f.assembler(t)
	spendAsWhale(t, f, a, "cust-ann")

	req := checkout(CartLine{ProductID: "gold", Size: "M", Quantity: 1})
	req.CustomerID = "cust-ann"
	_, _, err := a.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreate_GuestIsNeverVIP(t *testing.T) {
	f := newFixture(t)
	f.product(t, catalog.Product{ID: "gold", Name: "Gold", Price: 100, IsVIPOnly: true}, catalog.Variant{Size: "M", Stock: 1})
	seedPromo(t, f, promo.PromoCode{Code: "VIP20", DiscountType: promo.DiscountPercent, DiscountValue: 20, IsActive: true, TargetAudience: promo.AudienceVIPOnly})
	a := f.assembler(t)

	// Enough guest spend under this e-mail to be a whale if it were trusted.
	spendAsWhale(t, f, a, "")

	_, _, err := a.Create(context.Background(), checkout(CartLine{ProductID: "gold", Size: "M", Quantity: 1}))
	assert.True(t, errors.Is(err, fault.ErrNotPurchasable), "got %v", err)

	req := checkout(CartLine{ProductID: "cap1", Size: "OS", Quantity: 1})
	req.PromoCode = "VIP20"
	_, _, err = a.Create(context.Background(), req)
	assert.True(t, errors.Is(err, fault.ErrAudienceMismatch), "got %v", err)

	q, err := a.Quote(context.Background(), checkout(CartLine{ProductID: "cap1", Size: "OS", Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, customer.SegmentRegular, q.Segment)

	assert.Equal(t, 1, f.stock(t, "gold", "M"))
	assert.Zero(t, f.usage(t, "VIP20"))
}

func TestCreate_MissingSizeIsOutOfStock(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	_, _, err := a.Create(context.Background(), checkout(
		CartLine{ProductID: "cap1", Size: "OS", Quantity: 1},
		CartLine{ProductID: "shirt1", Size: "XL", Quantity: 1},
	))

	var fe *fault.Error
	require.True(t, errors.As(err, &fe), "got %v", err)
	assert.Equal(t, fault.CodeInsufficientStock, fe.Code)
	assert.Equal(t, "shirt1", fe.ProductID)
	assert.Equal(t, "XL", fe.Size)
	require.NotNil(t, fe.Available)
	assert.Zero(t, *fe.Available)
	assert.Equal(t, 10, f.stock(t, "cap1", "OS"))
	assert.Zero(t, f.orderCount(t))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)
	line := CartLine{ProductID: "shirt1", Size: "M", Quantity: 1}

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"empty cart", func(r *CreateRequest) { r.Cart = nil }, fault.ErrValidation},
		{"zero quantity", func(r *CreateRequest) { r.Cart[0].Quantity = 0 }, fault.ErrValidation},
		{"missing size", func(r *CreateRequest) { r.Cart[0].Size = " " }, fault.ErrValidation},
		{"missing name", func(r *CreateRequest) { r.Customer.Name = "" }, fault.ErrValidation},
		{"missing phone", func(r *CreateRequest) { r.Customer.Phone = "" }, fault.ErrValidation},
		{"guest without email", func(r *CreateRequest) { r.Customer.Email = "" }, fault.ErrValidation},
		{"unknown payment", func(r *CreateRequest) { r.PaymentMethod = "barter" }, fault.ErrValidation},
		{"unknown delivery", func(r *CreateRequest) { r.Customer.DeliveryMethod = "drone" }, fault.ErrUnknownDeliveryMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := checkout(line)
			tt.mutate(&req)
			_, _, err := a.Create(context.Background(), req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
}

func TestQuote_NoSideEffects(t *testing.T) {
	f := newFixture(t)
	seedPromo(t, f, promo.PromoCode{Code: "SALE10", DiscountType: promo.DiscountPercent, DiscountValue: 10, IsActive: true})
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1})
	req.PromoCode = "SALE10"
	q, err := a.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), q.Breakdown.Subtotal)
	assert.Equal(t, int64(150), q.Breakdown.Discount)
	assert.Equal(t, customer.SegmentNew, q.Segment)
	assert.Equal(t, 5, f.stock(t, "shirt1", "M"))
	assert.Zero(t, f.usage(t, "SALE10"))
	assert.Zero(t, f.orderCount(t))
}

// An oversized fixed discount is clamped so the shopper pays the delivery fee.
func TestQuote_OversizedFixedDiscount(t *testing.T) {
	f := newFixture(t)
	f.product(t, catalog.Product{ID: "bag", Name: "Bag", Price: 2000}, catalog.Variant{Size: "OS", Stock: 1})
	seedPromo(t, f, promo.PromoCode{Code: "BIG2500", DiscountType: promo.DiscountFixed, DiscountValue: 2500, IsActive: true})
	a := f.assembler(t)

	req := checkout(CartLine{ProductID: "bag", Size: "OS", Quantity: 1})
	req.PromoCode = "BIG2500"
	q, err := a.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(2000), q.Breakdown.Discount)
	assert.Equal(t, q.Breakdown.DeliveryFee, q.Breakdown.Total)
}

// Later catalog edits never reach an existing order.
func TestCreate_OrderSnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	a := f.assembler(t)

	o, _, err := a.Create(context.Background(), checkout(CartLine{ProductID: "shirt1", Size: "M", Quantity: 1}))
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&catalog.Product{}).Where("id = ?", "shirt1").
		Updates(map[string]any{"price": 9900, "name": "Renamed"}).Error)

	stored, err := f.repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), stored.Items[0].Price)
	assert.Equal(t, "Shirt", stored.Items[0].Name)
	assert.Equal(t, o.TotalPrice, stored.TotalPrice)
}

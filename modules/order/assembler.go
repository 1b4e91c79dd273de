package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	"github.com/example/storefront/domain/pricing"
	"github.com/example/storefront/modules/segment"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	refAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	refLength   = 8

	defaultPersistTimeout    = 5 * time.Second
	defaultCompensateTimeout = 10 * time.Second
)

// Assembler turns a cart into a durable order. It is the only component
// that compensates: every step after the first reservation is undone when a
// later step fails.
type Assembler struct {
	store    Store
	products ProductSource
	stock    StockLedger
	promos   Promotions
	segments Segments
	engine   *pricing.Engine
	logger   types.Logger
	newRef   func() string
	now      func() time.Time

	persistTimeout    time.Duration
	compensateTimeout time.Duration
}

// Dependencies are the collaborators of an Assembler.
type Dependencies struct {
	Store    Store
	Products ProductSource
	Stock    StockLedger
	Promos   Promotions
	Segments Segments
	Engine   *pricing.Engine
	Logger   types.Logger
	// PersistTimeout bounds the order insert. Zero selects five seconds.
	PersistTimeout time.Duration
}

// NewAssembler creates an assembler.
func NewAssembler(deps Dependencies) (*Assembler, error) {
	newRef, err := nanoid.CustomASCII(refAlphabet, refLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create reference generator: %w", err)
	}
	persist := deps.PersistTimeout
	if persist <= 0 {
		persist = defaultPersistTimeout
	}
	engine := deps.Engine
	if engine == nil {
		engine = pricing.NewEngine(nil)
	}
	return &Assembler{
		store:             deps.Store,
		products:          deps.Products,
		stock:             deps.Stock,
		promos:            deps.Promos,
		segments:          deps.Segments,
		engine:            engine,
		logger:            deps.Logger,
		newRef:            newRef,
		now:               time.Now,
		persistTimeout:    persist,
		compensateTimeout: defaultCompensateTimeout,
	}, nil
}

// draft is a fully priced, validated but not yet reserved order.
type draft struct {
	customerID string
	profile    *customer.Profile
	items      []order.Item
	breakdown  pricing.Breakdown
	promoCode  string
}

// Create runs the checkout. The returned bool is true when an existing order
// was returned for a repeated idempotency key.
func (a *Assembler) Create(ctx context.Context, req CreateRequest) (*order.Order, bool, error) {
	lines, guest, err := normalize(&req)
	if err != nil {
		return nil, false, err
	}

	if req.IdempotencyKey != "" {
		existing, err := a.store.FindByIdempotencyKey(ctx, req.CustomerID, req.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return replay(existing, lines)
		}
	}

	d, err := a.prepare(ctx, req, lines, guest)
	if err != nil {
		return nil, false, err
	}

	reserved, err := a.reserve(ctx, d.items)
	if err != nil {
		a.compensate(ctx, nil, reserved)
		return nil, false, err
	}

	o := a.build(req, d)
	if err := a.persist(ctx, o); err != nil {
		if errors.Is(err, errDuplicate) && o.IdempotencyKey != nil {
			a.compensate(ctx, nil, reserved)
			winner, findErr := a.store.FindByIdempotencyKey(ctx, o.CustomerID, *o.IdempotencyKey)
			if findErr == nil && winner != nil {
				return replay(winner, lines)
			}
			return nil, false, fault.Unavailable("order persistence", err)
		}
		// A timed-out insert may still have committed.
		a.compensate(ctx, o, reserved)
		return nil, false, fault.Unavailable("order persistence", err)
	}

	if d.promoCode != "" {
		if err := a.promos.Redeem(ctx, d.promoCode); err != nil {
			a.compensate(ctx, o, reserved)
			return nil, false, err
		}
	}

	a.logger.Info("Order created",
		"order_id", o.ID, "ref", o.Ref, "customer_id", o.CustomerID,
		"total", o.TotalPrice, "units", o.Units(), "promo", d.promoCode)
	return o, false, nil
}

// Quote prices a cart exactly as Create would, without side effects.
func (a *Assembler) Quote(ctx context.Context, req CreateRequest) (*Quote, error) {
	lines, guest, err := normalize(&req)
	if err != nil {
		return nil, err
	}
	d, err := a.prepare(ctx, req, lines, guest)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Items:     d.items,
		Breakdown: d.breakdown,
		Segment:   d.profile.Segment,
		PromoCode: d.promoCode,
	}, nil
}

// prepare performs every pre-commit validation: product snapshot, stock
// precheck, segment, promo evaluation and pricing.
func (a *Assembler) prepare(ctx context.Context, req CreateRequest, lines []CartLine, guest bool) (*draft, error) {
	profile, err := a.segments.Classify(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if guest {
		profile = guestProfile(profile)
	}

	ids := make([]string, 0, len(lines))
	seen := map[string]bool{}
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	products, err := a.products.Snapshot(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := a.now()
	items := make([]order.Item, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, fault.NotPurchasable(l.ProductID, "product no longer exists")
		}
		if err := purchasable(&p, now, profile.Segment); err != nil {
			return nil, err
		}

		stock, err := a.stock.GetStock(ctx, l.ProductID, l.Size)
		if err != nil {
			if !errors.Is(err, fault.ErrNotFound) {
				return nil, err
			}
			// A size without a variant row has no stock.
			stock = 0
		}
		if stock < l.Quantity {
			return nil, fault.InsufficientStock(l.ProductID, l.Size, l.Quantity, stock)
		}

		items = append(items, order.Item{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image(),
			Size:      l.Size,
			Price:     p.Price,
			Quantity:  l.Quantity,
			LineTotal: p.Price * int64(l.Quantity),
		})
		priced = append(priced, pricing.Line{Price: p.Price, Quantity: l.Quantity})
	}

	d := &draft{customerID: profile.CustomerID, profile: profile, items: items}

	var discount int64
	if req.PromoCode != "" {
		eval, err := a.promos.Evaluate(ctx, req.PromoCode, pricing.Subtotal(priced), profile.Segment)
		if err != nil {
			return nil, err
		}
		discount = eval.Discount
		d.promoCode = eval.Code
	}

	d.breakdown, err = a.engine.Price(priced, discount, req.Customer.DeliveryMethod)
	if err != nil {
		return nil, err
	}
	if d.breakdown.Total < d.breakdown.DeliveryFee || d.breakdown.Discount > d.breakdown.Subtotal {
		return nil, fmt.Errorf("pricing produced impossible totals %+v", d.breakdown)
	}
	return d, nil
}

// reserve takes stock line by line in cart order. On failure it returns the
// lines reserved so far together with the error.
func (a *Assembler) reserve(ctx context.Context, items []order.Item) ([]order.Item, error) {
	reserved := make([]order.Item, 0, len(items))
	for _, it := range items {
		if _, err := a.stock.Reserve(ctx, it.ProductID, it.Size, it.Quantity); err != nil {
			return reserved, err
		}
		reserved = append(reserved, it)
	}
	return reserved, nil
}

func (a *Assembler) build(req CreateRequest, d *draft) *order.Order {
	info := req.Customer
	info.PromoCode = d.promoCode
	info.Discount = d.breakdown.Discount

	now := a.now()
	o := &order.Order{
		ID:            uuid.New().String(),
		Ref:           a.newRef(),
		CustomerID:    d.customerID,
		Status:        order.StatusNew,
		CustomerInfo:  info,
		Items:         d.items,
		Subtotal:      d.breakdown.Subtotal,
		Discount:      d.breakdown.Discount,
		DeliveryFee:   d.breakdown.DeliveryFee,
		TotalPrice:    d.breakdown.Total,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		o.IdempotencyKey = &key
	}
	return o
}

func (a *Assembler) persist(ctx context.Context, o *order.Order) error {
	ctx, cancel := context.WithTimeout(ctx, a.persistTimeout)
	defer cancel()
	return a.store.Create(ctx, o)
}

// compensate deletes the order row, if any, and releases reserved stock. It
// runs detached from the caller's cancellation.
func (a *Assembler) compensate(parent context.Context, o *order.Order, reserved []order.Item) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.compensateTimeout)
	defer cancel()

	if o != nil {
		if err := a.store.Delete(ctx, o.ID); err != nil && !errors.Is(err, fault.ErrNotFound) {
			a.logger.Error("Compensation failed to delete order",
				"order_id", o.ID, "ref", o.Ref, "error", err)
		}
	}
	releaseItems(ctx, a.stock, a.logger, orderID(o), reserved)
}

// releaseItems returns stock for items, logging every line it cannot
// return with enough detail to repair it by hand.
func releaseItems(ctx context.Context, stock StockLedger, logger types.Logger, id string, items []order.Item) bool {
	ok := true
	for _, it := range items {
		if err := stock.Release(ctx, it.ProductID, it.Size, it.Quantity); err != nil {
			ok = false
			logger.Error("Failed to release stock",
				"order_id", id, "product_id", it.ProductID, "size", it.Size,
				"quantity", it.Quantity, "error", err)
		}
	}
	return ok
}

func orderID(o *order.Order) string {
	if o == nil {
		return ""
	}
	return o.ID
}

// replay returns the order created earlier with the same idempotency key,
// provided the request is the same cart.
func replay(existing *order.Order, lines []CartLine) (*order.Order, bool, error) {
	if len(existing.Items) != len(lines) {
		return nil, false, fault.Conflict("idempotency key was already used for order %s with a different cart", existing.Ref)
	}
	for i, l := range lines {
		it := existing.Items[i]
		if it.ProductID != l.ProductID || it.Size != l.Size || it.Quantity != l.Quantity {
			return nil, false, fault.Conflict("idempotency key was already used for order %s with a different cart", existing.Ref)
		}
	}
	return existing, true, nil
}

// guestProfile keeps guests out of the VIP tier. A typed e-mail does not
// prove who is paying, so only signed-in customers can be whales.
func guestProfile(p *customer.Profile) *customer.Profile {
	if p.Segment != customer.SegmentWhale {
		return p
	}
	capped := *p
	capped.Segment = customer.SegmentRegular
	return &capped
}

// purchasable rejects products a shopper cannot currently buy.
func purchasable(p *catalog.Product, now time.Time, segment customer.Segment) error {
	switch {
	case p.IsHidden:
		return fault.NotPurchasable(p.ID, "product is not available")
	case !p.Released(now):
		return fault.NotPurchasable(p.ID, "product is not released yet")
	case p.IsVIPOnly && segment != customer.SegmentWhale:
		return fault.NotPurchasable(p.ID, "product is reserved for VIP customers")
	}
	return nil
}

// normalize validates the request shape in place and merges duplicate
// (product, size) lines, keeping first-seen order. It reports whether the
// request is a guest checkout keyed by e-mail.
func normalize(req *CreateRequest) ([]CartLine, bool, error) {
	if len(req.Cart) == 0 {
		return nil, false, fault.Validation("cart is empty")
	}

	c := &req.Customer
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	switch {
	case c.Name == "":
		return nil, false, fault.Validation("customer name is required")
	case c.Phone == "":
		return nil, false, fault.Validation("customer phone is required")
	case c.Address == "":
		return nil, false, fault.Validation("delivery address is required")
	}
	if c.DeliveryMethod != order.DeliveryPickupPoint && c.DeliveryMethod != order.DeliveryCourier {
		return nil, false, fault.UnknownDeliveryMethod(string(c.DeliveryMethod))
	}
	if !req.PaymentMethod.Valid() {
		return nil, false, fault.Validation("unknown payment method %q", req.PaymentMethod)
	}

	req.CustomerID = segment.NormalizeCustomerID(req.CustomerID)
	guest := req.CustomerID == ""
	if guest {
		req.CustomerID = segment.NormalizeCustomerID(c.Email)
	}
	if req.CustomerID == "" {
		return nil, false, fault.Validation("customer e-mail is required for guest checkout")
	}
	req.PromoCode = strings.TrimSpace(req.PromoCode)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if len(req.IdempotencyKey) > 128 {
		return nil, false, fault.Validation("idempotency key must be at most 128 characters")
	}

	type key struct{ product, size string }
	index := map[key]int{}
	lines := make([]CartLine, 0, len(req.Cart))
	for _, l := range req.Cart {
		l.ProductID = strings.TrimSpace(l.ProductID)
		l.Size = strings.TrimSpace(l.Size)
		if l.ProductID == "" || l.Size == "" {
			return nil, false, fault.Validation("every cart line needs a product and a size")
		}
		if l.Quantity <= 0 {
			return nil, false, fault.Validation("quantity for %s size %s must be positive", l.ProductID, l.Size)
		}
		k := key{l.ProductID, l.Size}
		if i, ok := index[k]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[k] = len(lines)
		lines = append(lines, l)
	}
	return lines, guest, nil
}

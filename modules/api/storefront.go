package api

import (
	"strings"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	catalogmod "github.com/example/storefront/modules/catalog"
	ordermod "github.com/example/storefront/modules/order"
	"github.com/gofiber/fiber/v2"
)

// viewer resolves what the caller may see. Segmentation failures degrade
// to the anonymous view rather than failing the page.
func (m *Module) viewer(c *fiber.Ctx) catalogmod.Viewer {
	id := identityFrom(c)
	if id == nil {
		return catalogmod.Viewer{}
	}
	profile, err := m.segments.Classify(c.UserContext(), id.CustomerID)
	if err != nil {
		m.logger.Warn("Failed to classify viewer", "customer_id", id.CustomerID, "error", err)
		return catalogmod.Viewer{}
	}
	return catalogmod.Viewer{VIP: profile.Segment == customer.SegmentWhale}
}

// listProducts handles GET /api/v1/products.
func (m *Module) listProducts(c *fiber.Ctx) error {
	products, total, err := m.catalog.List(c.UserContext(), &catalogmod.ListRequest{
		Category: catalog.Category(c.Query("category")),
		Viewer:   m.viewer(c),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return m.writeError(c, err)
	}

	for i := range products {
		products[i] = publicProduct(products[i])
	}
	return c.JSON(ProductListResponse{Products: products, Total: total})
}

// getProduct handles GET /api/v1/products/:id.
func (m *Module) getProduct(c *fiber.Ctx) error {
	p, err := m.catalog.Get(c.UserContext(), c.Params("id"), m.viewer(c))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(publicProduct(*p))
}

// getStock handles GET /api/v1/products/:id/stock/:size.
func (m *Module) getStock(c *fiber.Ctx) error {
	productID, size := c.Params("id"), c.Params("size")
	if _, err := m.catalog.Get(c.UserContext(), productID, m.viewer(c)); err != nil {
		return m.writeError(c, err)
	}

	stock, err := m.inventory.GetStock(c.UserContext(), productID, size)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(StockResponse{ProductID: productID, Size: size, Stock: stock, InStock: stock > 0})
}

// evaluatePromo handles POST /api/v1/promo/evaluate. The result is a
// preview; checkout evaluates the code again against the priced cart.
func (m *Module) evaluatePromo(c *fiber.Ctx) error {
	var req EvaluatePromoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Subtotal < 0 {
		return badRequest(c, "Subtotal must not be negative")
	}

	// Anonymous previews are priced as a new customer. Checkout decides
	// the final audience.
	seg := customer.SegmentNew
	if id := identityFrom(c); id != nil {
		profile, err := m.segments.Classify(c.UserContext(), id.CustomerID)
		if err != nil {
			return m.writeError(c, err)
		}
		seg = profile.Segment
	}

	eval, err := m.promotions.Evaluate(c.UserContext(), req.Code, req.Subtotal, seg)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(EvaluatePromoResponse{Code: eval.Code, Discount: eval.Discount})
}

// checkoutRequest builds the order request for the caller. Signed-in
// shoppers are keyed by their identity; guests by e-mail, which checkout
// never trusts for the VIP tier.
func checkoutRequest(c *fiber.Ctx, body *CheckoutRequest) *ordermod.CreateRequest {
	req := &ordermod.CreateRequest{
		Cart:          body.Cart,
		Customer:      body.Customer,
		PromoCode:     body.PromoCode,
		PaymentMethod: body.PaymentMethod,
	}
	if id := identityFrom(c); id != nil {
		req.CustomerID = id.CustomerID
		if strings.TrimSpace(req.Customer.Email) == "" {
			req.Customer.Email = id.Email
		}
	}
	return req
}

// quote handles POST /api/v1/checkout/quote.
func (m *Module) quote(c *fiber.Ctx) error {
	var body CheckoutRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	q, err := m.orders.Quote(c.UserContext(), checkoutRequest(c, &body))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(q)
}

// createOrder handles POST /api/v1/orders. A repeated Idempotency-Key
// returns the order created the first time.
func (m *Module) createOrder(c *fiber.Ctx) error {
	var body CheckoutRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := checkoutRequest(c, &body)
	req.IdempotencyKey = c.Get("Idempotency-Key")

	o, replayed, err := m.orders.Create(c.UserContext(), req)
	if err != nil {
		return m.writeError(c, err)
	}

	status := fiber.StatusCreated
	if replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(OrderCreatedResponse{Order: o, Replayed: replayed})
}

// myOrders handles GET /api/v1/me/orders.
func (m *Module) myOrders(c *fiber.Ctx) error {
	orders, total, err := m.orders.List(c.UserContext(), &ordermod.ListRequest{
		CustomerID: identityFrom(c).CustomerID,
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(OrderListResponse{Orders: orders, Total: total})
}

// mySegment handles GET /api/v1/me/segment.
func (m *Module) mySegment(c *fiber.Ctx) error {
	profile, err := m.segments.Classify(c.UserContext(), identityFrom(c).CustomerID)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(profile)
}

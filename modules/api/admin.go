package api

import (
	"errors"

	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/notification"
	ordermod "github.com/example/storefront/modules/order"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	"github.com/gofiber/fiber/v2"
)

var adminViewer = catalogmod.Viewer{Admin: true, VIP: true}

// adminListProducts handles GET /api/v1/admin/products.
func (m *Module) adminListProducts(c *fiber.Ctx) error {
	products, total, err := m.catalog.List(c.UserContext(), &catalogmod.ListRequest{
		Category: catalog.Category(c.Query("category")),
		Viewer:   adminViewer,
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(ProductListResponse{Products: products, Total: total})
}

// adminCreateProduct handles POST /api/v1/admin/products.
func (m *Module) adminCreateProduct(c *fiber.Ctx) error {
	var req catalogmod.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := m.catalog.Create(c.UserContext(), &req)
	if err != nil {
		return m.writeError(c, err)
	}
	m.logger.Info("Product created", "product_id", p.ID, "name", p.Name)
	return c.Status(fiber.StatusCreated).JSON(p)
}

// adminGetProduct handles GET /api/v1/admin/products/:id.
func (m *Module) adminGetProduct(c *fiber.Ctx) error {
	p, err := m.catalog.Get(c.UserContext(), c.Params("id"), adminViewer)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(p)
}

// adminUpdateProduct handles PATCH /api/v1/admin/products/:id.
func (m *Module) adminUpdateProduct(c *fiber.Ctx) error {
	var req catalogmod.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.ID = c.Params("id")

	p, err := m.catalog.Update(c.UserContext(), &req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(p)
}

// adminDeleteProduct handles DELETE /api/v1/admin/products/:id.
func (m *Module) adminDeleteProduct(c *fiber.Ctx) error {
	if err := m.catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
		return m.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// adminListVariants handles GET /api/v1/admin/products/:id/variants.
func (m *Module) adminListVariants(c *fiber.Ctx) error {
	variants, err := m.inventory.ListVariants(c.UserContext(), c.Params("id"))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(fiber.Map{"variants": variants})
}

// adminSetStock handles PUT /api/v1/admin/products/:id/variants/:size.
func (m *Module) adminSetStock(c *fiber.Ctx) error {
	var req SetStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	v, err := m.inventory.SetStock(c.UserContext(), c.Params("id"), c.Params("size"), req.Stock)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(v)
}

// adminDeleteVariant handles DELETE /api/v1/admin/products/:id/variants/:size.
func (m *Module) adminDeleteVariant(c *fiber.Ctx) error {
	if err := m.inventory.DeleteVariant(c.UserContext(), c.Params("id"), c.Params("size")); err != nil {
		return m.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// adminListPromos handles GET /api/v1/admin/promocodes.
func (m *Module) adminListPromos(c *fiber.Ctx) error {
	promos, err := m.promotions.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(fiber.Map{"promocodes": promos, "total": len(promos)})
}

// adminCreatePromo handles POST /api/v1/admin/promocodes.
func (m *Module) adminCreatePromo(c *fiber.Ctx) error {
	var req promotion.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := m.promotions.Create(c.UserContext(), &req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// adminGetPromo handles GET /api/v1/admin/promocodes/:code.
func (m *Module) adminGetPromo(c *fiber.Ctx) error {
	p, err := m.promotions.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(p)
}

// adminUpdatePromo handles PATCH /api/v1/admin/promocodes/:code.
func (m *Module) adminUpdatePromo(c *fiber.Ctx) error {
	var req promotion.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Code = c.Params("code")

	p, err := m.promotions.Update(c.UserContext(), &req)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(p)
}

// adminListOrders handles GET /api/v1/admin/orders.
func (m *Module) adminListOrders(c *fiber.Ctx) error {
	orders, total, err := m.orders.List(c.UserContext(), &ordermod.ListRequest{
		Status:     order.Status(c.Query("status")),
		CustomerID: segment.NormalizeCustomerID(c.Query("customer_id")),
		Limit:      c.QueryInt("limit", 0),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(OrderListResponse{Orders: orders, Total: total})
}

// adminGetOrder handles GET /api/v1/admin/orders/:id. The id may also be
// the public order reference.
func (m *Module) adminGetOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	o, err := m.orders.Get(c.UserContext(), id)
	if errors.Is(err, fault.ErrNotFound) {
		if byRef, refErr := m.orders.GetByRef(c.UserContext(), id); refErr == nil {
			o, err = byRef, nil
		}
	}
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(o)
}

// adminSetStatus handles PUT /api/v1/admin/orders/:id/status.
func (m *Module) adminSetStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := m.orders.Transition(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(res)
}

// adminSetTracking handles PUT /api/v1/admin/orders/:id/tracking.
func (m *Module) adminSetTracking(c *fiber.Ctx) error {
	var req TrackingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	o, err := m.orders.SetTracking(c.UserContext(), c.Params("id"), req.TrackingNumber)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(o)
}

// adminDeleteOrder handles DELETE /api/v1/admin/orders/:id.
func (m *Module) adminDeleteOrder(c *fiber.Ctx) error {
	released, err := m.orders.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "stock_released": released})
}

// adminListCustomers handles GET /api/v1/admin/customers.
func (m *Module) adminListCustomers(c *fiber.Ctx) error {
	resp, err := m.segments.ListCustomers(c.UserContext(), &segment.ListCustomersRequest{
		Segment: customer.Segment(c.Query("segment")),
		Limit:   c.QueryInt("limit", 0),
		Offset:  c.QueryInt("offset", 0),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(fiber.Map{"customers": resp.Customers, "total": resp.Total})
}

// adminCustomerSegment handles GET /api/v1/admin/customers/:id/segment.
func (m *Module) adminCustomerSegment(c *fiber.Ctx) error {
	profile, err := m.segments.Classify(c.UserContext(), c.Params("id"))
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(profile)
}

// adminGetThresholds handles GET /api/v1/admin/settings/segmentation.
func (m *Module) adminGetThresholds(c *fiber.Ctx) error {
	th, err := m.segments.GetThresholds(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(th)
}

// adminSetThresholds handles PUT /api/v1/admin/settings/segmentation.
func (m *Module) adminSetThresholds(c *fiber.Ctx) error {
	var req ThresholdsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	th, err := m.segments.SetThresholds(c.UserContext(), req.VIPThreshold, req.ChurnWindowDays)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(th)
}

// adminNotifications handles GET /api/v1/admin/notifications.
func (m *Module) adminNotifications(c *fiber.Ctx) error {
	items, err := m.notifications.List(c.UserContext(), &notification.ListRequest{
		Kind:  notification.Kind(c.Query("kind")),
		Limit: c.QueryInt("limit", 50),
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(fiber.Map{"notifications": items})
}

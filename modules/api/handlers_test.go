package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/storefront/config"
	"github.com/example/storefront/domain/catalog"
	"github.com/example/storefront/domain/customer"
	"github.com/example/storefront/domain/fault"
	"github.com/example/storefront/domain/order"
	catalogmod "github.com/example/storefront/modules/catalog"
	"github.com/example/storefront/modules/inventory"
	"github.com/example/storefront/modules/notification"
	ordermod "github.com/example/storefront/modules/order"
	"github.com/example/storefront/modules/promotion"
	"github.com/example/storefront/modules/segment"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// The mocks embed their port so only the methods a test sets are callable.

type mockCatalog struct {
	catalogmod.CatalogPort
	getFunc  func(ctx context.Context, id string, viewer catalogmod.Viewer) (*catalog.Product, error)
	listFunc func(ctx context.Context, req *catalogmod.ListRequest) ([]catalog.Product, int, error)
}

func (m *mockCatalog) Get(ctx context.Context, id string, viewer catalogmod.Viewer) (*catalog.Product, error) {
	return m.getFunc(ctx, id, viewer)
}

func (m *mockCatalog) List(ctx context.Context, req *catalogmod.ListRequest) ([]catalog.Product, int, error) {
	return m.listFunc(ctx, req)
}

type mockInventory struct {
	inventory.InventoryPort
	getStockFunc func(ctx context.Context, productID, size string) (int, error)
}

func (m *mockInventory) GetStock(ctx context.Context, productID, size string) (int, error) {
	return m.getStockFunc(ctx, productID, size)
}

type mockPromotions struct {
	promotion.PromotionPort
	evaluateFunc func(ctx context.Context, code string, subtotal int64, seg customer.Segment) (*promotion.Evaluation, error)
}

func (m *mockPromotions) Evaluate(ctx context.Context, code string, subtotal int64, seg customer.Segment) (*promotion.Evaluation, error) {
	return m.evaluateFunc(ctx, code, subtotal, seg)
}

type mockSegments struct {
	segment.SegmentPort
	segments map[string]customer.Segment
}

func (m *mockSegments) Classify(_ context.Context, customerID string) (*customer.Profile, error) {
	seg, ok := m.segments[customerID]
	if !ok {
		seg = customer.SegmentNew
	}
	return &customer.Profile{CustomerID: customerID, Segment: seg}, nil
}

type mockOrders struct {
	ordermod.OrderPort
	createFunc     func(ctx context.Context, req *ordermod.CreateRequest) (*order.Order, bool, error)
	listFunc       func(ctx context.Context, req *ordermod.ListRequest) ([]order.Order, int64, error)
	transitionFunc func(ctx context.Context, id string, to order.Status) (*ordermod.TransitionResponse, error)
}

func (m *mockOrders) Create(ctx context.Context, req *ordermod.CreateRequest) (*order.Order, bool, error) {
	return m.createFunc(ctx, req)
}

func (m *mockOrders) List(ctx context.Context, req *ordermod.ListRequest) ([]order.Order, int64, error) {
	return m.listFunc(ctx, req)
}

func (m *mockOrders) Transition(ctx context.Context, id string, to order.Status) (*ordermod.TransitionResponse, error) {
	return m.transitionFunc(ctx, id, to)
}

type mockNotifications struct {
	notification.NotificationPort
}

type testServer struct {
	app       *fiber.App
	catalog   *mockCatalog
	inventory *mockInventory
	promos    *mockPromotions
	segments  *mockSegments
	orders    *mockOrders
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	s := &testServer{
		catalog:   &mockCatalog{},
		inventory: &mockInventory{},
		promos:    &mockPromotions{},
		segments:  &mockSegments{segments: map[string]customer.Segment{}},
		orders:    &mockOrders{},
	}
	m := NewModule(Options{
		HTTP:              config.HTTPConfig{Port: 3000},
		Identity:          config.IdentityConfig{JWTSecret: testSecret, AdminRole: "admin"},
		CheckoutRateLimit: rateLimit,
	}, &mockLogger{})
	m.catalog = s.catalog
	m.inventory = s.inventory
	m.promotions = s.promos
	m.segments = s.segments
	m.orders = s.orders
	m.notifications = &mockNotifications{}
	s.app = m.newApp()
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func bearer(t *testing.T, subject, role string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, subject, role, time.Hour)}
}

func checkoutBody() CheckoutRequest {
	return CheckoutRequest{
		Cart: []ordermod.CartLine{{ProductID: "shirt1", Size: "M", Quantity: 1}},
		Customer: order.CustomerInfo{
			Name:           "Ann",
			Phone:          "+100",
			Email:          "ann@example.com",
			Address:        "1 Main St",
			DeliveryMethod: order.DeliveryCourier,
		},
		PaymentMethod: order.PaymentCard,
	}
}

func TestCreateOrder_FaultStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient stock", fault.InsufficientStock("shirt1", "M", 3, 2), http.StatusConflict, "insufficient_stock"},
		{"not purchasable", fault.NotPurchasable("shirt1", "product is not available"), http.StatusConflict, "not_purchasable"},
		{"minimum not met", fault.MinimumNotMet("SALE10", 500), http.StatusConflict, "minimum_not_met"},
		{"promo not found", fault.PromoNotFound("NOPE"), http.StatusNotFound, "promo_not_found"},
		{"unknown delivery", fault.UnknownDeliveryMethod("drone"), http.StatusBadRequest, "unknown_delivery_method"},
		{"validation", fault.Validation("cart is empty"), http.StatusBadRequest, "validation_error"},
		{"unavailable", fault.Unavailable("order persistence", context.DeadlineExceeded), http.StatusServiceUnavailable, "service_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 0)
			s.orders.createFunc = func(context.Context, *ordermod.CreateRequest) (*order.Order, bool, error) {
				return nil, false, tt.err
			}

			resp, raw := s.do(t, "POST", "/api/v1/orders", checkoutBody(), nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestCreateOrder_ConflictCarriesDetail(t *testing.T) {
	s := newTestServer(t, 0)
	s.orders.createFunc = func(context.Context, *ordermod.CreateRequest) (*order.Order, bool, error) {
		return nil, false, fault.InsufficientStock("shirt1", "M", 3, 2)
	}

	_, raw := s.do(t, "POST", "/api/v1/orders", checkoutBody(), nil)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "only 2 left in size M", body.Message)
	require.NotNil(t, body.Detail)
	assert.Equal(t, "shirt1", body.Detail.ProductID)
	assert.Equal(t, "M", body.Detail.Size)
	require.NotNil(t, body.Detail.Available)
	assert.Equal(t, 2, *body.Detail.Available)
}

func TestCreateOrder_IdentityAndIdempotency(t *testing.T) {
	s := newTestServer(t, 0)
	var got *ordermod.CreateRequest
	s.orders.createFunc = func(_ context.Context, req *ordermod.CreateRequest) (*order.Order, bool, error) {
		got = req
		return &order.Order{ID: "o-1", Ref: "ABCDEFGH23"}, req.IdempotencyKey == "again", nil
	}

	body := checkoutBody()
	body.Customer.Email = ""
	headers := bearer(t, "cust-9", "customer")
	headers["Idempotency-Key"] = "first"

	resp, _ := s.do(t, "POST", "/api/v1/orders", body, headers)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "cust-9", got.CustomerID)
	assert.Equal(t, "cust-9@example.com", got.Customer.Email)
	assert.Equal(t, "first", got.IdempotencyKey)

	headers["Idempotency-Key"] = "again"
	resp, raw := s.do(t, "POST", "/api/v1/orders", body, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var created OrderCreatedResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.True(t, created.Replayed)
	assert.Equal(t, "ABCDEFGH23", created.Order.Ref)
}

func TestCreateOrder_RateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	s.orders.createFunc = func(context.Context, *ordermod.CreateRequest) (*order.Order, bool, error) {
		return &order.Order{ID: "o-1"}, false, nil
	}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, "POST", "/api/v1/orders", checkoutBody(), nil)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, _ := s.do(t, "POST", "/api/v1/orders", checkoutBody(), nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestListProducts_ViewerAndCostPrice(t *testing.T) {
	s := newTestServer(t, 0)
	s.segments.segments["whale-1"] = customer.SegmentWhale
	cost := int64(700)
	var viewers []catalogmod.Viewer
	s.catalog.listFunc = func(_ context.Context, req *catalogmod.ListRequest) ([]catalog.Product, int, error) {
		viewers = append(viewers, req.Viewer)
		return []catalog.Product{{ID: "p1", Price: 1500, CostPrice: &cost}}, 1, nil
	}

	resp, raw := s.do(t, "GET", "/api/v1/products?category=shirts", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(raw), "cost_price")

	s.do(t, "GET", "/api/v1/products", nil, bearer(t, "whale-1", "customer"))
	s.do(t, "GET", "/api/v1/products", nil, bearer(t, "reg-1", "customer"))

	require.Len(t, viewers, 3)
	assert.False(t, viewers[0].VIP)
	assert.True(t, viewers[1].VIP)
	assert.False(t, viewers[2].VIP)

	resp, raw = s.do(t, "GET", "/api/v1/admin/products", nil, bearer(t, "boss", "admin"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "cost_price")
	assert.True(t, viewers[3].Admin)
}

func TestGetStock(t *testing.T) {
	s := newTestServer(t, 0)
	s.catalog.getFunc = func(_ context.Context, id string, _ catalogmod.Viewer) (*catalog.Product, error) {
		if id == "hidden" {
			return nil, fault.NotFound("product", id)
		}
		return &catalog.Product{ID: id}, nil
	}
	s.inventory.getStockFunc = func(context.Context, string, string) (int, error) {
		return 0, nil
	}

	resp, raw := s.do(t, "GET", "/api/v1/products/shirt1/stock/M", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stock StockResponse
	require.NoError(t, json.Unmarshal(raw, &stock))
	assert.False(t, stock.InStock)

	resp, _ = s.do(t, "GET", "/api/v1/products/hidden/stock/M", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvaluatePromo_UsesCallerSegment(t *testing.T) {
	s := newTestServer(t, 0)
	s.segments.segments["whale-1"] = customer.SegmentWhale
	var seen customer.Segment
	s.promos.evaluateFunc = func(_ context.Context, code string, subtotal int64, seg customer.Segment) (*promotion.Evaluation, error) {
		seen = seg
		return &promotion.Evaluation{Code: "VIP20", Discount: subtotal / 5}, nil
	}

	resp, raw := s.do(t, "POST", "/api/v1/promo/evaluate",
		EvaluatePromoRequest{Code: "vip20", Subtotal: 5000}, bearer(t, "whale-1", "customer"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, customer.SegmentWhale, seen)

	var eval EvaluatePromoResponse
	require.NoError(t, json.Unmarshal(raw, &eval))
	assert.Equal(t, int64(1000), eval.Discount)

	resp, _ = s.do(t, "POST", "/api/v1/promo/evaluate", EvaluatePromoRequest{Code: "X", Subtotal: -1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluatePromo_AnonymousIsNotClassifiedByEmail(t *testing.T) {
	s := newTestServer(t, 0)
	s.segments.segments["whale@example.com"] = customer.SegmentWhale
	var seen customer.Segment
	s.promos.evaluateFunc = func(_ context.Context, code string, subtotal int64, seg customer.Segment) (*promotion.Evaluation, error) {
		seen = seg
		if seg != customer.SegmentWhale {
			return nil, fault.AudienceMismatch(code, "vip_only")
		}
		return &promotion.Evaluation{Code: code, Discount: 1}, nil
	}

	resp, _ := s.do(t, "POST", "/api/v1/promo/evaluate",
		map[string]any{"code": "VIP20", "subtotal": 5000, "email": "whale@example.com"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, customer.SegmentNew, seen)
}

func TestMyOrders(t *testing.T) {
	s := newTestServer(t, 0)
	var got *ordermod.ListRequest
	s.orders.listFunc = func(_ context.Context, req *ordermod.ListRequest) ([]order.Order, int64, error) {
		got = req
		return []order.Order{}, 0, nil
	}

	resp, _ := s.do(t, "GET", "/api/v1/me/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, "GET", "/api/v1/me/orders?limit=5", nil, bearer(t, "cust-1", "customer"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "cust-1", got.CustomerID)
	assert.Equal(t, 5, got.Limit)
}

func TestAdminSetStatus(t *testing.T) {
	s := newTestServer(t, 0)
	s.orders.transitionFunc = func(_ context.Context, id string, to order.Status) (*ordermod.TransitionResponse, error) {
		if to == order.StatusPaid {
			return nil, fault.InvalidTransition("shipping", "paid")
		}
		return &ordermod.TransitionResponse{Order: &order.Order{ID: id, Status: to}, From: order.StatusNew, StockReleased: true}, nil
	}
	admin := bearer(t, "boss", "admin")

	resp, raw := s.do(t, "PUT", "/api/v1/admin/orders/o-1/status", StatusRequest{Status: order.StatusPaid}, admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "invalid_transition", body.Error)
	require.NotNil(t, body.Detail)
	assert.Equal(t, "shipping", body.Detail.From)

	resp, raw = s.do(t, "PUT", "/api/v1/admin/orders/o-1/status", StatusRequest{Status: order.StatusCancelled}, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"stock_released":true`)

	resp, _ = s.do(t, "PUT", "/api/v1/admin/orders/o-1/status", StatusRequest{Status: order.StatusCancelled}, bearer(t, "cust-1", "customer"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

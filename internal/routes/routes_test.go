package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/storage"
	"github.com/example/storefront/internal/utils"
)

type envelope struct {
	Success       bool                `json:"success"`
	Error         string              `json:"error"`
	Data          json.RawMessage     `json:"data"`
	Notifications []cart.Notification `json:"notifications"`
}

type client struct {
	t     *testing.T
	app   *fiber.App
	carts *services.CartService
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := &config.Config{
		SessionSecret:     "test-secret",
		SessionCookie:     "cart_session",
		SessionTTL:        time.Hour,
		CartTTL:           time.Hour,
		CORSOrigins:       "*",
		CheckoutRateLimit: 2,
	}

	backend := storage.NewMemoryStorage()
	cat := catalog.Default()
	carts := services.NewCartService(backend, cfg.CartTTL, nil)
	rules, err := services.NewShippingRules(services.DefaultShippingRule)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	Register(app, Deps{
		Config:          cfg,
		Catalog:         cat,
		Carts:           carts,
		Orders:          services.NewOrderService(carts, cat, rules, cfg.SessionSecret, nil),
		Recommendations: services.NewRecommendationService(nil, services.NewCatalogRecommender(cat), nil),
		Storage:         backend,
	})
	return &client{t: t, app: app, carts: carts}
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(middleware.SessionHeader, c.token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	if token := resp.Header.Get(middleware.SessionHeader); token != "" {
		c.token = token
	}

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (c *client) snapshot(env envelope) cart.Snapshot {
	c.t.Helper()
	var snap cart.Snapshot
	require.NoError(c.t, json.Unmarshal(env.Data, &snap))
	return snap
}

func bracelet(qty int, charms ...string) fiber.Map {
	return fiber.Map{"productType": "bracelet", "productId": "b-classic", "charmIds": charms, "quantity": qty}
}

func TestCartFlow(t *testing.T) {
	c := newClient(t)

	status, env := c.do("GET", "/api/cart", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, c.token, "a session is minted on first contact")
	assert.Empty(t, c.snapshot(env).Items)

	status, env = c.do("POST", "/api/cart/items", bracelet(1, "star", "heart"))
	require.Equal(t, fiber.StatusOK, status, env.Error)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, cart.ItemAdded, env.Notifications[0].Event)
	first := c.snapshot(env).Items[0].LineID

	status, env = c.do("POST", "/api/cart/items", bracelet(2, "heart", "star"))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, cart.QuantityUpdated, env.Notifications[0].Event)
	snap := c.snapshot(env)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Count)
	assert.Equal(t, "75", snap.Total.String())

	status, env = c.do("POST", "/api/cart/items/"+first+"/edit", nil)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	var edit struct {
		Editing cart.Editing    `json:"editing"`
		Product catalog.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &edit))
	assert.Equal(t, first, edit.Editing.LineID)
	assert.Equal(t, "Classic Charm Bracelet", edit.Product.Name)

	status, env = c.do("GET", "/api/cart", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, c.snapshot(env).Editing)

	status, env = c.do("POST", "/api/cart/items", bracelet(1, "star", "heart", "moon"))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, cart.ItemUpdated, env.Notifications[0].Event)
	snap = c.snapshot(env)
	require.Len(t, snap.Items, 1)
	assert.NotEqual(t, first, snap.Items[0].LineID)
	assert.Equal(t, 1, snap.Count)
	assert.Nil(t, snap.Editing)
	second := snap.Items[0].LineID

	status, env = c.do("PATCH", "/api/cart/items/"+second, fiber.Map{"quantity": 4})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 4, c.snapshot(env).Count)

	status, env = c.do("PATCH", "/api/cart/items/"+second, fiber.Map{"quantity": 0})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, cart.ItemRemoved, env.Notifications[0].Event)
	assert.Empty(t, c.snapshot(env).Items)

	status, env = c.do("DELETE", "/api/cart/items/"+second, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, env.Notifications, "removing an absent line is silent")
}

func TestCartRejections(t *testing.T) {
	c := newClient(t)

	status, env := c.do("POST", "/api/cart/items", bracelet(0, "star"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "quantity")

	status, _ = c.do("POST", "/api/cart/items", fiber.Map{"productType": "hoodie", "productId": "nope", "colorId": "lilac", "sizeId": "m"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = c.do("POST", "/api/cart/items", fiber.Map{"productType": "hoodie", "productId": "h-cloud", "colorId": "orange", "sizeId": "m"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do("POST", "/api/cart/items/hoodie:h-cloud:0000/edit", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = c.do("PATCH", "/api/cart/items/x", fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = c.do("GET", "/api/cart", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, c.snapshot(env).Items)
}

func TestBeginEditUnknownProductLeavesLedgerIdle(t *testing.T) {
	c := newClient(t)
	c.do("GET", "/api/cart", nil)
	sid, err := utils.ParseSessionToken("test-secret", c.token)
	require.NoError(t, err)

	// A line whose product has since left the catalog.
	_, err = c.carts.Do(sid, func(l *cart.Ledger) error {
		return l.AddOrUpdate(cart.Selection{
			ProductID: "h-retired",
			Name:      "Retired Hoodie",
			Config:    cart.HoodieConfig{ColorID: "lilac", SizeID: "m"},
			Price:     cart.PriceInputs{Base: decimal.RequireFromString("40")},
		}, 1)
	})
	require.NoError(t, err)
	lineID := c.carts.View(sid).Items[0].LineID

	status, _ := c.do("POST", "/api/cart/items/"+lineID+"/edit", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env := c.do("GET", "/api/cart", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, c.snapshot(env).Editing)
}

func TestCancelEditAndClear(t *testing.T) {
	c := newClient(t)
	_, env := c.do("POST", "/api/cart/items", fiber.Map{"productType": "hoodie", "productId": "h-cloud", "colorId": "lilac", "sizeId": "m"})
	lineID := c.snapshot(env).Items[0].LineID

	c.do("POST", "/api/cart/items/"+lineID+"/edit", nil)
	status, env := c.do("DELETE", "/api/cart/edit", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, c.snapshot(env).Editing)
	assert.Empty(t, env.Notifications)

	// Not editing any more, so the same selection merges.
	_, env = c.do("POST", "/api/cart/items", fiber.Map{"productType": "hoodie", "productId": "h-cloud", "colorId": "lilac", "sizeId": "m"})
	assert.Equal(t, cart.QuantityUpdated, env.Notifications[0].Event)
	assert.Equal(t, 2, c.snapshot(env).Count)

	status, env = c.do("DELETE", "/api/cart", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, cart.CartCleared, env.Notifications[0].Event)
	assert.Equal(t, 0, c.snapshot(env).Count)
}

func TestCheckoutAndReceipt(t *testing.T) {
	c := newClient(t)

	status, env := c.do("POST", "/api/checkout", fiber.Map{"name": "Jo", "email": "jo@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "cart is empty", env.Error)

	c.do("POST", "/api/cart/items", fiber.Map{"productType": "sweatpants", "productId": "s-lounge", "colorId": "grey", "sizeId": "s", "quantity": 2})

	status, env = c.do("POST", "/api/checkout", fiber.Map{"name": "Jo", "email": "jo@example.com"})
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	require.Len(t, env.Notifications, 1)
	assert.Equal(t, cart.CartCleared, env.Notifications[0].Event)

	var result struct {
		Order struct {
			OrderNumber string `json:"order_number"`
			TotalAmount string `json:"total_amount"`
		} `json:"order"`
		ReceiptToken string `json:"receipt_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "76", result.Order.TotalAmount)

	status, env = c.do("GET", "/api/orders/receipt/"+result.ReceiptToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var receipt map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, result.Order.OrderNumber, receipt["order_number"])
	assert.Equal(t, "76.00", receipt["total"])

	status, _ = c.do("GET", "/api/orders/receipt/garbage", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	_, env = c.do("GET", "/api/cart", nil)
	assert.Empty(t, c.snapshot(env).Items)

	status, _ = c.do("POST", "/api/checkout", fiber.Map{"name": "Jo", "email": "jo@example.com"})
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}

func TestCatalogRoutes(t *testing.T) {
	c := newClient(t)

	status, env := c.do("GET", "/api/catalog/products?type=hoodie", nil)
	require.Equal(t, fiber.StatusOK, status)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 2)

	status, env = c.do("GET", "/api/catalog/products?limit=3&page=1", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &products))
	assert.Len(t, products, 3)

	status, _ = c.do("GET", "/api/catalog/products?type=socks", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = c.do("GET", "/api/catalog/products/matchingSet/ms-bff", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = c.do("GET", "/api/catalog/products/bracelet/ms-bff", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = c.do("GET", "/api/catalog/charms", nil)
	require.Equal(t, fiber.StatusOK, status)
	var charms []catalog.Charm
	require.NoError(t, json.Unmarshal(env.Data, &charms))
	assert.Len(t, charms, 9)
}

func TestRecommendationsRoute(t *testing.T) {
	c := newClient(t)
	c.do("POST", "/api/cart/items", bracelet(1))

	status, env := c.do("GET", "/api/recommendations?limit=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotEqual(t, cart.ProductBracelet, p.Type)
	}
}

package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// Deps are the services the HTTP API is built on.
type Deps struct {
	Config          *config.Config
	Catalog         *catalog.Catalog
	Carts           *services.CartService
	Orders          *services.OrderService
	Recommendations services.Recommender
	// Storage backs the checkout rate limiter.
	Storage fiber.Storage
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	cfg := deps.Config

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	cartHandler := handlers.NewCartHandler(deps.Carts, deps.Catalog)
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	recommendationHandler := handlers.NewRecommendationHandler(deps.Carts, deps.Recommendations)

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.SessionHeader,
		ExposeHeaders:    middleware.SessionHeader,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	api := app.Group("/api")

	// Catalog routes
	products := api.Group("/catalog")
	products.Get("/products", catalogHandler.ListProducts)
	products.Get("/products/:type/:id", catalogHandler.GetProduct)
	products.Get("/charms", catalogHandler.ListCharms)

	api.Get("/orders/receipt/:token", orderHandler.GetReceipt)

	// Session routes
	session := api.Group("", middleware.CartSession(cfg))

	shoppingCart := session.Group("/cart")
	shoppingCart.Get("/", cartHandler.GetCart)
	shoppingCart.Delete("/", cartHandler.ClearCart)
	shoppingCart.Post("/items", cartHandler.AddItem)
	shoppingCart.Patch("/items/:lineId", cartHandler.UpdateQuantity)
	shoppingCart.Delete("/items/:lineId", cartHandler.RemoveItem)
	shoppingCart.Post("/items/:lineId/edit", cartHandler.BeginEdit)
	shoppingCart.Delete("/edit", cartHandler.CancelEdit)

	session.Post("/checkout", limiter.New(limiter.Config{
		Max:        cfg.CheckoutRateLimit,
		Expiration: time.Minute,
		Storage:    deps.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := middleware.GetSessionID(c); ok {
				return "checkout:" + id.String()
			}
			return "checkout:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many checkout attempts, try again in a minute")
		},
	}), orderHandler.Checkout)

	session.Get("/recommendations", recommendationHandler.List)
}

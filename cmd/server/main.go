package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/routes"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/storage"
)

const (
	gcInterval       = 10 * time.Minute
	evictionInterval = 5 * time.Minute
	idleLedger       = 30 * time.Minute
)

type backend interface {
	fiber.Storage
	storage.Purger
}

func main() {
	cfg := config.Load()
	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Fatal("logger setup failed", zap.Error(err))
	}
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStorage(cfg)
	defer store.Close()

	cat := catalog.Default()
	if cfg.Currency != cat.Currency() {
		logging.Warn("configured currency differs from catalog currency",
			zap.String("configured", cfg.Currency),
			zap.String("catalog", cat.Currency()))
	}

	carts := services.NewCartService(store, cfg.CartTTL, logging.Named("cart"))

	shipping, err := services.NewShippingRules(services.DefaultShippingRule)
	if err != nil {
		logging.Fatal("invalid shipping rule", zap.Error(err))
	}

	orders := services.NewOrderService(carts, cat, shipping, cfg.SessionSecret, logging.Named("orders"),
		services.NewConsoleMailer(cfg.MailFrom, logging.Named("mailer")),
		services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat),
	)

	var primary services.Recommender
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGenAIRecommender(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cat)
		if err != nil {
			logging.Warn("gemini recommendations disabled", zap.Error(err))
		} else {
			primary = gemini
		}
	}
	recommendations := services.NewRecommendationService(primary, services.NewCatalogRecommender(cat), logging.Named("recommendations"))

	go storage.RunGC(ctx, store, gcInterval)
	go carts.RunEviction(ctx, idleLedger, evictionInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, routes.Deps{
		Config:          cfg,
		Catalog:         cat,
		Carts:           carts,
		Orders:          orders,
		Recommendations: recommendations,
		Storage:         store,
	})

	go func() {
		<-ctx.Done()
		logging.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logging.Error("shutdown failed", zap.Error(err))
		}
	}()

	logging.Info("starting server", zap.String("port", cfg.AppPort), zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logging.Fatal("fiber.Listen error", zap.Error(err))
	}

	orders.Wait()
}

func openStorage(cfg *config.Config) backend {
	if cfg.StorageDriver != config.StoragePostgres {
		return storage.NewMemoryStorage()
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("database connection failed", zap.Error(err))
	}
	return storage.NewGormStorage(db)
}

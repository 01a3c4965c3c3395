package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kashan16/fatima-botique-ecom-sub001/config"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/controller"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/repository"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/app/service"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/db"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/middleware"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/router"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/scheduler"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/storage"
	"github.com/kashan16/fatima-botique-ecom-sub001/internal/websocket"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/logger"
	"github.com/kashan16/fatima-botique-ecom-sub001/pkg/payment/razorpay"
	redisclient "github.com/kashan16/fatima-botique-ecom-sub001/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		Service:     "storefront-api",
		EnableColor: true,
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if cfg.Server.Environment == "development" {
		if err := db.Seed(); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Redis backs the checkout lock and guest carts. Without it checkout
	// still works (the cart row lock serializes) and guest carts are disabled.
	var (
		checkoutLocker service.CheckoutLocker
		guestCarts     service.GuestCartStore
	)
	if err := redisclient.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without checkout lock and guest carts", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redisclient.Close()
		checkoutLocker = redisclient.NewLocker(redisclient.GetClient(), "lock:")
		guestCarts = repository.NewRedisGuestCartStore(redisclient.GetClient(), cfg.Checkout.GuestCartTTL)
	}

	var gateway service.PaymentGateway
	if cfg.Payment.Razorpay.KeyID != "" {
		client, err := razorpay.NewClient(razorpay.Config{
			KeyID:     cfg.Payment.Razorpay.KeyID,
			KeySecret: cfg.Payment.Razorpay.KeySecret,
			BaseURL:   cfg.Payment.Razorpay.BaseURL,
			Timeout:   cfg.Payment.Razorpay.Timeout,
		})
		if err != nil {
			logger.Fatal("Invalid Razorpay configuration", err)
		}
		gateway = client
	} else {
		logger.Warn("Razorpay is not configured, gateway payments are disabled")
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	database := db.GetDB()
	txManager := repository.NewTransactionManager(database)
	addressRepo := repository.NewAddressRepository(database)
	productRepo := repository.NewProductRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	cartRepo := repository.NewCartRepository(database)
	wishlistRepo := repository.NewWishlistRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	orderRepo := repository.NewOrderRepository(database)

	// Initialize services
	addressService := service.NewAddressService(addressRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(txManager, cartRepo, productRepo, guestCarts)
	guestCartService := service.NewGuestCartService(guestCarts, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo, cartService)
	profileService := service.NewProfileService(profileRepo)
	assetService := service.NewUserAssetService(cartRepo, wishlistRepo)
	checkoutService := service.NewCheckoutService(
		txManager, orderRepo, addressRepo,
		checkoutLocker, hub,
		cfg.Payment.Currency, cfg.Checkout.LockTTL,
	)
	orderService := service.NewOrderService(txManager, orderRepo, hub)
	paymentService := service.NewPaymentService(txManager, orderRepo, gateway, hub)

	var uploadController *controller.UploadController
	if s3Storage, err := storage.NewS3Storage(ctx, cfg.S3); err != nil {
		logger.Warn("S3 unavailable, image uploads are disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		uploadController = controller.NewUploadController(s3Storage)
	}

	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewPaymentSweeper(paymentService, cfg.Scheduler.PaymentSweepSpec, cfg.Scheduler.PaymentAttemptTTL)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start payment sweeper", err)
		}
		defer sweeper.Stop()
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	r := router.NewRouter(router.Controllers{
		Product:   controller.NewProductController(catalogService),
		Cart:      controller.NewCartController(cartService),
		GuestCart: controller.NewGuestCartController(guestCartService),
		Wishlist:  controller.NewWishlistController(wishlistService),
		Address:   controller.NewAddressController(addressService),
		Profile:   controller.NewProfileController(profileService, assetService),
		Checkout:  controller.NewCheckoutController(checkoutService),
		Order:     controller.NewOrderController(orderService),
		Payment:   controller.NewPaymentController(paymentService),
		Upload:    uploadController,
		Events:    websocket.NewHandler(hub, cfg.CORS.AllowedOrigins),
	}, authMiddleware, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown did not complete cleanly", err)
	}
	logger.Info("Server stopped successfully")
}

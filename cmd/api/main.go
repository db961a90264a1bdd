package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api"
	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/payments"
	"github.com/fitkart/storefront-api/internal/repository/postgres"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/internal/shiprocket"
	"github.com/fitkart/storefront-api/internal/stream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("Starting storefront API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	// Connect to database and apply migrations
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := postgres.NewRepositories(db, logger)

	// External gateways. Both fall back to deterministic local behavior when
	// credentials are missing, so a bare environment still serves requests.
	gateway := shiprocket.NewGateway(cfg.Shiprocket, logger)
	if !gateway.HasCredentials() {
		logger.Warn("Carrier credentials not configured, using mock rates and tracking")
	}
	paymentProvider := payments.NewProvider(cfg.Payment, logger)

	// Live update hub doubles as the order change notifier
	hub := stream.NewHub(cfg.Stream, logger)

	// Services
	inventory := service.NewInventoryService(repos.Product, logger)
	offers := service.NewOfferService(repos, logger)
	shipping := service.NewShippingCalculator(cfg.Shipping)
	orders := service.NewOrderService(repos, inventory, gateway, hub, logger)
	checkout := service.NewCheckoutService(repos, offers, shipping, inventory, gateway, paymentProvider, hub, logger)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Repos:    repos,
		Orders:   orders,
		Checkout: checkout,
		Offers:   offers,
		Gateway:  gateway,
		Hub:      hub,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Write timeout stays generous so SSE tracking streams are not cut off
		// before the subscription ceiling.
		WriteTimeout: cfg.Stream.MaxLifetime + time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

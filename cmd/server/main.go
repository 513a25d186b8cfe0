package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/gateway"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/payment"
	"github.com/fjod/go_storefront/internal/publisher"
	"github.com/fjod/go_storefront/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// signature secret is mandatory: an unsigned charge is a broken charge
	signer, err := payment.NewSigner(cfg.GatewaySecret)
	if err != nil {
		log.Fatalf("failed to create signer: %v", err)
	}

	creds := &order.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	orderRepo, err := order.NewRepository(creds)
	if err != nil {
		log.Fatalf("failed to connect to orders database: %v", err)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("failed to run order migrations: %v", err)
	}

	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("failed to run catalog migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	productCache := catalog.NewRedisCache(redisClient)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:    cfg.GatewayURL,
		PrivateKey: cfg.GatewayPrivateKey,
		Timeout:    cfg.GatewayTimeout,
	})

	verifier := catalog.NewVerifier(catalogRepo)
	checkoutService := checkout.NewCheckoutService(
		verifier, signer, gatewayClient, orderRepo, cfg.Currency, cfg.GatewayTimeout)
	workflow := order.NewWorkflow(orderRepo)
	reconciler := webhook.NewReconciler(signer, orderRepo)

	pollerCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	poller := publisher.NewOutboxPoller(orderRepo, cfg.OutboxEventInterval, cfg.OutboxRecoveryInterval, cfg.KafkaBroker)
	go poller.Run(pollerCtx)

	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(reconciler, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(orderRepo, workflow, cfg.RequestTimeout)
	productsHandler := h.NewProductsHandler(catalogRepo, productCache, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.CORSMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// gateway callbacks carry their own signature, no session auth
		r.Post("/webhooks/payments", webhookHandler.Receive)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productsHandler.ListProducts)
			r.Get("/{product_id}", productsHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.MockAuthMiddleware)

			r.Post("/checkout", checkoutHandler.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{order_id}", ordersHandler.GetOrder)
				r.Patch("/{order_id}/status", ordersHandler.UpdateStatus)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopPoller()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

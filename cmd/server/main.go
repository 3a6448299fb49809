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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/voltkart/storefront/internal/cache"
	"github.com/voltkart/storefront/internal/cart"
	"github.com/voltkart/storefront/internal/checkout"
	"github.com/voltkart/storefront/internal/clients"
	"github.com/voltkart/storefront/internal/config"
	"github.com/voltkart/storefront/internal/events"
	"github.com/voltkart/storefront/internal/httpapi"
	"github.com/voltkart/storefront/internal/repository"
	"github.com/voltkart/storefront/internal/wishlist"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env: %v", err)
	}
	cfg := config.Load()

	ctx := context.Background()
	mongoDB, err := repository.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := repository.CreateCartIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	if err := repository.CreateWishlistIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create wishlist indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.EventsTopic, cfg.ServiceName, 256)
	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	publisher.Start(publisherCtx)

	couponClient := clients.NewCouponClient(cfg.CouponServiceURL, cfg.ClientTimeout)
	validationClient := clients.NewValidationClient(cfg.ValidationServiceURL, cfg.ClientTimeout)
	paymentClient := clients.NewPaymentClient(cfg.PaymentServiceURL, cfg.ClientTimeout)
	catalogClient := clients.NewCatalogClient(cfg.CatalogServiceURL, cfg.ClientTimeout)

	redisCache := cache.NewRedisCache(redisClient, cfg.CacheTTL, cfg.CacheTTLJitter)
	cartService := cart.NewService(repository.NewMongoCartRepository(mongoDB), redisCache)
	wishlistService := wishlist.NewService(repository.NewMongoWishlistRepository(mongoDB), redisCache)
	checkoutStore := checkout.NewStore(cfg.SessionTTL)
	defer checkoutStore.Close()

	cartHandler := httpapi.NewCartHandler(cartService, couponClient, validationClient, publisher, cfg.RequestTimeout)
	checkoutHandler := httpapi.NewCheckoutHandler(checkoutStore, cartService, paymentClient, paymentClient, publisher, cfg.RequestTimeout)
	wishlistHandler := httpapi.NewWishlistHandler(wishlistService, catalogClient, publisher, cfg.RequestTimeout)

	router := httpapi.NewRouter(cartHandler, checkoutHandler, wishlistHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	stopPublisher()
	publisher.WaitClosed()

	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Printf("mongo disconnect: %v", err)
	}
	log.Println("Storefront API stopped")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/HassanTech1/4seven/internal/addressbook"
	"github.com/HassanTech1/4seven/internal/cart"
	"github.com/HassanTech1/4seven/internal/checkout"
	h "github.com/HassanTech1/4seven/internal/http"
	"github.com/HassanTech1/4seven/internal/orders"
	"github.com/HassanTech1/4seven/internal/poller"
	"github.com/HassanTech1/4seven/internal/pricing"
	"github.com/HassanTech1/4seven/internal/processor"
	"github.com/HassanTech1/4seven/internal/publisher"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	KafkaBrokers    []string
	ProcessorURL    string
	ProcessorAPIKey string
	AddressBookURL  string
	RequestTimeout  time.Duration
	ClientTimeout   time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storedb"),
		ProcessorURL:    getEnv("PROCESSOR_URL", "http://localhost:9090"),
		ProcessorAPIKey: getEnv("PROCESSOR_API_KEY", ""),
		AddressBookURL:  getEnv("ADDRESS_BOOK_URL", ""),
		RequestTimeout:  30 * time.Second,
		ClientTimeout:   10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart storage
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Connected to redis at %s", cfg.RedisAddr)

	registry := cart.NewRegistry(cart.NewRedisStorage(redisClient))

	// Order records
	mongoDB, err := orders.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := orders.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create order indexes: %v", err)
	}
	orderRepo := orders.NewMongoRepository(mongoDB)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Payment processor
	procClient := processor.NewClient(cfg.ProcessorURL, cfg.ProcessorAPIKey, cfg.ClientTimeout)

	// Address book (optional collaborator)
	var (
		addrClient *addressbook.Client
		addrLister h.AddressLister
		addrSaver  checkout.AddressSaver
	)
	if cfg.AddressBookURL != "" {
		addrClient = addressbook.NewClient(cfg.AddressBookURL, cfg.ClientTimeout)
		addrLister = addrClient
		addrSaver = addrClient
		log.Printf("Address book at %s", cfg.AddressBookURL)
	}

	// Confirmed-order events (optional collaborator)
	var confirmedPub poller.ConfirmedPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPub.Close()
		confirmedPub = kafkaPub
		log.Printf("Publishing confirmed orders to %v", cfg.KafkaBrokers)
	}

	resolver := pricing.StaticResolver{}
	builder := checkout.NewBuilder(resolver, procClient, addrSaver, orderRepo)

	cartHandler := h.NewCartHandler(registry, resolver)
	checkoutHandler := h.NewCheckoutHandler(registry, builder, procClient, addrLister, orderRepo, confirmedPub)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.CartIDMiddleware)
	r.Use(h.AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/discount", cartHandler.ApplyDiscount)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Submit)
			r.Get("/confirm", checkoutHandler.Confirm)
		})
		if addrClient != nil {
			addressHandler := h.NewAddressHandler(addrClient)
			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addressHandler.List)
				r.Post("/", addressHandler.Create)
				r.Delete("/{address_id}", addressHandler.Delete)
			})
		}
	})

	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// Confirmation polling holds the response for the full retry budget.
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect error: %v", err)
	}
	log.Println("server exited")
}

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

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/abdalwely/online-store/internal/analytics"
	"github.com/abdalwely/online-store/internal/assets"
	"github.com/abdalwely/online-store/internal/cart"
	"github.com/abdalwely/online-store/internal/checkout"
	"github.com/abdalwely/online-store/internal/config"
	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/db"
	"github.com/abdalwely/online-store/internal/events"
	httpapi "github.com/abdalwely/online-store/internal/http"
	"github.com/abdalwely/online-store/internal/identity"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/platform"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/tenant"
	"github.com/abdalwely/online-store/internal/wishlist"
)

type orderPublisher interface {
	PublishOrderCreated(ctx context.Context, o order.Order) error
	PublishStatusChanged(ctx context.Context, o order.Order, previous order.Status) error
}

// discardPublisher stands in for the broker when EVENTS_ENABLED is off.
type discardPublisher struct{}

func (discardPublisher) PublishOrderCreated(context.Context, order.Order) error { return nil }

func (discardPublisher) PublishStatusChanged(context.Context, order.Order, order.Status) error {
	return nil
}

func main() {
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatalf("redis connect: %v", err)
	}

	// --- Mongo (asset storage) ---
	mongoDB, err := assets.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = mongoDB.Client().Disconnect(disconnectCtx)
	}()
	assetStore, err := assets.NewGridFSStore(mongoDB, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatalf("gridfs: %v", err)
	}

	// --- AMQP ---
	var publisher orderPublisher = discardPublisher{}
	if cfg.EventsEnabled {
		conn, err := events.DialRabbit(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("rabbitmq: %v", err)
		}
		defer conn.Close()

		pub, err := newPublisher(conn, pool, cfg.ServiceName, logger)
		if err != nil {
			logger.Fatalf("publisher: %v", err)
		}
		publisher = pub

		if err := startProjector(ctx, conn, pool, logger); err != nil {
			logger.Fatalf("start consumers: %v", err)
		}
	} else {
		logger.Printf("events disabled; order events are not published")
	}

	// --- services ---
	products := product.NewService(product.NewPostgresRepository(pool), logger)
	stores := tenant.NewService(tenant.NewPostgresRepository(pool), products, cfg.DemoStoreID, logger)
	customers := customer.NewService(customer.NewPostgresRepository(pool))
	carts := cart.NewService(cart.NewRedisStore(rdb, cfg.CartTTL), products, logger)
	coupons := coupon.NewService(coupon.NewPostgresRepository(pool))
	orders := order.NewService(order.NewPostgresRepository(pool), publisher, logger)
	accounts := identity.NewService(
		identity.NewPostgresAccounts(pool),
		identity.NewSessionStore(rdb, cfg.SessionTTL),
		stores, customers, carts, logger,
	)

	if cfg.AdminEmail != "" {
		if err := accounts.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatalf("bootstrap admin: %v", err)
		}
	}
	if _, err := stores.Resolve(ctx, ""); err != nil {
		logger.Printf("demo store not ready: %v", err)
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         logger,
		ServiceName:    cfg.ServiceName,
		AllowOrigins:   cfg.CORSAllowOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,

		Stores:    stores,
		Catalog:   products,
		Carts:     carts,
		Wishlists: wishlist.NewService(rdb, products, cfg.CartTTL),
		Coupons:   coupons,
		Checkout:  checkout.NewService(checkout.NewPostgresRepository(pool), carts, coupons, publisher, logger),
		Orders:    orders,
		Customers: customers,
		Identity:  accounts,
		Platform:  platform.NewService(platform.NewPostgresRepository(pool), logger),
		Stats:     analytics.NewService(products, customers, analytics.NewRepository(pool)),
		Assets:    assetStore,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}

func newPublisher(conn *amqp.Connection, pool db.DBPool, producer string, logger *log.Logger) (*events.Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return events.NewPublisher(ch, events.NewSequenceRepository(pool), producer, logger)
}

// startProjector feeds the store statistics projection from the order events.
func startProjector(ctx context.Context, conn *amqp.Connection, pool db.DBPool, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return err
	}

	projector := analytics.NewProjector(pool, logger)
	if err := events.StartConsumer(ctx, ch, "analytics", events.OrderCreatedRoutingKey, projector.HandleOrderCreated, logger); err != nil {
		return err
	}
	return events.StartConsumer(ctx, ch, "analytics", events.OrderStatusChangedRoutingKey, projector.HandleStatusChanged, logger)
}

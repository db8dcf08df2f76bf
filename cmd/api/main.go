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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/notifications"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/instance"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/pubsub"
	"github.com/angelmondragon/storefront/pkg/rabbitmq"
	"github.com/angelmondragon/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// deps holds everything that must be closed on shutdown, in reverse order of creation.
type deps struct {
	closers   []func() error
	readiness map[string]controllers.Pinger
}

func (d *deps) add(name string, pinger controllers.Pinger, closeFn func() error) {
	if pinger != nil {
		d.readiness[name] = pinger
	}
	if closeFn != nil {
		d.closers = append(d.closers, func() error {
			if err := closeFn(); err != nil {
				return fmt.Errorf("closing %s: %w", name, err)
			}
			return nil
		})
	}
}

func (d *deps) close() error {
	var err error
	for i := len(d.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, d.closers[i]())
	}
	return err
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	d := &deps{readiness: map[string]controllers.Pinger{}}
	defer func() {
		err = multierr.Append(err, d.close())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(reg)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, cfg.Cart.KeyNamespace, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		d.add("redis", redisClient, redisClient.Close)
	}

	storage, err := newStorage(ctx, cfg, logg, redisClient, d)
	if err != nil {
		return err
	}

	notifier := notifications.Multi{notifications.NewLogNotifier(logg)}
	if redisClient != nil {
		notifier = append(notifier, notifications.NewRedisNotifier(redisClient))
	}

	cartStore, err := cart.NewStore(storage, logg, cart.Options{
		Currency:      cfg.Cart.Currency,
		RepriceOnLoad: cfg.Cart.RepriceOnLoad,
		Notifier:      notifier,
		Metrics:       cartMetrics,
	})
	if err != nil {
		return fmt.Errorf("create cart store: %w", err)
	}

	submitter, err := newSubmitter(ctx, cfg, logg, d)
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(cartStore, submitter, logg, checkout.Options{
		Currency: cfg.Cart.Currency,
		Timeout:  cfg.Orders.Timeout,
		Notifier: notifier,
		Metrics:  cartMetrics,
	})
	if err != nil {
		return fmt.Errorf("create checkout service: %w", err)
	}

	var idempotency redis.IdempotencyStore
	if redisClient != nil {
		idempotency = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.GetID(),
		"storage":   cfg.Cart.Storage,
		"transport": submitter.Transport(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			cartStore,
			checkoutService,
			idempotency,
			d.readiness,
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, d *deps) (kv.Store, error) {
	switch cfg.Cart.Storage {
	case config.CartStorageMemory:
		logg.Warn(ctx, "cart storage is in-memory; carts are lost on restart")
		return kv.NewMemory(cfg.Cart.TTL), nil
	case config.CartStorageRedis:
		if redisClient == nil {
			return nil, errors.New("redis storage selected but redis is not configured")
		}
		return kv.NewRedis(redisClient, cfg.Cart.TTL), nil
	case config.CartStorageDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		d.add("db", dbClient, dbClient.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return nil, fmt.Errorf("run dev migrations: %w", err)
		}
		return kv.NewSQL(dbClient.DB(), cfg.Cart.TTL), nil
	}
	return nil, fmt.Errorf("unsupported cart storage %q", cfg.Cart.Storage)
}

func newSubmitter(ctx context.Context, cfg *config.Config, logg *logger.Logger, d *deps) (orders.Submitter, error) {
	switch cfg.Orders.Transport {
	case config.OrdersTransportHTTP:
		return orders.NewHTTPSubmitter(cfg.Orders.SubmitURL, cfg.Orders.Timeout), nil
	case config.OrdersTransportRabbitMQ:
		pool, err := rabbitmq.NewChannelPool(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PoolSize, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap rabbitmq: %w", err)
		}
		d.add("rabbitmq", nil, pool.Close)
		return orders.NewRabbitMQSubmitter(rabbitmq.NewPublisher(pool, cfg.RabbitMQ.Queue)), nil
	case config.OrdersTransportPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap pubsub: %w", err)
		}
		d.add("pubsub", client, client.Close)
		return orders.NewPubSubSubmitter(client), nil
	}
	return nil, fmt.Errorf("unsupported orders transport %q", cfg.Orders.Transport)
}

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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"grocery-commerce/internal/catalog"
	"grocery-commerce/internal/config"
	"grocery-commerce/internal/db"
	"grocery-commerce/internal/httpserver"
	"grocery-commerce/internal/logging"
	"grocery-commerce/internal/notify"
	"grocery-commerce/internal/payment"
	categoryrepo "grocery-commerce/internal/repository/category"
	"grocery-commerce/internal/repository/kv"
	productrepo "grocery-commerce/internal/repository/product"
	cartsvc "grocery-commerce/internal/service/cart"
	checkoutsvc "grocery-commerce/internal/service/checkout"
	ordersvc "grocery-commerce/internal/service/order"
	"grocery-commerce/internal/service/pricing"
	profilesvc "grocery-commerce/internal/service/profile"
	"grocery-commerce/internal/session"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("api", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.StoreBackend == "postgres" || cfg.CatalogSource == "postgres" {
		pool, err = db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
	}

	repo, ready, closeStore, err := openStore(ctx, cfg, pool, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	var src catalog.Source = catalog.Embedded()
	if cfg.CatalogSource == "postgres" {
		src = catalog.FromRepositories(productrepo.NewPostgres(pool, logger), categoryrepo.NewPostgres(pool))
	}
	reader := catalog.New(src, logger)
	if err := reader.Load(ctx); err != nil {
		logger.Fatal("load catalog", zap.String("source", cfg.CatalogSource), zap.Error(err))
	}

	sessions := session.NewRegistry(repo, notify.NewLogger(logger), logger)
	identity, err := session.NewIdentity(sessions, session.IdentityConfig{
		Secret: []byte(cfg.JWTSecret),
		Delay:  cfg.AuthDelay,
	}, logger)
	if err != nil {
		logger.Fatal("init identity", zap.Error(err))
	}

	engine := pricing.NewEngine(logger)
	orders := ordersvc.New(logger)
	profiles := profilesvc.New(logger)
	gateway := payment.NewBreaker(payment.NewSimulated(0), cfg.PaymentTimeout, logger)
	checkout := checkoutsvc.New(profiles, engine, orders, gateway, checkoutsvc.Config{
		ProcessingDelay: cfg.ProcessingDelay,
		Currency:        cfg.Currency,
	}, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Catalog:     reader,
		Sessions:    sessions,
		Identity:    identity,
		Cart:        cartsvc.New(reader, logger),
		Pricing:     engine,
		Checkout:    checkout,
		Orders:      orders,
		Profile:     profiles,
		Ready:       ready,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreBackend), zap.String("catalog", cfg.CatalogSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// openStore selects the key-value backend. The returned Pinger is nil for the
// in-memory backend.
func openStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (kv.Repository, httpserver.Pinger, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case "memory", "":
		return kv.NewMemory(), nil, noop, nil
	case "postgres":
		return kv.NewPostgres(pool, logger), pool, noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		repo := kv.NewRedis(client)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			client.Close()
			return nil, nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return repo, repo, func() { client.Close() }, nil
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, noop, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		repo := kv.NewMongo(client.Database(cfg.MongoDB), "kv_entries")
		pinger, ok := repo.(httpserver.Pinger)
		if !ok {
			closeFn()
			return nil, nil, noop, errors.New("mongo repository does not support ping")
		}
		if err := pinger.Ping(connectCtx); err != nil {
			closeFn()
			return nil, nil, noop, fmt.Errorf("ping mongo: %w", err)
		}
		return repo, pinger, closeFn, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

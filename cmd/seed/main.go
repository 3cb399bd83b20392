package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"grocery-commerce/internal/catalog"
	"grocery-commerce/internal/config"
	"grocery-commerce/internal/db"
	"grocery-commerce/internal/logging"
	"grocery-commerce/internal/repository/category"
	"grocery-commerce/internal/repository/product"
	"grocery-commerce/internal/seed"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New("seed", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if _, err := seed.Apply(ctx, catalog.Embedded(), product.NewPostgres(pool, logger), category.NewPostgres(pool), logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}

package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"grocery-commerce/internal/catalog"
	"grocery-commerce/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type TaxonomyWriter interface {
	UpsertCategory(ctx context.Context, c domain.Category) error
	UpsertBrand(ctx context.Context, b domain.Brand) error
}

// Result counts the rows written by Apply.
type Result struct {
	Brands     int
	Categories int
	Products   int
}

// Apply copies the dataset from src into the catalog tables. It is idempotent:
// every write is an upsert keyed by id.
func Apply(ctx context.Context, src catalog.Source, products ProductWriter, taxonomy TaxonomyWriter, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ds, err := src.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load dataset: %w", err)
	}

	var res Result
	for _, b := range ds.Brands {
		if err := taxonomy.UpsertBrand(ctx, b); err != nil {
			return res, fmt.Errorf("upsert brand %s: %w", b.ID, err)
		}
		res.Brands++
	}
	for _, c := range ds.Categories {
		if err := taxonomy.UpsertCategory(ctx, c); err != nil {
			return res, fmt.Errorf("upsert category %s: %w", c.ID, err)
		}
		res.Categories++
	}
	for _, p := range ds.Products {
		if _, err := products.Upsert(ctx, p); err != nil {
			return res, fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
		res.Products++
	}
	logger.Info("seed applied",
		zap.Int("brands", res.Brands), zap.Int("categories", res.Categories), zap.Int("products", res.Products))
	return res, nil
}

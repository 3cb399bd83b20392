package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/migrate"
)

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	_, err := repo.Upsert(ctx, domain.Product{
		ID:              "p-100",
		Name:            "Oat Milk",
		Brand:           "Dairyland",
		Category:        "Dairy & Eggs",
		Price:           decimal.RequireFromString("3.49"),
		DiscountPercent: decimal.Zero,
		InStock:         true,
		Rating:          4.1,
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}

	_, err = repo.Upsert(ctx, domain.Product{
		ID:              "p-100",
		Name:            "Oat Milk Barista",
		Brand:           "Dairyland",
		Category:        "Dairy & Eggs",
		Price:           decimal.RequireFromString("3.99"),
		DiscountPercent: decimal.NewFromInt(10),
		InStock:         false,
		Rating:          4.3,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, "p-100")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Oat Milk Barista" || !got.Price.Equal(decimal.RequireFromString("3.99")) || got.InStock {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE products, brands, categories`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

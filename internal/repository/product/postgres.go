package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product repo")}
}

const productColumns = `id, name, brand, category, COALESCE(unit, ''), COALESCE(description, ''), price::text, discount_percent::text, in_stock, rating, COALESCE(image, '')`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
ORDER BY category ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Warn("list failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn("list rows failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Warn("get failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, brand, category, unit, description, price, discount_percent, in_stock, rating, image)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7::numeric, $8::numeric, $9, $10, NULLIF($11, ''))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    brand = EXCLUDED.brand,
    category = EXCLUDED.category,
    unit = EXCLUDED.unit,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    discount_percent = EXCLUDED.discount_percent,
    in_stock = EXCLUDED.in_stock,
    rating = EXCLUDED.rating,
    image = EXCLUDED.image
`
	_, err := r.pool.Exec(ctx, q,
		product.ID,
		product.Name,
		product.Brand,
		product.Category,
		product.Unit,
		product.Description,
		product.Price.String(),
		product.DiscountPercent.String(),
		product.InStock,
		product.Rating,
		product.Image,
	)
	if err != nil {
		r.logger.Warn("upsert failed", zap.String("id", product.ID), zap.Error(err))
		return nil, err
	}
	out := product
	r.logger.Debug("upserted", zap.String("id", out.ID))
	return &out, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p           domain.Product
		price, disc string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Unit, &p.Description, &price, &disc, &p.InStock, &p.Rating, &p.Image); err != nil {
		return domain.Product{}, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, err
	}
	if p.DiscountPercent, err = decimal.NewFromString(disc); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"grocery-commerce/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type TaxonomyWriter interface {
	UpsertCategory(ctx context.Context, c domain.Category) error
	UpsertBrand(ctx context.Context, b domain.Brand) error
}

// CSVImporter reads catalog CSV exports and inserts/updates products together
// with the brands and categories they reference.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	taxonomy TaxonomyWriter
	logger   *zap.Logger

	seenBrands     map[string]bool
	seenCategories map[string]bool
}

func NewCSVImporter(r io.Reader, products ProductWriter, taxonomy TaxonomyWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:         csvr,
		products:       products,
		taxonomy:       taxonomy,
		logger:         logger.Named("importer"),
		seenBrands:     map[string]bool{},
		seenCategories: map[string]bool{},
	}
}

// Run parses CSV rows and upserts one product per row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return 0, errors.New("missing required column \"id\"")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if p == nil {
			continue
		}
		if err := i.save(ctx, *p); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("import finished", zap.Int("products", imported),
		zap.Int("brands", len(i.seenBrands)), zap.Int("categories", len(i.seenCategories)))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p domain.Product) error {
	if i.taxonomy != nil {
		if !i.seenBrands[p.Brand] {
			if err := i.taxonomy.UpsertBrand(ctx, domain.Brand{ID: "b-" + slugify(p.Brand), Name: p.Brand}); err != nil {
				return fmt.Errorf("upsert brand %q: %w", p.Brand, err)
			}
			i.seenBrands[p.Brand] = true
		}
		if !i.seenCategories[p.Category] {
			slug := slugify(p.Category)
			if err := i.taxonomy.UpsertCategory(ctx, domain.Category{ID: "c-" + slug, Name: p.Category, Slug: slug}); err != nil {
				return fmt.Errorf("upsert category %q: %w", p.Category, err)
			}
			i.seenCategories[p.Category] = true
		}
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// parseRow returns nil for blank rows.
func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	id := pick(record, index, "id")
	if id == "" {
		return nil, nil
	}
	p := &domain.Product{
		ID:          id,
		Name:        pick(record, index, "name"),
		Brand:       pick(record, index, "brand"),
		Category:    pick(record, index, "category"),
		Unit:        pick(record, index, "unit"),
		Description: pick(record, index, "description"),
		Image:       pick(record, index, "image"),
		InStock:     true,
	}
	if p.Name == "" || p.Brand == "" || p.Category == "" {
		return nil, fmt.Errorf("product %q: name, brand and category are required", id)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("product %q: invalid price", id)
	}
	p.Price = price

	if v := pick(record, index, "discountPercent"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("product %q: invalid discountPercent", id)
		}
		p.DiscountPercent = d
	}
	if v := pick(record, index, "inStock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid inStock", id)
		}
		p.InStock = b
	}
	if v := pick(record, index, "rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid rating", id)
		}
		p.Rating = r
	}
	return p, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

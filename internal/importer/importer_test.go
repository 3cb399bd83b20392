package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"grocery-commerce/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

type stubTaxonomyRepo struct {
	brands     []domain.Brand
	categories []domain.Category
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubTaxonomyRepo) UpsertCategory(_ context.Context, c domain.Category) error {
	s.categories = append(s.categories, c)
	return nil
}

func (s *stubTaxonomyRepo) UpsertBrand(_ context.Context, b domain.Brand) error {
	s.brands = append(s.brands, b)
	return nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,brand,category,unit,price,discountPercent,inStock,rating,image
p-100,Sourdough Loaf,Bakehouse,Bakery,1 loaf,5.49,10,true,4.6,https://example.com/sourdough.jpg
p-101,Rye Bread,Bakehouse,Bakery,1 loaf,4.25,,false,,
,,,,,,,,,
p-102,Greek Yogurt,Dairyland,Dairy & Eggs,500 g,3.10,0,true,4.2,`

	repo := &stubProductRepo{}
	tax := &stubTaxonomyRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, tax, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.ID != "p-100" || first.Price.String() != "5.49" || first.DiscountPercent.String() != "10" || !first.InStock {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if repo.items[1].InStock {
		t.Fatalf("expected p-101 out of stock")
	}
	if !repo.items[1].DiscountPercent.IsZero() {
		t.Fatalf("expected zero discount default, got %s", repo.items[1].DiscountPercent)
	}
	if len(tax.brands) != 2 || tax.brands[0].ID != "b-bakehouse" {
		t.Fatalf("expected 2 brand upserts, got %+v", tax.brands)
	}
	if len(tax.categories) != 2 || tax.categories[1].Slug != "dairy-eggs" {
		t.Fatalf("expected 2 category upserts, got %+v", tax.categories)
	}
}

func TestCSVImporter_RejectsInvalidRows(t *testing.T) {
	cases := map[string]string{
		"negative price": "id,name,brand,category,price\np-1,Milk,Dairyland,Dairy,-1",
		"bad discount":   "id,name,brand,category,price,discountPercent\np-1,Milk,Dairyland,Dairy,1,120",
		"missing name":   "id,name,brand,category,price\np-1,,Dairyland,Dairy,1",
		"bad stock flag": "id,name,brand,category,price,inStock\np-1,Milk,Dairyland,Dairy,1,maybe",
		"missing id col": "name,brand,category,price\nMilk,Dairyland,Dairy,1",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, nil, nil)
			if _, err := imp.Run(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVImporter_PropagatesWriteError(t *testing.T) {
	boom := errors.New("db down")
	data := "id,name,brand,category,price\np-1,Milk,Dairyland,Dairy,1.99"
	imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{err: boom}, nil, nil)
	count, err := imp.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 imported, got %d", count)
	}
}

func TestSlugify(t *testing.T) {
	if got := slugify("Fruits & Vegetables"); got != "fruits-vegetables" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got := slugify("Pantry Co."); got != "pantry-co" {
		t.Fatalf("unexpected slug %q", got)
	}
}

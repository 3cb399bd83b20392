package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"grocery-commerce/internal/domain"
)

type stubProducts struct {
	products []domain.Product
	err      error
	calls    atomic.Int32
	delay    time.Duration
}

func (s *stubProducts) List(context.Context) ([]domain.Product, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.products, s.err
}

type stubTaxonomy struct{}

func (stubTaxonomy) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c1", Name: "Bakery"}}, nil
}

func (stubTaxonomy) ListBrands(context.Context) ([]domain.Brand, error) {
	return []domain.Brand{{ID: "b1", Name: "Bakehouse"}}, nil
}

func TestEmbeddedCatalog(t *testing.T) {
	r := New(Embedded(), nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(r.All()) == 0 || len(r.Brands()) == 0 || len(r.Categories()) == 0 {
		t.Fatalf("expected populated dataset")
	}
	p, ok := r.FindByID("p-001")
	if !ok {
		t.Fatalf("expected p-001")
	}
	if p.Name != "Organic Bananas" || !p.Price.Equal(decimal.RequireFromString("2.49")) {
		t.Fatalf("unexpected product %+v", p)
	}
	if _, ok := r.FindByID("nope"); ok {
		t.Fatalf("expected unknown id to miss")
	}
}

func TestSearch(t *testing.T) {
	r := New(Embedded(), nil)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	dairy := r.Search(Filter{Category: "dairy & eggs", SortBy: "price"})
	if len(dairy) != 4 {
		t.Fatalf("expected 4 dairy products, got %d", len(dairy))
	}
	for i := 1; i < len(dairy); i++ {
		if dairy[i].Price.LessThan(dairy[i-1].Price) {
			t.Fatalf("expected ascending price order")
		}
	}

	inStock := r.Search(Filter{InStock: true})
	for _, p := range inStock {
		if !p.InStock {
			t.Fatalf("out of stock product %s returned", p.ID)
		}
	}

	if got := r.Search(Filter{Query: "salmon"}); len(got) != 1 || got[0].ID != "p-011" {
		t.Fatalf("unexpected query result %+v", got)
	}
}

func TestRepositorySource_SharedLoad(t *testing.T) {
	products := &stubProducts{
		products: []domain.Product{{ID: "x1", Name: "Rye"}},
		delay:    20 * time.Millisecond,
	}
	r := New(FromRepositories(products, stubTaxonomy{}), nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Load(context.Background()); err != nil {
				t.Errorf("load: %v", err)
			}
		}()
	}
	wg.Wait()

	if products.calls.Load() >= 5 {
		t.Fatalf("expected concurrent loads to share a read, got %d calls", products.calls.Load())
	}
	if _, ok := r.FindByID("x1"); !ok {
		t.Fatalf("expected x1 after load")
	}
}

func TestRepositorySource_Error(t *testing.T) {
	r := New(FromRepositories(&stubProducts{err: errors.New("db down")}, stubTaxonomy{}), nil)
	if err := r.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if r.Loaded() {
		t.Fatalf("expected reader to stay unloaded")
	}
}

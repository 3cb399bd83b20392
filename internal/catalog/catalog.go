// Package catalog is the read-only accessor over the product, brand and
// category dataset.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"grocery-commerce/internal/domain"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// Dataset is a full catalog snapshot.
type Dataset struct {
	Brands     []domain.Brand    `json:"brands"`
	Categories []domain.Category `json:"categories"`
	Products   []domain.Product  `json:"products"`
}

// Source produces a Dataset.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

type embeddedSource struct{}

// Embedded returns the dataset compiled into the binary.
func Embedded() Source {
	return embeddedSource{}
}

func (embeddedSource) Load(context.Context) (Dataset, error) {
	return Parse(embeddedCatalog)
}

// Parse decodes a catalog document.
func Parse(raw []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode catalog: %w", err)
	}
	return ds, nil
}

// Reader serves lookups from the last loaded Dataset. Products are immutable
// for the lifetime of a snapshot.
type Reader struct {
	src    Source
	logger *zap.Logger
	sf     singleflight.Group

	mu     sync.RWMutex
	data   Dataset
	byID   map[string]domain.Product
	loaded bool
}

func New(src Source, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{src: src, logger: logger.Named("catalog"), byID: map[string]domain.Product{}}
}

// Load (re)reads the source. Concurrent callers share one read.
func (r *Reader) Load(ctx context.Context) error {
	_, err, _ := r.sf.Do("load", func() (interface{}, error) {
		ds, err := r.src.Load(ctx)
		if err != nil {
			r.logger.Warn("catalog load failed", zap.Error(err))
			return nil, err
		}
		byID := make(map[string]domain.Product, len(ds.Products))
		for _, p := range ds.Products {
			byID[p.ID] = p
		}
		r.mu.Lock()
		r.data = ds
		r.byID = byID
		r.loaded = true
		r.mu.Unlock()
		r.logger.Info("catalog loaded",
			zap.Int("products", len(ds.Products)),
			zap.Int("brands", len(ds.Brands)),
			zap.Int("categories", len(ds.Categories)))
		return nil, nil
	})
	return err
}

// Loaded reports whether a snapshot is available.
func (r *Reader) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// FindByID returns the product with id.
func (r *Reader) FindByID(id string) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// All returns every product in catalog order.
func (r *Reader) All() []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, len(r.data.Products))
	copy(out, r.data.Products)
	return out
}

func (r *Reader) Brands() []domain.Brand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Brand, len(r.data.Brands))
	copy(out, r.data.Brands)
	return out
}

func (r *Reader) Categories() []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, len(r.data.Categories))
	copy(out, r.data.Categories)
	return out
}

// Filter narrows the product list.
type Filter struct {
	Category string
	Brand    string
	Query    string
	InStock  bool
	SortBy   string // "price", "rating", "name"
	SortDesc bool
}

// Search returns products matching f.
func (r *Reader) Search(f Filter) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []domain.Product
	for _, p := range r.All() {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if f.InStock && !p.InStock {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Brand), query) {
			continue
		}
		out = append(out, p)
	}

	less := func(i, j int) bool { return false }
	switch f.SortBy {
	case "price":
		less = func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) }
	case "rating":
		less = func(i, j int) bool { return out[i].Rating < out[j].Rating }
	case "name":
		less = func(i, j int) bool { return out[i].Name < out[j].Name }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.SortDesc {
			return less(j, i)
		}
		return less(i, j)
	})
	return out
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product-quantity pairing. Product fields are snapshotted when
// the line is created.
type CartLine struct {
	ProductID       string          `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand,omitempty"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Image           string          `json:"image,omitempty"`
	Quantity        int             `json:"quantity"`
}

// WishlistEntry is a saved-for-later product reference.
type WishlistEntry struct {
	ProductID       string          `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Image           string          `json:"image,omitempty"`
	InStock         bool            `json:"inStock"`
	AddedAt         time.Time       `json:"addedAt"`
}

// MaxLineQuantity is the largest quantity a single cart line may hold.
const MaxLineQuantity = 999

// ClampQuantity bounds qty to [1, MaxLineQuantity].
func ClampQuantity(qty int) int {
	switch {
	case qty < 1:
		return 1
	case qty > MaxLineQuantity:
		return MaxLineQuantity
	}
	return qty
}

// AddQuantity sums two line quantities without exceeding MaxLineQuantity.
func AddQuantity(have, add int) int {
	add = ClampQuantity(add)
	if have > MaxLineQuantity-add {
		return MaxLineQuantity
	}
	return ClampQuantity(have + add)
}

// NewCartLine snapshots product into a line holding qty units.
func NewCartLine(p Product, qty int) CartLine {
	return CartLine{
		ProductID:       p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		Image:           p.Image,
		Quantity:        ClampQuantity(qty),
	}
}

// NewWishlistEntry snapshots product into a wishlist entry.
func NewWishlistEntry(p Product, now time.Time) WishlistEntry {
	return WishlistEntry{
		ProductID:       p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		Image:           p.Image,
		InStock:         p.InStock,
		AddedAt:         now,
	}
}

// Product rebuilds the catalog view of a wishlist entry.
func (w WishlistEntry) Product() Product {
	return Product{
		ID:              w.ProductID,
		Name:            w.Name,
		Brand:           w.Brand,
		Price:           w.Price,
		DiscountPercent: w.DiscountPercent,
		Image:           w.Image,
		InStock:         w.InStock,
	}
}

package domain

import "github.com/shopspring/decimal"

// Product is a read-only catalog entry.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit,omitempty"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	InStock         bool            `json:"inStock"`
	Rating          float64         `json:"rating"`
	Image           string          `json:"image,omitempty"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

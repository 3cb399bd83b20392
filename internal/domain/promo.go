package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoKind string

const (
	PromoPercentage PromoKind = "percentage"
	PromoFixed      PromoKind = "fixed"
)

// PromoCode is a static discount rule gated by a minimum order subtotal.
type PromoCode struct {
	Code        string          `json:"code"`
	Kind        PromoKind       `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	MinOrder    decimal.Decimal `json:"minOrder"`
	Description string          `json:"description,omitempty"`
}

// AppliedPromo records which code the cart carries.
type AppliedPromo struct {
	Code      string    `json:"code"`
	AppliedAt time.Time `json:"appliedAt"`
}

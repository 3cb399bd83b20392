// Package pricing computes cart totals and owns promo-code application.
package pricing

import (
	"github.com/shopspring/decimal"
	"grocery-commerce/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	// TaxRate is applied to the subtotal before any promo discount.
	TaxRate = decimal.RequireFromString("0.08")
)

var deliveryFees = map[domain.DeliveryTier]decimal.Decimal{
	domain.TierStandard:  decimal.RequireFromString("4.99"),
	domain.TierExpress:   decimal.RequireFromString("9.99"),
	domain.TierScheduled: decimal.RequireFromString("2.99"),
}

var timeSlots = []domain.TimeSlot{
	{ID: "express", Label: "Express", Tier: domain.TierExpress, Window: "within 2 hours"},
	{ID: "standard-today", Label: "Today", Tier: domain.TierStandard, Window: "6 PM - 9 PM"},
	{ID: "standard-tomorrow", Label: "Tomorrow", Tier: domain.TierStandard, Window: "9 AM - 12 PM"},
	{ID: "scheduled", Label: "Scheduled", Tier: domain.TierScheduled, Window: "pick a day this week"},
}

// Breakdown is a priced cart.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tip         decimal.Decimal `json:"tip"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	PromoCode   string          `json:"promoCode,omitempty"`
}

// LineTotal is price * (1 - discount/100) * quantity.
func LineTotal(l domain.CartLine) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(l.DiscountPercent.Div(hundred))
	return l.Price.Mul(factor).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal sums the line totals.
func Subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// DeliveryFee returns the flat fee for tier. An empty tier costs nothing.
func DeliveryFee(tier domain.DeliveryTier) decimal.Decimal {
	if fee, ok := deliveryFees[tier]; ok {
		return fee
	}
	return decimal.Zero
}

// TimeSlots lists the delivery windows offered at checkout.
func TimeSlots() []domain.TimeSlot {
	out := make([]domain.TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

// FindTimeSlot looks up an offered slot by id.
func FindTimeSlot(id string) (domain.TimeSlot, bool) {
	for _, s := range timeSlots {
		if s.ID == id {
			return s, true
		}
	}
	return domain.TimeSlot{}, false
}

// PromoDiscount is zero when promo is nil or subtotal is under its minimum.
// Fixed discounts never exceed the subtotal.
func PromoDiscount(subtotal decimal.Decimal, promo *domain.PromoCode) decimal.Decimal {
	if promo == nil || subtotal.LessThan(promo.MinOrder) {
		return decimal.Zero
	}
	switch promo.Kind {
	case domain.PromoPercentage:
		return subtotal.Mul(promo.Value).Div(hundred)
	case domain.PromoFixed:
		return decimal.Min(promo.Value, subtotal)
	default:
		return decimal.Zero
	}
}

// Quote prices lines. Negative tips count as zero.
func Quote(lines []domain.CartLine, promo *domain.PromoCode, tier domain.DeliveryTier, tip decimal.Decimal) Breakdown {
	if tip.IsNegative() {
		tip = decimal.Zero
	}
	subtotal := Subtotal(lines)
	discount := PromoDiscount(subtotal, promo)
	tax := subtotal.Mul(TaxRate)
	fee := DeliveryFee(tier)
	if len(lines) == 0 {
		fee = decimal.Zero
	}

	b := Breakdown{
		Subtotal:    subtotal.Round(2),
		Discount:    discount.Round(2),
		Tax:         tax.Round(2),
		DeliveryFee: fee,
		Tip:         tip.Round(2),
	}
	b.Total = b.Subtotal.Sub(b.Discount).Add(b.Tax).Add(b.DeliveryFee).Add(b.Tip)
	for _, l := range lines {
		b.ItemCount += l.Quantity
	}
	if promo != nil {
		b.PromoCode = promo.Code
	}
	return b
}

package domain

import "github.com/shopspring/decimal"

type DeliveryTier string

const (
	TierStandard  DeliveryTier = "standard"
	TierExpress   DeliveryTier = "express"
	TierScheduled DeliveryTier = "scheduled"
)

// TimeSlot is a delivery window offered at checkout.
type TimeSlot struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Tier   DeliveryTier `json:"tier"`
	Window string       `json:"window,omitempty"`
}

// CheckoutSelection holds the choices of one checkout session. It is never
// persisted; the order keeps its own snapshot.
type CheckoutSelection struct {
	Address              *Address        `json:"address,omitempty"`
	TimeSlot             *TimeSlot       `json:"timeSlot,omitempty"`
	Payment              *PaymentMethod  `json:"payment,omitempty"`
	DeliveryInstructions string          `json:"deliveryInstructions,omitempty"`
	Tip                  decimal.Decimal `json:"tip"`
	TermsAccepted        bool            `json:"termsAccepted"`
}

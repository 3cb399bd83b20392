package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsActive reports whether an order in this status is still in flight.
func (s OrderStatus) IsActive() bool {
	return !s.IsTerminal()
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is the priced snapshot of a cart line at order time.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is the immutable record of a completed checkout. Only Status and
// UpdatedAt change after creation.
type Order struct {
	ID                   string          `json:"id"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	Items                []OrderItem     `json:"items"`
	Address              Address         `json:"address"`
	TimeSlot             TimeSlot        `json:"timeSlot"`
	PaymentRef           string          `json:"paymentRef,omitempty"`
	PaymentToken         string          `json:"paymentToken,omitempty"`
	PromoCode            string          `json:"promoCode,omitempty"`
	DeliveryInstructions string          `json:"deliveryInstructions,omitempty"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	Discount             decimal.Decimal `json:"discount"`
	Tax                  decimal.Decimal `json:"tax"`
	DeliveryFee          decimal.Decimal `json:"deliveryFee"`
	Tip                  decimal.Decimal `json:"tip"`
	Total                decimal.Decimal `json:"total"`
	Status               OrderStatus     `json:"status"`
}

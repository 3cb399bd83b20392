package order

import (
	"strings"

	"grocery-commerce/internal/domain"
)

// rank orders the four tracked stages.
var rank = map[domain.OrderStatus]int{
	domain.OrderStatusConfirmed:      1,
	domain.OrderStatusPreparing:      2,
	domain.OrderStatusOutForDelivery: 3,
	domain.OrderStatusDelivered:      4,
}

var stages = []domain.OrderStatus{
	domain.OrderStatusConfirmed,
	domain.OrderStatusPreparing,
	domain.OrderStatusOutForDelivery,
	domain.OrderStatusDelivered,
}

var labels = map[domain.OrderStatus]string{
	domain.OrderStatusConfirmed:      "Order Confirmed",
	domain.OrderStatusPreparing:      "Preparing",
	domain.OrderStatusOutForDelivery: "Out for Delivery",
	domain.OrderStatusDelivered:      "Delivered",
	domain.OrderStatusCancelled:      "Cancelled",
}

// TrackingStep is one stage of the delivery timeline.
type TrackingStep struct {
	Status    domain.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	Completed bool               `json:"completed"`
	Current   bool               `json:"current"`
}

// normalize maps legacy and loosely formatted status strings onto the lifecycle.
func normalize(raw string) domain.OrderStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "processing":
		return domain.OrderStatusPreparing
	case "canceled":
		return domain.OrderStatusCancelled
	}
	return domain.OrderStatus(s)
}

// Label is the display name of status.
func Label(status domain.OrderStatus) string {
	if l, ok := labels[normalize(string(status))]; ok {
		return l
	}
	return string(status)
}

// Progress is the delivery completion percentage: 25, 50, 75 or 100 for the
// tracked stages and 0 for anything else.
func Progress(status domain.OrderStatus) int {
	return rank[normalize(string(status))] * 25
}

// Steps renders the four-stage timeline. A stage is completed when it is at or
// before the current one. Unrecognized statuses complete only "confirmed".
func Steps(status domain.OrderStatus) []TrackingStep {
	current, ok := rank[normalize(string(status))]
	if !ok {
		current = 1
	}
	steps := make([]TrackingStep, 0, len(stages))
	for _, st := range stages {
		r := rank[st]
		steps = append(steps, TrackingStep{
			Status:    st,
			Label:     labels[st],
			Completed: r <= current,
			Current:   ok && r == current,
		})
	}
	return steps
}

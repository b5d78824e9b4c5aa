package types

import (
	"fmt"
	"slices"
	"time"
)

const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
)

var orderStatuses = []string{
	OrderPending,
	OrderConfirmed,
	OrderPreparing,
	OrderOutForDelivery,
	OrderDelivered,
}

// ValidOrderStatus reports whether s is one of the known order states.
func ValidOrderStatus(s string) bool {
	return slices.Contains(orderStatuses, s)
}

type TrackingStep struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Time        *time.Time `json:"time,omitempty"`
	Completed   bool       `json:"completed"`
	Current     bool       `json:"current,omitempty"`
}

// TrackingSteps derives the three step delivery timeline for an order.
// It is computed on every read and never stored.
func TrackingSteps(status string, createdAt time.Time) []TrackingStep {
	placed := createdAt
	steps := []TrackingStep{
		{
			Title:       "Order Placed",
			Description: "We have received your order",
			Time:        &placed,
			Completed:   true,
		},
		{
			Title:       "Confirmed",
			Description: "The store has confirmed your order",
			Completed:   status != OrderPending && ValidOrderStatus(status),
		},
		{
			Title:       "Delivered",
			Description: "Your order has been delivered",
			Completed:   status == OrderDelivered,
		},
	}

	for i := range steps {
		if !steps[i].Completed {
			steps[i].Current = true
			break
		}
	}

	return steps
}

// OfferText returns the stored offer label, falling back to a label
// derived from the discount percentage.
func OfferText(offer string, discount *int) string {
	if offer != "" {
		return offer
	}
	if discount != nil && *discount > 0 {
		return fmt.Sprintf("%d%% OFF", *discount)
	}

	return ""
}

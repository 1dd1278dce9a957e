package orders

import (
	"fmt"
	"time"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
)

// allowedTransitions is the forward edge set of the order state machine.
// CANCELLED and REFUNDED are reachable from every pre-delivery state.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingPayment: {
		enums.OrderStatusHeldForSeller,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusHeldForSeller: {
		enums.OrderStatusAccepted,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusAccepted: {
		enums.OrderStatusShipped,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	},
}

// ShippingMeta carries the courier details required to mark an order shipped.
type ShippingMeta struct {
	Provider   string
	TrackingID string
}

// CanTransition reports whether target is reachable from current.
func CanTransition(current, target enums.OrderStatus) bool {
	for _, next := range allowedTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// ApplyTransition mutates the order in memory for a validated transition.
// Milestone timestamps are set exactly once; re-entering a state an order
// already passed through never rewrites history.
func ApplyTransition(order *models.Order, target enums.OrderStatus, meta *ShippingMeta, now time.Time) error {
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", target))
	}
	// Replayed requests land on the state the order is already in. Treat
	// that as done, keeping the milestone fields as first recorded.
	if target == order.Status {
		return nil
	}
	if !CanTransition(order.Status, target) {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target)).
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	switch target {
	case enums.OrderStatusHeldForSeller:
		if order.PaidAt == nil {
			order.PaidAt = &now
		}
	case enums.OrderStatusAccepted:
		if order.AcceptedAt == nil {
			order.AcceptedAt = &now
		}
	case enums.OrderStatusShipped:
		if meta == nil || meta.Provider == "" || meta.TrackingID == "" {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				"cannot ship without shipping provider and tracking id").
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}
		order.ShippingProvider = &meta.Provider
		order.TrackingID = &meta.TrackingID
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	}

	order.Status = target
	return nil
}

package enum

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusAwaitingPayment     OrderStatus = "awaiting_payment"
	OrderStatusPendingConfirmation OrderStatus = "pending_confirmation"
	OrderStatusConfirmed           OrderStatus = "confirmed"
	OrderStatusPreparing           OrderStatus = "preparing"
	OrderStatusReady               OrderStatus = "ready"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusRejected            OrderStatus = "rejected"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

// orderTransitions is the closed edge list of the fulfillment state machine.
// delivered, rejected and cancelled have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:             {OrderStatusAwaitingPayment, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusAwaitingPayment:     {OrderStatusPendingConfirmation, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusPendingConfirmation: {OrderStatusConfirmed, OrderStatusRejected},
	OrderStatusConfirmed:           {OrderStatusPreparing},
	OrderStatusPreparing:           {OrderStatusReady},
	OrderStatusReady:               {OrderStatusDelivered},
	OrderStatusDelivered:           {},
	OrderStatusRejected:            {},
	OrderStatusCancelled:           {},
}

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether the status is a known state
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether the status has no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	edges, ok := orderTransitions[s]
	return ok && len(edges) == 0
}

// CanTransitionTo reports whether an edge from s to target exists
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, edge := range orderTransitions[s] {
		if edge == target {
			return true
		}
	}
	return false
}

// Transitions returns the outgoing edges from s
func (s OrderStatus) Transitions() []OrderStatus {
	edges := orderTransitions[s]
	out := make([]OrderStatus, len(edges))
	copy(out, edges)
	return out
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}

package domain

import "time"

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// delivered and cancelled are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusPreparing, StatusOutForDelivery, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// OrderItem is a single product line on an order. UnitPrice is captured at
// order time so later catalog changes do not rewrite history.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// StatusHistoryEntry records a single status transition on an order.
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Notes     string      `json:"notes,omitempty"`
}

// Order is the core aggregate root.
type Order struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	CourierID     string               `json:"courier_id,omitempty"`
	Address       string               `json:"address"`
	Status        OrderStatus          `json:"status"`
	Total         float64              `json:"total"`
	Items         []OrderItem          `json:"items,omitempty"`
	StatusHistory []StatusHistoryEntry `json:"status_history,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

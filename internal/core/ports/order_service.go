package ports

import (
	"context"

	"github.com/baketrak/order-system/internal/core/domain"
)

// PlaceOrderInput carries everything needed to create a new order.
// Prices are never taken from the client; they are resolved against the
// catalog when the order is placed.
type PlaceOrderInput struct {
	UserID  string
	Address string
	Items   []OrderItemInput
}

// OrderItemInput is a single requested product line.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// ListOrdersInput scopes the order listing to the calling identity.
// Customers see their own orders, couriers their assigned orders,
// administrators everything (optionally filtered by status).
type ListOrdersInput struct {
	Identity domain.Identity
	Status   string
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	Place(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	List(ctx context.Context, input ListOrdersInput) ([]*domain.Order, error)
	Details(ctx context.Context, identity domain.Identity, orderID string) ([]domain.OrderItem, error)
	Tracking(ctx context.Context, identity domain.Identity, orderID string) ([]domain.StatusHistoryEntry, error)
	Cancel(ctx context.Context, identity domain.Identity, orderID string) error
	AssignCourier(ctx context.Context, orderID, courierID string) error
	MarkDelivered(ctx context.Context, identity domain.Identity, orderID string) error
}

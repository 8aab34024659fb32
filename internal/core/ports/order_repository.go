package ports

import (
	"context"

	"github.com/baketrak/order-system/internal/core/domain"
)

// OrderFilter narrows the order listing. Exactly one of UserID/CourierID is
// set for scoped roles; both empty means unrestricted (administrator).
type OrderFilter struct {
	UserID    string
	CourierID string
	Status    string
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create persists the order, its items and the initial history entry in
	// one transaction.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	Items(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	History(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error)
	// UpdateStatus sets the new status and appends a history entry
	// atomically. When courierID is non-empty it is recorded on the order.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, courierID, notes string) error
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baketrak/order-system/internal/api/metrics"
	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

// OrderService implements the role-scoped order use cases. The service is
// the enforcement point for ownership: handlers pass the verified identity
// through and never pre-filter.
type OrderService struct {
	orders   ports.OrderRepository
	products ports.ProductRepository
	users    ports.AuthRepository
	logger   zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, products ports.ProductRepository, users ports.AuthRepository, logger zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, products: products, users: users, logger: logger}
}

// Place creates a new order for a customer. Unit prices come from the
// catalog, never from the request.
func (s *OrderService) Place(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	// Merge duplicate lines up front: the store keys items by
	// (order_id, product_id), so one row per product.
	ids := make([]string, 0, len(input.Items))
	quantities := make(map[string]int, len(input.Items))
	for _, item := range input.Items {
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Address:   input.Address,
		Status:    domain.StatusPending,
		CreatedAt: now,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusPending, Timestamp: now, Notes: "order placed"},
		},
	}
	for _, id := range ids {
		product, ok := catalog[id]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		quantity := quantities[id]
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
		})
		order.Total += product.Price * float64(quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	s.logger.Info().Str("order_id", order.ID).Str("user_id", input.UserID).Float64("total", order.Total).Msg("order placed")
	return order, nil
}

// List returns the orders visible to the calling identity.
func (s *OrderService) List(ctx context.Context, input ports.ListOrdersInput) ([]*domain.Order, error) {
	filter := ports.OrderFilter{Status: input.Status}
	switch input.Identity.Role {
	case domain.RoleCustomer:
		filter.UserID = input.Identity.UserID
	case domain.RoleCourier:
		filter.CourierID = input.Identity.UserID
	case domain.RoleAdmin:
		// unrestricted
	default:
		return nil, domain.ErrForbidden
	}
	return s.orders.List(ctx, filter)
}

// Details returns the line items of an order the identity may see.
func (s *OrderService) Details(ctx context.Context, identity domain.Identity, orderID string) ([]domain.OrderItem, error) {
	if _, err := s.visibleOrder(ctx, identity, orderID); err != nil {
		return nil, err
	}
	return s.orders.Items(ctx, orderID)
}

// Tracking returns the status history of an order the identity may see.
func (s *OrderService) Tracking(ctx context.Context, identity domain.Identity, orderID string) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.visibleOrder(ctx, identity, orderID); err != nil {
		return nil, err
	}
	return s.orders.History(ctx, orderID)
}

// Cancel cancels an order. Customers may only cancel their own orders, and
// only while the status still allows it.
func (s *OrderService) Cancel(ctx context.Context, identity domain.Identity, orderID string) error {
	order, err := s.visibleOrder(ctx, identity, orderID)
	if err != nil {
		return err
	}
	if identity.Role == domain.RoleCourier {
		return domain.ErrForbidden
	}
	if !order.Status.Cancellable() {
		return domain.ErrInvalidTransition
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.StatusCancelled, "", "cancelled by "+identity.Role); err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	s.logger.Info().Str("order_id", orderID).Str("by", identity.Role).Msg("order cancelled")
	return nil
}

// AssignCourier hands the order to a courier and moves it out for delivery.
// Administrator only; the route guard enforces the role, the service checks
// the assignee.
func (s *OrderService) AssignCourier(ctx context.Context, orderID, courierID string) error {
	courier, err := s.users.FindByID(ctx, courierID)
	if err != nil {
		return err
	}
	if courier.Role != domain.RoleCourier {
		return domain.ErrNotACourier
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(domain.StatusOutForDelivery) {
		return domain.ErrInvalidTransition
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.StatusOutForDelivery, courierID, "assigned to "+courier.Username); err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusOutForDelivery)).Inc()
	s.logger.Info().Str("order_id", orderID).Str("courier_id", courierID).Msg("courier assigned")
	return nil
}

// MarkDelivered records a completed delivery. Couriers may only close
// orders assigned to them; administrators may close any.
func (s *OrderService) MarkDelivered(ctx context.Context, identity domain.Identity, orderID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if identity.Role == domain.RoleCourier && order.CourierID != identity.UserID {
		return domain.ErrForbidden
	}
	if !order.Status.CanTransitionTo(domain.StatusDelivered) {
		return domain.ErrInvalidTransition
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.StatusDelivered, "", "delivery validated"); err != nil {
		return err
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.StatusDelivered)).Inc()
	s.logger.Info().Str("order_id", orderID).Msg("order delivered")
	return nil
}

// visibleOrder loads an order and enforces read scoping: customers see
// their own orders, couriers their assigned orders, administrators any.
func (s *OrderService) visibleOrder(ctx context.Context, identity domain.Identity, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return order, nil
	case domain.RoleCustomer:
		if order.UserID != identity.UserID {
			return nil, domain.ErrForbidden
		}
		return order, nil
	case domain.RoleCourier:
		if order.CourierID != identity.UserID {
			return nil, domain.ErrForbidden
		}
		return order, nil
	}
	return nil, domain.ErrForbidden
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

type stubOrderRepo struct {
	orders map[string]*domain.Order
}

func newStubOrderRepo(orders ...*domain.Order) *stubOrderRepo {
	r := &stubOrderRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		clone := *o
		r.orders[o.ID] = &clone
	}
	return r
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) error {
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := r.orders[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) List(_ context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.CourierID != "" && o.CourierID != filter.CourierID {
			continue
		}
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		clone := *o
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubOrderRepo) Items(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	if o, ok := r.orders[orderID]; ok {
		return o.Items, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) History(_ context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	if o, ok := r.orders[orderID]; ok {
		return o.StatusHistory, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus, courierID, notes string) error {
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	if courierID != "" {
		o.CourierID = courierID
	}
	o.StatusHistory = append(o.StatusHistory, domain.StatusHistoryEntry{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Notes:     notes,
	})
	return nil
}

type stubProductRepo struct {
	products map[string]domain.Product
}

func (r *stubProductRepo) List(_ context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func bakeryCatalog() *stubProductRepo {
	return &stubProductRepo{products: map[string]domain.Product{
		"p-croissant": {ID: "p-croissant", Name: "Croissant", Price: 2.50},
		"p-baguette":  {ID: "p-baguette", Name: "Baguette", Price: 3.00},
	}}
}

func newTestOrderService(orders *stubOrderRepo, users *stubAuthRepo) *OrderService {
	if users == nil {
		users = newStubAuthRepo()
	}
	return NewOrderService(orders, bakeryCatalog(), users, zerolog.Nop())
}

func customer(id string) domain.Identity {
	return domain.Identity{UserID: id, Role: domain.RoleCustomer}
}

func courier(id string) domain.Identity {
	return domain.Identity{UserID: id, Role: domain.RoleCourier}
}

var admin = domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin}

func TestOrderService_Place(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Place(context.Background(), ports.PlaceOrderInput{
		UserID:  "cust-1",
		Address: "1 Rue du Four",
		Items: []ports.OrderItemInput{
			{ProductID: "p-croissant", Quantity: 4},
			{ProductID: "p-baguette", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if want := 4*2.50 + 3.00; order.Total != want {
		t.Fatalf("expected total %.2f, got %.2f", want, order.Total)
	}
	if len(order.StatusHistory) != 1 || order.StatusHistory[0].Status != domain.StatusPending {
		t.Fatalf("expected initial pending history entry, got %+v", order.StatusHistory)
	}
	if order.Items[0].UnitPrice != 2.50 {
		t.Fatalf("unit price must come from the catalog, got %.2f", order.Items[0].UnitPrice)
	}
	if _, ok := repo.orders[order.ID]; !ok {
		t.Fatalf("order not persisted")
	}
}

// Repeated lines for the same product collapse into one item with the
// quantities summed. The store keys items by (order_id, product_id), so a
// request with duplicates must never reach it as two rows.
func TestOrderService_Place_MergesDuplicateLines(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestOrderService(repo, nil)

	order, err := svc.Place(context.Background(), ports.PlaceOrderInput{
		UserID:  "cust-1",
		Address: "1 Rue du Four",
		Items: []ports.OrderItemInput{
			{ProductID: "p-croissant", Quantity: 1},
			{ProductID: "p-baguette", Quantity: 1},
			{ProductID: "p-croissant", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 merged items, got %d: %+v", len(order.Items), order.Items)
	}
	if order.Items[0].ProductID != "p-croissant" || order.Items[0].Quantity != 3 {
		t.Fatalf("expected merged croissant line with quantity 3, got %+v", order.Items[0])
	}
	if want := 3*2.50 + 3.00; order.Total != want {
		t.Fatalf("expected total %.2f, got %.2f", want, order.Total)
	}
}

func TestOrderService_Place_EmptyOrder(t *testing.T) {
	svc := newTestOrderService(newStubOrderRepo(), nil)

	_, err := svc.Place(context.Background(), ports.PlaceOrderInput{UserID: "cust-1", Address: "x"})
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

func TestOrderService_Place_UnknownProduct(t *testing.T) {
	svc := newTestOrderService(newStubOrderRepo(), nil)

	_, err := svc.Place(context.Background(), ports.PlaceOrderInput{
		UserID:  "cust-1",
		Address: "x",
		Items:   []ports.OrderItemInput{{ProductID: "p-ghost", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestOrderService_List_Scoping(t *testing.T) {
	repo := newStubOrderRepo(
		&domain.Order{ID: "o-1", UserID: "cust-1", Status: domain.StatusPending},
		&domain.Order{ID: "o-2", UserID: "cust-2", CourierID: "cour-1", Status: domain.StatusOutForDelivery},
		&domain.Order{ID: "o-3", UserID: "cust-2", Status: domain.StatusPending},
	)
	svc := newTestOrderService(repo, nil)
	ctx := context.Background()

	own, err := svc.List(ctx, ports.ListOrdersInput{Identity: customer("cust-1")})
	if err != nil {
		t.Fatalf("customer list failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != "o-1" {
		t.Fatalf("customer must only see own orders, got %+v", own)
	}

	assigned, err := svc.List(ctx, ports.ListOrdersInput{Identity: courier("cour-1")})
	if err != nil {
		t.Fatalf("courier list failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != "o-2" {
		t.Fatalf("courier must only see assigned orders, got %+v", assigned)
	}

	all, err := svc.List(ctx, ports.ListOrdersInput{Identity: admin})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin must see all orders, got %d", len(all))
	}

	pending, err := svc.List(ctx, ports.ListOrdersInput{Identity: admin, Status: "pending"})
	if err != nil {
		t.Fatalf("admin filtered list failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(pending))
	}
}

func TestOrderService_Details_Scoping(t *testing.T) {
	repo := newStubOrderRepo(&domain.Order{
		ID: "o-1", UserID: "cust-1", CourierID: "cour-1", Status: domain.StatusOutForDelivery,
		Items: []domain.OrderItem{{ProductID: "p-croissant", Quantity: 2, UnitPrice: 2.50}},
	})
	svc := newTestOrderService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Details(ctx, customer("cust-1"), "o-1"); err != nil {
		t.Fatalf("owner should see details: %v", err)
	}
	if _, err := svc.Details(ctx, courier("cour-1"), "o-1"); err != nil {
		t.Fatalf("assigned courier should see details: %v", err)
	}
	if _, err := svc.Details(ctx, admin, "o-1"); err != nil {
		t.Fatalf("admin should see details: %v", err)
	}

	if _, err := svc.Details(ctx, customer("cust-2"), "o-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other customer must be forbidden, got %v", err)
	}
	if _, err := svc.Details(ctx, courier("cour-2"), "o-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other courier must be forbidden, got %v", err)
	}
	if _, err := svc.Details(ctx, customer("cust-1"), "o-missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_Cancel(t *testing.T) {
	repo := newStubOrderRepo(
		&domain.Order{ID: "o-1", UserID: "cust-1", Status: domain.StatusPending},
		&domain.Order{ID: "o-2", UserID: "cust-1", Status: domain.StatusDelivered},
		&domain.Order{ID: "o-3", UserID: "cust-1", CourierID: "cour-1", Status: domain.StatusOutForDelivery},
	)
	svc := newTestOrderService(repo, nil)
	ctx := context.Background()

	if err := svc.Cancel(ctx, customer("cust-1"), "o-1"); err != nil {
		t.Fatalf("cancel pending order failed: %v", err)
	}
	if repo.orders["o-1"].Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.orders["o-1"].Status)
	}

	if err := svc.Cancel(ctx, customer("cust-1"), "o-2"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("delivered order must not be cancellable, got %v", err)
	}
	if err := svc.Cancel(ctx, customer("cust-2"), "o-3"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other customer must be forbidden, got %v", err)
	}
	if err := svc.Cancel(ctx, courier("cour-1"), "o-3"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("courier must not cancel, got %v", err)
	}
	if err := svc.Cancel(ctx, admin, "o-3"); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
}

func TestOrderService_AssignCourier(t *testing.T) {
	users := newStubAuthRepo()
	users.users["rider"] = &domain.User{ID: "cour-1", Username: "rider", Role: domain.RoleCourier}
	users.users["shopper"] = &domain.User{ID: "cust-9", Username: "shopper", Role: domain.RoleCustomer}

	repo := newStubOrderRepo(
		&domain.Order{ID: "o-1", UserID: "cust-1", Status: domain.StatusPending},
		&domain.Order{ID: "o-2", UserID: "cust-1", Status: domain.StatusDelivered},
	)
	svc := newTestOrderService(repo, users)
	ctx := context.Background()

	if err := svc.AssignCourier(ctx, "o-1", "cour-1"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if got := repo.orders["o-1"]; got.Status != domain.StatusOutForDelivery || got.CourierID != "cour-1" {
		t.Fatalf("unexpected order after assign: %+v", got)
	}

	if err := svc.AssignCourier(ctx, "o-2", "cour-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("delivered order must not be assignable, got %v", err)
	}
	if err := svc.AssignCourier(ctx, "o-1", "cust-9"); !errors.Is(err, domain.ErrNotACourier) {
		t.Fatalf("expected ErrNotACourier, got %v", err)
	}
	if err := svc.AssignCourier(ctx, "o-1", "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestOrderService_MarkDelivered(t *testing.T) {
	repo := newStubOrderRepo(
		&domain.Order{ID: "o-1", UserID: "cust-1", CourierID: "cour-1", Status: domain.StatusOutForDelivery},
		&domain.Order{ID: "o-2", UserID: "cust-1", Status: domain.StatusPending},
	)
	svc := newTestOrderService(repo, nil)
	ctx := context.Background()

	if err := svc.MarkDelivered(ctx, courier("cour-2"), "o-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unassigned courier must be forbidden, got %v", err)
	}
	if err := svc.MarkDelivered(ctx, courier("cour-1"), "o-2"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending order must not be deliverable, got %v", err)
	}

	if err := svc.MarkDelivered(ctx, courier("cour-1"), "o-1"); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if repo.orders["o-1"].Status != domain.StatusDelivered {
		t.Fatalf("expected delivered, got %s", repo.orders["o-1"].Status)
	}

	last := repo.orders["o-1"].StatusHistory[len(repo.orders["o-1"].StatusHistory)-1]
	if last.Status != domain.StatusDelivered {
		t.Fatalf("expected delivered history entry, got %+v", last)
	}
}

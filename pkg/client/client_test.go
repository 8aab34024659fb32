package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/baketrak/order-system/internal/api"
	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
	"github.com/baketrak/order-system/internal/core/service"
	"github.com/baketrak/order-system/internal/infrastructure/token"
)

type memAuthRepo struct {
	users map[string]*domain.User
}

func (r *memAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.users[user.Username] = &clone
	return &clone, nil
}

func (r *memAuthRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := r.users[username]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memAuthRepo) List(_ context.Context, role string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memOrderRepo struct {
	orders map[string]*domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, order *domain.Order) error {
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	if o, ok := r.orders[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) List(_ context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
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

func (r *memOrderRepo) Items(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	if o, ok := r.orders[orderID]; ok {
		return o.Items, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) History(_ context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	if o, ok := r.orders[orderID]; ok {
		return o.StatusHistory, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus, courierID, notes string) error {
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

type memProductRepo struct {
	products []domain.Product
}

func (r *memProductRepo) List(_ context.Context) ([]domain.Product, error) {
	return r.products, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product)
	for _, id := range ids {
		for _, p := range r.products {
			if p.ID == id {
				out[id] = p
			}
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens, err := token.NewManager("e2e-secret", 0)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	authRepo := &memAuthRepo{users: map[string]*domain.User{
		"root": {ID: "admin-1", Username: "root", Credential: "rootpass", Role: domain.RoleAdmin},
	}}
	productRepo := &memProductRepo{products: []domain.Product{
		{ID: "p-croissant", Name: "Croissant", Category: "viennoiserie", Price: 2.50},
		{ID: "p-baguette", Name: "Baguette", Category: "bread", Price: 3.00},
	}}

	e := api.NewRouter(api.Dependencies{
		AuthRepo:    authRepo,
		OrderRepo:   &memOrderRepo{orders: make(map[string]*domain.Order)},
		ProductRepo: productRepo,
		Tokens:      tokens,
		Verifier:    service.NewPasswordVerifier(false),
		Logger:      zerolog.Nop(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func wantAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != status {
		t.Fatalf("expected status %d, got %d (%s)", status, apiErr.StatusCode, apiErr.Message)
	}
	if message != "" && apiErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, apiErr.Message)
	}
}

func TestClient_RegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	res, err := c.Register(ctx, "ana", "secret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.Message != "Usuario creado" || res.UserID == "" {
		t.Fatalf("unexpected register result: %+v", res)
	}

	_, err = c.Register(ctx, "ana", "other")
	wantAPIError(t, err, http.StatusBadRequest, "Usuario ya existe")

	err = c.Login(ctx, "ghost", "secret")
	wantAPIError(t, err, http.StatusBadRequest, "Usuario no encontrado")

	err = c.Login(ctx, "ana", "wrong")
	wantAPIError(t, err, http.StatusBadRequest, "Contraseña incorrecta")

	if c.Authenticated() {
		t.Fatalf("failed logins must not create a session")
	}

	if err := c.Login(ctx, "ana", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !c.Authenticated() || c.Role() != domain.RoleCustomer || c.Username() != "ana" {
		t.Fatalf("unexpected session: role=%q username=%q", c.Role(), c.Username())
	}
}

func TestClient_RoleGating(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	if _, err := c.Orders(ctx, ""); err == nil {
		t.Fatalf("expected rejection without a session")
	} else {
		wantAPIError(t, err, http.StatusUnauthorized, "")
	}

	if _, err := c.Register(ctx, "ana", "secret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := c.Login(ctx, "ana", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Customer token on an administrator-only route.
	if _, err := c.CreateUser(ctx, "rider", "pass", domain.RoleCourier); err == nil {
		t.Fatalf("expected 403 for customer on admin route")
	} else {
		wantAPIError(t, err, http.StatusForbidden, "")
	}

	if _, err := c.Orders(ctx, ""); err != nil {
		t.Fatalf("customer route should pass: %v", err)
	}

	c.Logout()
	if _, err := c.Orders(ctx, ""); err == nil {
		t.Fatalf("expected rejection after logout")
	} else {
		wantAPIError(t, err, http.StatusUnauthorized, "")
	}
}

func TestClient_OrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	adminClient := New(srv.URL)
	if err := adminClient.Login(ctx, "root", "rootpass"); err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	courierUser, err := adminClient.CreateUser(ctx, "rider", "riderpass", domain.RoleCourier)
	if err != nil {
		t.Fatalf("create courier failed: %v", err)
	}

	customer := New(srv.URL)
	if _, err := customer.Register(ctx, "ana", "secret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := customer.Login(ctx, "ana", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	products, err := customer.Products(ctx)
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	order, err := customer.PlaceOrder(ctx, "1 Rue du Four", []OrderItem{
		{ProductID: "p-croissant", Quantity: 4},
		{ProductID: "p-baguette", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if order.Status != "pending" {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if want := 4*2.50 + 3.00; order.Total != want {
		t.Fatalf("expected total %.2f, got %.2f", want, order.Total)
	}

	lines, err := customer.OrderDetails(ctx, order.ID)
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if len(lines) != 2 || lines[0].UnitPrice == 0 {
		t.Fatalf("unexpected lines: %+v", lines)
	}

	if err := adminClient.AssignCourier(ctx, order.ID, courierUser.UserID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	courierClient := New(srv.URL)
	if err := courierClient.Login(ctx, "rider", "riderpass"); err != nil {
		t.Fatalf("courier login failed: %v", err)
	}
	assigned, err := courierClient.Orders(ctx, "")
	if err != nil {
		t.Fatalf("courier orders failed: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != order.ID {
		t.Fatalf("courier must see the assigned order, got %+v", assigned)
	}

	if err := courierClient.MarkDelivered(ctx, order.ID); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	// Terminal state: no cancelling a delivered order.
	err = customer.CancelOrder(ctx, order.ID)
	wantAPIError(t, err, http.StatusUnprocessableEntity, "")

	history, err := customer.Tracking(ctx, order.ID)
	if err != nil {
		t.Fatalf("tracking failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected pending/out_for_delivery/delivered history, got %+v", history)
	}
	if history[0].Status != "pending" || history[len(history)-1].Status != "delivered" {
		t.Fatalf("unexpected history order: %+v", history)
	}
}

func TestClient_ExpiredTokenRejected(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	c.token = "not-a-real-token"
	if _, err := c.Orders(ctx, ""); err == nil {
		t.Fatalf("expected rejection for garbage token")
	} else {
		wantAPIError(t, err, http.StatusForbidden, "")
	}
}

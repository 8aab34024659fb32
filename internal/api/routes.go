package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/api/handler"
	"github.com/baketrak/order-system/internal/api/middleware"
	"github.com/baketrak/order-system/internal/core/domain"
)

// route declares one endpoint and its access rule. The table below is the
// single source of truth for role gating: every protected route names its
// allowed-role set here, and registration wires the auth middleware and the
// role guard from it. An empty roles set means any authenticated identity.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	public  bool
	roles   []string
}

func routeTable(auth *handler.AuthHandler, orders *handler.OrderHandler, products *handler.ProductHandler, users *handler.UserHandler) []route {
	return []route{
		{method: http.MethodPost, path: "/api/register", handler: auth.Register, public: true},
		{method: http.MethodPost, path: "/api/login", handler: auth.Login, public: true},
		{method: http.MethodGet, path: "/api/products", handler: products.List, public: true},

		{method: http.MethodGet, path: "/api/orders", handler: orders.List},
		{method: http.MethodPost, path: "/api/orders", handler: orders.Place,
			roles: []string{domain.RoleCustomer}},
		{method: http.MethodGet, path: "/api/orders/:id/details", handler: orders.Details},
		{method: http.MethodGet, path: "/api/orders/:id/tracking", handler: orders.Tracking,
			roles: []string{domain.RoleCustomer, domain.RoleCourier, domain.RoleAdmin}},
		{method: http.MethodPut, path: "/api/orders/:id/cancel", handler: orders.Cancel,
			roles: []string{domain.RoleCustomer, domain.RoleAdmin}},
		{method: http.MethodPut, path: "/api/orders/:id/assign", handler: orders.Assign,
			roles: []string{domain.RoleAdmin}},
		{method: http.MethodPut, path: "/api/orders/:id/deliver", handler: orders.Deliver,
			roles: []string{domain.RoleCourier, domain.RoleAdmin}},

		{method: http.MethodPost, path: "/api/users", handler: users.Create,
			roles: []string{domain.RoleAdmin}},
		{method: http.MethodGet, path: "/api/users", handler: users.List,
			roles: []string{domain.RoleAdmin}},
	}
}

// registerRoutes wires the table into Echo. Protected routes get the auth
// middleware followed by the role guard; public routes get neither.
func registerRoutes(e *echo.Echo, routes []route, auth echo.MiddlewareFunc) {
	for _, r := range routes {
		if r.public {
			e.Add(r.method, r.path, r.handler)
			continue
		}
		e.Add(r.method, r.path, r.handler, auth, middleware.RBAC(r.roles...))
	}
}
